// RFID Reader Host
// Copyright (c) 2026 Little Endian Engineering.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of RFID Reader Host.
//
// RFID Reader Host is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// RFID Reader Host is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with RFID Reader Host.  If not, see <http://www.gnu.org/licenses/>.

package parse

import (
	"strings"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/reader/protocol"
)

// MarkerValue extracts a configuration value from a get response: the
// first non-blank line strictly between the exact start and end marker
// lines. The firmware interleaves its own chatter with the markers, so
// anything before the start marker is ignored. Returns false when the
// start marker never appeared or nothing useful sat between the markers.
func MarkerValue(text, startMarker, endMarker string) (string, bool) {
	found := false
	var between []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == startMarker {
			found = true
			continue
		}
		if found && line == endMarker {
			break
		}
		if found {
			between = append(between, line)
		}
	}

	for _, line := range between {
		if line != "" && line != startMarker && line != endMarker {
			return line, true
		}
	}
	return "", false
}

// FindAck scans a set response for the firmware's acknowledgement line.
// Returns the first exact OK, ERROR or "Invalid value" line found.
func FindAck(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		switch strings.TrimSpace(line) {
		case protocol.AckOK:
			return protocol.AckOK, true
		case protocol.AckError:
			return protocol.AckError, true
		case protocol.AckInvalid:
			return protocol.AckInvalid, true
		}
	}
	return "", false
}

// Prefixes of the human-readable summary the firmware prints ahead of the
// structured data in a range response.
var summaryPrefixes = []string{"Found", "First:", "Last:"}

// SummaryLines returns the firmware's range summary: the Found/First/Last
// lines that appear before the first dashboard wrapper.
func SummaryLines(text string) []string {
	head := text
	if i := strings.Index(text, protocol.DashboardDataStart); i >= 0 {
		head = text[:i]
	}

	var summary []string
	for _, line := range strings.Split(head, "\n") {
		line = strings.TrimSpace(line)
		for _, prefix := range summaryPrefixes {
			if strings.HasPrefix(line, prefix) {
				summary = append(summary, line)
				break
			}
		}
	}
	return summary
}
