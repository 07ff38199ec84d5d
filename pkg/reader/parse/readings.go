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

// Package parse turns raw reader responses into structured data: reading
// rows, configuration values and summary lines. It never touches the
// port; input is always the collected response text.
package parse

import (
	"regexp"
	"sort"
	"strings"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/reader/protocol"
)

// Reading is one stored tag detection as the firmware reports it. All
// fields stay textual: Timestamp is reader-local UTC in
// "2006-01-02 15:04:05" form, and TemperatureC is either a bare decimal
// (the °C suffix is stripped) or the literal "N/A" for tags without a
// temperature sensor.
type Reading struct {
	Timestamp    string `csv:"Timestamp"     json:"timestamp"`
	Value1       string `csv:"Value1"        json:"value1"`
	Tag          string `csv:"Tag"           json:"tag"`
	TemperatureC string `csv:"Temperature_C" json:"temperatureC"`
}

// Reading lines come in two shapes depending on whether the firmware has
// debug output enabled:
//
//	#200: [DEBUG] raw_timestamp=1753247585, converted=2025-07-23 05:13:05, 999, 141004265912, 24.86°C
//	#200: 2025-07-23 05:13:05, 999, 141004265912, 24.86°C
var (
	debugReadingRe  = regexp.MustCompile(`#\d+:\s*\[DEBUG\]\s*raw_timestamp=\d+,\s*converted=([\d\-]+\s[\d:]+),\s*(\d+),\s*(\d+),\s*([\d.]+°C|N/A)`)
	normalReadingRe = regexp.MustCompile(`#\d+:\s*([\d\-]+\s[\d:]+),\s*(\d+),\s*(\d+),\s*([\d.]+°C|N/A)`)

	dashboardBlockRe = regexp.MustCompile(`(?s)` +
		regexp.QuoteMeta(protocol.DashboardDataStart) + `(.*?)` +
		regexp.QuoteMeta(protocol.DashboardDataEnd))
)

// ParseReadings extracts reading rows from a range response. Responses
// can carry several dashboard wrappers and several readings blocks when
// the device repeats itself after a retry; only the freshest data counts:
// the last complete wrapper, then the last complete block inside it. A
// block whose end marker was cut off by the hard timeout is used only
// when no complete block exists at all. Rows come back sorted by
// timestamp.
func ParseReadings(text string) []Reading {
	block := latestReadingsBlock(text)
	if block == "" {
		return nil
	}

	var readings []Reading
	for _, line := range strings.Split(block, "\n") {
		m := debugReadingRe.FindStringSubmatch(line)
		if m == nil {
			m = normalReadingRe.FindStringSubmatch(line)
		}
		if m == nil {
			continue
		}

		readings = append(readings, Reading{
			Timestamp:    m[1],
			Value1:       m[2],
			Tag:          m[3],
			TemperatureC: strings.TrimSuffix(m[4], "°C"),
		})
	}

	// Timestamps are fixed-width "2006-01-02 15:04:05", so string order
	// is chronological order.
	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].Timestamp < readings[j].Timestamp
	})
	return readings
}

// latestReadingsBlock narrows the response to the freshest readings
// block, or "" when the response has none.
func latestReadingsBlock(text string) string {
	if matches := dashboardBlockRe.FindAllStringSubmatch(text, -1); len(matches) > 0 {
		text = matches[len(matches)-1][1]
	}

	var complete []string
	var current []string
	inBlock := false

	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.Contains(line, protocol.ReadingsBegin):
			inBlock = true
			current = nil
		case strings.Contains(line, protocol.ReadingsEnd):
			if inBlock {
				complete = append(complete, strings.Join(current, "\n"))
			}
			inBlock = false
		case inBlock:
			current = append(current, line)
		}
	}

	if len(complete) > 0 {
		return complete[len(complete)-1]
	}
	if inBlock && len(current) > 0 {
		// Truncated trailing block, better than nothing.
		return strings.Join(current, "\n")
	}
	return ""
}
