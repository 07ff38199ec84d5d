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

package protocol

import (
	"fmt"
	"strings"
)

// Markers the firmware wraps structured output in.
const (
	DashboardDataStart = "<DASHBOARD_DATA>"
	DashboardDataEnd   = "</DASHBOARD_DATA>"
	ReadingsBegin      = "---BEGIN_READINGS---"
	ReadingsEnd        = "---END_READINGS---"
)

// Acknowledgement lines the firmware prints for set commands.
const (
	AckOK      = "OK"
	AckError   = "ERROR"
	AckInvalid = "Invalid value"
)

// fastCommands get the immediate wake-and-send treatment: the command is
// written right after the wake settle so the firmware processes it before
// dropping back to light sleep. Everything else takes the relaxed path.
var fastCommands = map[string]struct{}{
	"dashboardmode on":  {},
	"dashboardmode off": {},
	"status":            {},
	"debugsimple":       {},
	"debug":             {},
	"buttonmode":        {},
	"testbutton":        {},
	"print":             {},
}

// IsFastCommand reports whether cmd uses the immediate wake-and-send path.
func IsFastCommand(cmd string) bool {
	_, ok := fastCommands[cmd]
	return ok
}

// IsRangeCommand reports whether cmd is a readings range query, which gets
// longer timeouts and the readings end marker.
func IsRangeCommand(cmd string) bool {
	return strings.HasPrefix(strings.TrimSpace(cmd), "range ")
}

// markerBases maps configuration variable names onto the base token the
// firmware uses in its GET response markers. Unlisted variables fall back
// to the upper-cased name.
var markerBases = map[string]string{
	"rfidOnTimeMs":       "RFIDONTIME",
	"periodicIntervalMs": "PERIODICINTERVAL",
	"ssid":               "SSID",
	"password":           "PASSWORD",
	"longPressMs":        "LONGPRESSMS",
}

// GetVarMarkers returns the exact begin and end marker lines the firmware
// wraps around the value of a get response for the named variable.
func GetVarMarkers(name string) (start, end string) {
	base, ok := markerBases[name]
	if !ok {
		base = strings.ToUpper(name)
	}
	return "<GET_" + base + "_BEGIN>", "<GET_" + base + "_END>"
}

// GetCommand builds the wire command that reads a configuration variable.
func GetCommand(name string) string {
	return "get " + name
}

// SetCommand builds the wire command that writes a configuration variable.
func SetCommand(name, value string) string {
	return fmt.Sprintf("set %s %s", name, value)
}

// RangeCommand builds the wire command that queries stored readings
// between two epoch seconds, both UTC.
func RangeCommand(startEpoch, endEpoch int64) string {
	return fmt.Sprintf("range %d %d", startEpoch, endEpoch)
}
