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

import "strings"

// alwaysKeep marks lines that matter regardless of which command is in
// flight.
var alwaysKeep = []string{
	"[DASHBOARD]",
	"[RFID]",
	"[ERROR]",
	"[WARNING]",
	"CMD_RECEIVED",
}

var keepByCommand = map[string][]string{
	"debug": {
		"[DEBUG] --- Device Debug Info ---",
		"[DEBUG] Reading count:",
		"[DEBUG] MAX_READINGS:",
		"[DEBUG] Available slots:",
		"[DEBUG] Dashboard mode:",
		"[DEBUG] Current time:",
		"[DEBUG] Unix timestamp:",
		"[DEBUG] --- End Debug Info ---",
	},
	"buttonmode": {
		"[BUTTON] Multi-Button Mode Status",
		"[BUTTON] Dashboard Mode:",
		"[BUTTON] Short press:",
		"[BUTTON] Long press",
		"[BUTTON] Current button state:",
	},
	"testbutton": {
		"[BUTTON] Testing multi-button functionality:",
		"[BUTTON] Press and hold",
		"[BUTTON] Short press",
		"[BUTTON] Current dashboard mode",
	},
	"status": {
		"[STATUS] Current ESP32 Status:",
		"[STATUS] Dashboard Mode:",
		"[STATUS] lastCommandTime:",
		"[STATUS] Serial.available():",
		"[STATUS] Current time:",
		"[STATUS] Long press timer:",
	},
	"print": {
		"TAG:",
		"Reading #",
		"Time:",
		"Temperature:",
	},
}

// getNoise is firmware plumbing chatter that drowns out the actual value
// in get responses.
var getNoise = []string{
	"[DEBUG]",
	"[SERIAL]",
	"[UART]",
	"[LIGHTSLEEP]",
	"[WATCHDOG]",
}

// KeepLine decides whether a response line is worth keeping in the
// diagnostic logs for the command that provoked it. Chatty commands have
// a whitelist of the lines that carry signal; commands without a known
// family keep everything.
func KeepLine(command, line string) bool {
	if containsAny(line, alwaysKeep) {
		return true
	}

	if keep, ok := keepByCommand[command]; ok {
		return containsAny(line, keep)
	}

	switch {
	case strings.HasPrefix(command, "get "):
		if strings.HasPrefix(line, "<") && strings.HasSuffix(line, "_END>") {
			return true
		}
		return !containsAny(line, getNoise)
	case strings.HasPrefix(command, "set "):
		return line == AckOK || line == AckError || line == AckInvalid
	default:
		return true
	}
}

func containsAny(line string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}
