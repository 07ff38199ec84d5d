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

package models

import (
	"time"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/database"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/reader/parse"
)

type PortsResponse struct {
	Ports []string `json:"ports"`
}

// ConnectionResponse doubles as the connection.state notification
// payload. Reason is set on failures and disconnects.
type ConnectionResponse struct {
	Port      string `json:"port,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Connected bool   `json:"connected"`
}

// CommandResponse reports how a command exchange ended. It is never
// persisted, only returned to callers and logged.
type CommandResponse struct {
	Text       string `json:"text"`
	EndReason  string `json:"endReason"`
	ByteCount  int64  `json:"byteCount"`
	LineCount  int    `json:"lineCount"`
	DurationMs int64  `json:"durationMs"`
}

type PingResponse struct {
	OK bool `json:"ok"`
}

type RangeResponse struct {
	Summary  []string        `json:"summary"`
	Readings []parse.Reading `json:"readings"`
	Outcome  CommandResponse `json:"outcome"`
}

type HistoryResponse struct {
	Entries []database.HistoryEntry `json:"entries"`
}

type ExportResponse struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// LiveStatusResponse doubles as the live.state notification payload.
type LiveStatusResponse struct {
	WindowStart       *time.Time `json:"windowStart,omitempty"`
	LastPollAt        *time.Time `json:"lastPollAt,omitempty"`
	Active            bool       `json:"active"`
	ConsecutiveErrors int        `json:"consecutiveErrors"`
}

type StatusResponse struct {
	Live      LiveStatusResponse `json:"live"`
	Port      string             `json:"port,omitempty"`
	Version   string             `json:"version"`
	Connected bool               `json:"connected"`
}

// DeviceSettingsResponse holds the device variables read back over the
// wire. Values the device did not answer for are omitted.
type DeviceSettingsResponse struct {
	SSID               *string `json:"ssid,omitempty"`
	Password           *string `json:"password,omitempty"`
	RFIDOnTimeMs       *string `json:"rfidOnTimeMs,omitempty"`
	PeriodicIntervalMs *string `json:"periodicIntervalMs,omitempty"`
	LongPressMs        *string `json:"longPressMs,omitempty"`
}

type DeviceSettingResult struct {
	Name string `json:"name"`
	Ack  string `json:"ack,omitempty"`
	OK   bool   `json:"ok"`
}

type DeviceSettingsUpdateResponse struct {
	Results []DeviceSettingResult `json:"results"`
}

type SettingsResponse struct {
	ReaderPort           string `json:"readerPort"`
	BaudRate             int    `json:"baudRate"`
	WakeSettleMs         int    `json:"wakeSettleMs"`
	QuietPeriodMs        int    `json:"quietPeriodMs"`
	RangeQuietPeriodMs   int    `json:"rangeQuietPeriodMs"`
	HardTimeoutMs        int    `json:"hardTimeoutMs"`
	RangeHardTimeoutMs   int    `json:"rangeHardTimeoutMs"`
	FastHardTimeoutMs    int    `json:"fastHardTimeoutMs"`
	RetryAttempts        int    `json:"retryAttempts"`
	RetryBackoffMs       int    `json:"retryBackoffMs"`
	LivePollIntervalMs   int    `json:"livePollIntervalMs"`
	LiveFailureThreshold int    `json:"liveFailureThreshold"`
	HistoryRetentionDays int    `json:"historyRetentionDays"`
	HistoryEnabled       bool   `json:"historyEnabled"`
	DebugLogging         bool   `json:"debugLogging"`
}

type LogsDebugResponse struct {
	General []string `json:"general"`
	Command []string `json:"command"`
	Set     []string `json:"set"`
}

type VersionResponse struct {
	Version  string `json:"version"`
	Platform string `json:"platform"`
}

// ReadingsUpdatedParams is the readings.updated notification payload.
type ReadingsUpdatedParams struct {
	Source   string          `json:"source"`
	Summary  []string        `json:"summary,omitempty"`
	Readings []parse.Reading `json:"readings"`
	Count    int             `json:"count"`
}

// DiagnosticLineParams is the reader.diagnostic notification payload,
// one per filtered response line.
type DiagnosticLineParams struct {
	Command string `json:"command"`
	Line    string `json:"line"`
}
