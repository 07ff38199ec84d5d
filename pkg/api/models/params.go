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

type ConnectParams struct {
	Port string `json:"port" validate:"omitempty,serialport"`
}

type SendParams struct {
	Command string `json:"command" validate:"required,readercommand"`
}

type RangeParams struct {
	StartEpoch int64 `json:"startEpoch" validate:"min=0"`
	EndEpoch   int64 `json:"endEpoch"   validate:"required,gtefield=StartEpoch"`
}

type HistoryParams struct {
	LastID int `json:"lastId" validate:"min=0"`
	Limit  int `json:"limit"  validate:"min=0,max=250"`
}

type ExportParams struct {
	Path string `json:"path"`
}

// UpdateDeviceSettingsParams carries the device variables to write. Nil
// fields are left untouched on the device.
type UpdateDeviceSettingsParams struct {
	SSID               *string `json:"ssid"`
	Password           *string `json:"password"`
	RFIDOnTimeMs       *int    `json:"rfidOnTimeMs"       validate:"omitempty,min=0"`
	PeriodicIntervalMs *int    `json:"periodicIntervalMs" validate:"omitempty,min=0"`
	LongPressMs        *int    `json:"longPressMs"        validate:"omitempty,min=0"`
}

// UpdateSettingsParams patches the host-side configuration. Nil fields
// keep their current value.
type UpdateSettingsParams struct {
	ReaderPort           *string `json:"readerPort"           validate:"omitempty,serialport"`
	WakeSettleMs         *int    `json:"wakeSettleMs"         validate:"omitempty,min=0,max=10000"`
	QuietPeriodMs        *int    `json:"quietPeriodMs"        validate:"omitempty,min=50,max=60000"`
	RangeQuietPeriodMs   *int    `json:"rangeQuietPeriodMs"   validate:"omitempty,min=50,max=60000"`
	HardTimeoutMs        *int    `json:"hardTimeoutMs"        validate:"omitempty,min=1000"`
	RangeHardTimeoutMs   *int    `json:"rangeHardTimeoutMs"   validate:"omitempty,min=1000"`
	FastHardTimeoutMs    *int    `json:"fastHardTimeoutMs"    validate:"omitempty,min=500"`
	RetryAttempts        *int    `json:"retryAttempts"        validate:"omitempty,min=1,max=10"`
	RetryBackoffMs       *int    `json:"retryBackoffMs"       validate:"omitempty,min=0"`
	LivePollIntervalMs   *int    `json:"livePollIntervalMs"   validate:"omitempty,min=500"`
	LiveFailureThreshold *int    `json:"liveFailureThreshold" validate:"omitempty,min=1"`
	HistoryEnabled       *bool   `json:"historyEnabled"`
	HistoryRetentionDays *int    `json:"historyRetentionDays" validate:"omitempty,min=1"`
	DebugLogging         *bool   `json:"debugLogging"`
}
