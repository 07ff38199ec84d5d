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

// Package database holds the shared migration runner and record structs
// used by the concrete stores under it.
package database

import "time"

// Where a stored reading came from.
const (
	ReadingSourceRange = "range"
	ReadingSourceLive  = "live"
)

/*
 * Structs for SQL records
 */

// HistoryEntry is one reading as persisted in the readings database.
// Timestamp is the device's own wall clock string exactly as reported;
// CapturedAt is the host clock when the batch was parsed.
type HistoryEntry struct {
	CapturedAt   time.Time `json:"capturedAt"`
	Source       string    `json:"source"`
	Timestamp    string    `json:"timestamp"`
	Value1       string    `json:"value1"`
	Tag          string    `json:"tag"`
	TemperatureC string    `json:"temperatureC"`
	DBID         int64     `db:"DBID" json:"id"`
}
