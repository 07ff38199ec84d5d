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

// Package readingsdb persists parsed readings so history survives host
// restarts and device-side clears. The device's own storage is tiny and
// wiped by the clear command, so this is the only durable record.
package readingsdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/config"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/database"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/helpers"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/reader/parse"
	_ "github.com/mattn/go-sqlite3"
)

var ErrNullSQL = errors.New("readings database is not connected")

const sqliteConnParams = "?_journal_mode=WAL&_synchronous=FULL&_busy_timeout=5000"

// ReadingsDB is the SQLite store for captured readings.
type ReadingsDB struct {
	sql *sql.DB
	ctx context.Context
}

func OpenReadingsDB(ctx context.Context) (*ReadingsDB, error) {
	db := &ReadingsDB{sql: nil, ctx: ctx}
	err := db.Open()
	return db, err
}

func (db *ReadingsDB) Open() error {
	dbPath := db.GetDBPath()
	if _, err := os.Stat(dbPath); err != nil {
		mkdirErr := os.MkdirAll(filepath.Dir(dbPath), 0o750)
		if mkdirErr != nil {
			return fmt.Errorf("failed to create directory for database: %w", mkdirErr)
		}
	}
	sqlInstance, err := sql.Open("sqlite3", dbPath+sqliteConnParams)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.sql = sqlInstance
	return db.Allocate()
}

func (db *ReadingsDB) GetDBPath() string {
	return filepath.Join(helpers.DataDir(), config.ReadingsDbFile)
}

// Allocate brings the schema up to date. Goose is a no-op when current.
func (db *ReadingsDB) Allocate() error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlMigrateUp(db.sql)
}

// AddReadings inserts a parsed batch. Rows already present (same device
// timestamp, value and tag) are skipped, so re-polling an overlapping
// live window does not duplicate history. Returns the number of rows
// actually inserted.
func (db *ReadingsDB) AddReadings(
	capturedAt time.Time, source string, readings []parse.Reading,
) (int64, error) {
	if db.sql == nil {
		return 0, ErrNullSQL
	}
	return sqlAddReadings(db.ctx, db.sql, capturedAt, source, readings)
}

// History retrieves stored readings newest first, paginated the same way
// as the API: lastID 0 starts from the latest row.
func (db *ReadingsDB) History(lastID, limit int) ([]database.HistoryEntry, error) {
	if db.sql == nil {
		return nil, ErrNullSQL
	}
	return sqlHistory(db.ctx, db.sql, lastID, limit)
}

// CleanupReadings removes rows captured before the retention period.
func (db *ReadingsDB) CleanupReadings(retentionDays int) (int64, error) {
	if db.sql == nil {
		return 0, ErrNullSQL
	}
	return sqlCleanupReadings(db.ctx, db.sql, retentionDays)
}

func (db *ReadingsDB) Vacuum() error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlVacuum(db.ctx, db.sql)
}

func (db *ReadingsDB) Close() error {
	if db.sql == nil {
		return nil
	}
	err := db.sql.Close()
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// SetSQLForTesting allows injection of a sql.DB instance for testing
// purposes. This method should only be used in tests.
func (db *ReadingsDB) SetSQLForTesting(ctx context.Context, sqlDB *sql.DB) error {
	db.sql = sqlDB
	db.ctx = ctx
	return db.Allocate()
}
