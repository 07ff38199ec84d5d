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

package readingsdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/config"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/database"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/reader/parse"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB uses a temp file rather than :memory: so the schema survives
// the connection pool opening extra connections.
func openTestDB(t *testing.T) *ReadingsDB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "readings_test.db")
	sqlDB, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)

	db := &ReadingsDB{}
	require.NoError(t, db.SetSQLForTesting(context.Background(), sqlDB))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestAddReadings_RoundTrip(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	capturedAt := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	readings := []parse.Reading{
		{Timestamp: "2025-07-23 05:13:05", Value1: "999", Tag: "141004265912", TemperatureC: "24.86"},
		{Timestamp: "2025-07-23 05:14:10", Value1: "998", Tag: "141004265913", TemperatureC: "N/A"},
	}

	inserted, err := db.AddReadings(capturedAt, database.ReadingSourceRange, readings)
	require.NoError(t, err)
	assert.Equal(t, int64(2), inserted)

	list, err := db.History(0, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)

	// Newest row first
	assert.Equal(t, "2025-07-23 05:14:10", list[0].Timestamp)
	assert.Equal(t, "998", list[0].Value1)
	assert.Equal(t, "141004265913", list[0].Tag)
	assert.Equal(t, "N/A", list[0].TemperatureC)
	assert.Equal(t, database.ReadingSourceRange, list[0].Source)
	assert.Equal(t, capturedAt, list[0].CapturedAt)
	assert.Greater(t, list[0].DBID, list[1].DBID)

	assert.Equal(t, "2025-07-23 05:13:05", list[1].Timestamp)
	assert.Equal(t, "24.86", list[1].TemperatureC)
}

func TestAddReadings_DeduplicatesAcrossBatches(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	// Live polling re-reads an overlapping window every few seconds, so
	// most of each batch has already been stored.
	first := []parse.Reading{
		{Timestamp: "2025-07-23 05:13:05", Value1: "999", Tag: "141004265912", TemperatureC: "24.86"},
		{Timestamp: "2025-07-23 05:14:10", Value1: "998", Tag: "141004265913", TemperatureC: "N/A"},
	}
	second := []parse.Reading{
		first[1],
		{Timestamp: "2025-07-23 05:15:20", Value1: "997", Tag: "141004265914", TemperatureC: "25.01"},
	}

	inserted, err := db.AddReadings(time.Now().UTC(), database.ReadingSourceLive, first)
	require.NoError(t, err)
	assert.Equal(t, int64(2), inserted)

	inserted, err = db.AddReadings(time.Now().UTC(), database.ReadingSourceLive, second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), inserted)

	list, err := db.History(0, 10)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestAddReadings_EmptyBatch(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	inserted, err := db.AddReadings(time.Now().UTC(), database.ReadingSourceRange, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), inserted)
}

func TestHistory_PaginatesNewestFirst(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	capturedAt := time.Now().UTC()
	for i := range 5 {
		readings := []parse.Reading{{
			Timestamp:    fmt.Sprintf("2025-07-23 05:1%d:00", i),
			Value1:       fmt.Sprintf("99%d", i),
			Tag:          fmt.Sprintf("14100426591%d", i),
			TemperatureC: "N/A",
		}}
		_, err := db.AddReadings(capturedAt, database.ReadingSourceRange, readings)
		require.NoError(t, err)
	}

	page, err := db.History(0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "2025-07-23 05:14:00", page[0].Timestamp)
	assert.Equal(t, "2025-07-23 05:13:00", page[1].Timestamp)

	page, err = db.History(int(page[1].DBID), 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "2025-07-23 05:12:00", page[0].Timestamp)
	assert.Equal(t, "2025-07-23 05:11:00", page[1].Timestamp)

	page, err = db.History(int(page[1].DBID), 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "2025-07-23 05:10:00", page[0].Timestamp)
}

func TestCleanupReadings_RemovesExpiredRows(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	old := time.Now().UTC().AddDate(0, 0, -10)
	recent := time.Now().UTC()

	_, err := db.AddReadings(old, database.ReadingSourceRange, []parse.Reading{
		{Timestamp: "2025-07-13 05:13:05", Value1: "999", Tag: "141004265912", TemperatureC: "N/A"},
	})
	require.NoError(t, err)
	_, err = db.AddReadings(recent, database.ReadingSourceRange, []parse.Reading{
		{Timestamp: "2025-07-23 05:13:05", Value1: "998", Tag: "141004265913", TemperatureC: "N/A"},
	})
	require.NoError(t, err)

	removed, err := db.CleanupReadings(7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	list, err := db.History(0, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2025-07-23 05:13:05", list[0].Timestamp)
}

func TestOpenReadingsDB_CreatesDataDir(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "nested", "data")
	t.Setenv(config.AppEnv, dataDir)

	db, err := OpenReadingsDB(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = os.Stat(filepath.Join(dataDir, config.ReadingsDbFile))
	require.NoError(t, err)

	// The fresh database is migrated and usable straight away
	inserted, err := db.AddReadings(time.Now().UTC(), database.ReadingSourceRange, []parse.Reading{
		{Timestamp: "2025-07-23 05:13:05", Value1: "999", Tag: "141004265912", TemperatureC: "N/A"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), inserted)
}

func TestMethodsOnClosedDB(t *testing.T) {
	t.Parallel()

	db := &ReadingsDB{}

	_, err := db.AddReadings(time.Now().UTC(), database.ReadingSourceRange, nil)
	require.ErrorIs(t, err, ErrNullSQL)
	_, err = db.History(0, 10)
	require.ErrorIs(t, err, ErrNullSQL)
	_, err = db.CleanupReadings(7)
	require.ErrorIs(t, err, ErrNullSQL)
	require.NoError(t, db.Close())
}
