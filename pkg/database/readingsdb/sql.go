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
	"embed"
	"fmt"
	"time"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/database"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/reader/parse"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

func sqlMigrateUp(db *sql.DB) error {
	if err := database.MigrateUp(db, migrationFiles, "migrations"); err != nil {
		return fmt.Errorf("failed to run readings database migrations: %w", err)
	}
	return nil
}

func sqlAddReadings(
	ctx context.Context, db *sql.DB,
	capturedAt time.Time, source string, readings []parse.Reading,
) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin readings insert transaction: %w", err)
	}
	rollback := func() {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Warn().Err(rbErr).Msg("failed to roll back readings insert")
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		insert or ignore into Readings(
			CapturedAt, Source, Timestamp, Value1, Tag, TemperatureC
		) values (?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		rollback()
		return 0, fmt.Errorf("failed to prepare readings insert statement: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	var inserted int64
	for i := range readings {
		r := &readings[i]
		result, err := stmt.ExecContext(ctx,
			capturedAt.Unix(), source, r.Timestamp, r.Value1, r.Tag, r.TemperatureC,
		)
		if err != nil {
			rollback()
			return 0, fmt.Errorf("failed to execute readings insert: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			rollback()
			return 0, fmt.Errorf("failed to get rows affected: %w", err)
		}
		inserted += rows
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit readings insert: %w", err)
	}
	return inserted, nil
}

func sqlHistory(
	ctx context.Context, db *sql.DB, lastID, limit int,
) ([]database.HistoryEntry, error) {
	if limit <= 0 || limit > 250 {
		limit = 100
	}

	list := make([]database.HistoryEntry, 0, limit)

	// Token-based pagination, newest rows first
	if lastID == 0 {
		lastID = 2147483646 // max int32, meaning "from the latest"
	}

	q, err := db.PrepareContext(ctx, `
		SELECT DBID, CapturedAt, Source, Timestamp, Value1, Tag, TemperatureC
		FROM Readings
		WHERE DBID < ?
		ORDER BY DBID DESC
		LIMIT ?;
	`)
	if err != nil {
		return list, fmt.Errorf("failed to prepare readings query statement: %w", err)
	}
	defer func() {
		if closeErr := q.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	rows, err := q.QueryContext(ctx, lastID, limit)
	if err != nil {
		return list, fmt.Errorf("failed to query readings: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close rows")
		}
	}()

	for rows.Next() {
		var entry database.HistoryEntry
		var capturedAtUnix int64

		err = rows.Scan(
			&entry.DBID,
			&capturedAtUnix,
			&entry.Source,
			&entry.Timestamp,
			&entry.Value1,
			&entry.Tag,
			&entry.TemperatureC,
		)
		if err != nil {
			return list, fmt.Errorf("failed to scan readings row: %w", err)
		}

		entry.CapturedAt = time.Unix(capturedAtUnix, 0).UTC()
		list = append(list, entry)
	}

	if err = rows.Err(); err != nil {
		return list, fmt.Errorf("error iterating readings rows: %w", err)
	}

	return list, nil
}

func sqlCleanupReadings(ctx context.Context, db *sql.DB, retentionDays int) (int64, error) {
	cutoffTime := time.Now().AddDate(0, 0, -retentionDays).Unix()

	stmt, err := db.PrepareContext(ctx, `DELETE FROM Readings WHERE CapturedAt < ?;`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare readings cleanup statement: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	result, err := stmt.ExecContext(ctx, cutoffTime)
	if err != nil {
		return 0, fmt.Errorf("failed to execute readings cleanup: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	// Vacuum to reclaim disk space after cleanup
	if rowsAffected > 0 {
		if err := sqlVacuum(ctx, db); err != nil {
			return rowsAffected, fmt.Errorf("cleanup succeeded but vacuum failed: %w", err)
		}
	}

	return rowsAffected, nil
}

func sqlVacuum(ctx context.Context, db *sql.DB) error {
	sqlStmt := `
	vacuum;
	`
	_, err := db.ExecContext(ctx, sqlStmt)
	if err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	return nil
}
