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

package service

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/api/models"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/database"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/helpers"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/reader/parse"
	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
)

const defaultExportFile = "rfid_readings_last.csv"

// persistReadings stores a parsed batch in the history database. Failures
// are logged, not returned; history is best effort and never blocks a
// command result.
func (s *Service) persistReadings(source string, readings []parse.Reading) {
	if s.db == nil || !s.cfg.HistoryEnabled() {
		return
	}
	added, err := s.db.AddReadings(time.Now(), source, readings)
	if err != nil {
		log.Warn().Err(err).Msg("error persisting readings to history")
		return
	}
	if added > 0 {
		log.Debug().
			Int64("added", added).
			Str("source", source).
			Msg("persisted new readings")
	}
}

// History returns stored readings going back from lastID, newest first.
func (s *Service) History(lastID, limit int) (models.HistoryResponse, error) {
	if s.db == nil {
		return models.HistoryResponse{Entries: []database.HistoryEntry{}}, nil
	}
	entries, err := s.db.History(lastID, limit)
	if err != nil {
		return models.HistoryResponse{}, fmt.Errorf("query history: %w", err)
	}
	if entries == nil {
		entries = []database.HistoryEntry{}
	}
	return models.HistoryResponse{Entries: entries}, nil
}

// Export writes the current result set to a CSV file. A relative path
// lands in the data directory; an empty one picks a default name there.
func (s *Service) Export(path string) (models.ExportResponse, error) {
	readings, _, _, ok := s.st.LastResult()
	if !ok || len(readings) == 0 {
		return models.ExportResponse{}, ErrNoResult
	}

	if path == "" {
		path = defaultExportFile
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(helpers.DataDir(), path)
	}

	if err := s.fs.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return models.ExportResponse{}, fmt.Errorf("create export dir: %w", err)
	}
	f, err := s.fs.Create(path)
	if err != nil {
		return models.ExportResponse{}, fmt.Errorf("create export file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing export file")
		}
	}()

	if err := gocsv.Marshal(&readings, f); err != nil {
		return models.ExportResponse{}, fmt.Errorf("write export csv: %w", err)
	}

	log.Info().Str("path", path).Int("count", len(readings)).Msg("exported readings")
	return models.ExportResponse{Path: path, Count: len(readings)}, nil
}
