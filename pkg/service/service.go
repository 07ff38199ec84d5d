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

// Package service is the host-side controller for the reader: it owns
// the single serial session and implements every operation the API
// exposes on it, plus the bookkeeping around results, history and
// diagnostic logs.
package service

import (
	"errors"
	"fmt"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/api/models"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/config"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/database/readingsdb"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/helpers"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/reader/link"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/reader/protocol"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/service/livewatch"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/service/state"
	"github.com/spf13/afero"
)

// Precondition errors surfaced to API callers, matched with errors.Is.
var (
	ErrNotConnected = errors.New("no reader connected")
	ErrNoPorts      = errors.New("no serial ports found")
	ErrNoResult     = errors.New("no result set to export")
)

// debugLogCap bounds each diagnostic ring buffer.
const debugLogCap = 100

// Service executes reader operations against the current session.
// Methods are safe for concurrent use: the dispatcher serializes
// exchanges and State guards shared data.
type Service struct {
	cfg         *config.Instance
	st          *state.State
	db          *readingsdb.ReadingsDB
	live        *livewatch.Watcher
	fs          afero.Fs
	portFactory link.SerialPortFactory
	logGeneral  *helpers.RingBuffer[string]
	logCommand  *helpers.RingBuffer[string]
	logSet      *helpers.RingBuffer[string]
}

// New creates the controller. db may be nil, which disables history
// persistence without affecting any command flow.
func New(cfg *config.Instance, st *state.State, db *readingsdb.ReadingsDB) *Service {
	s := &Service{
		cfg:        cfg,
		st:         st,
		db:         db,
		fs:         afero.NewOsFs(),
		logGeneral: helpers.NewRingBuffer[string](debugLogCap),
		logCommand: helpers.NewRingBuffer[string](debugLogCap),
		logSet:     helpers.NewRingBuffer[string](debugLogCap),
	}
	s.live = livewatch.NewWatcher(cfg, st, s, nil)
	return s
}

// Ports lists serial devices that could plausibly be a reader board.
func (s *Service) Ports() (models.PortsResponse, error) {
	ports, err := link.ListPorts()
	if err != nil {
		return models.PortsResponse{}, fmt.Errorf("list serial ports: %w", err)
	}
	if ports == nil {
		ports = []string{}
	}
	return models.PortsResponse{Ports: ports}, nil
}

// Status reports the session and live watch state.
func (s *Service) Status() models.StatusResponse {
	return models.StatusResponse{
		Connected: s.st.Connected(),
		Port:      s.st.Port(),
		Live:      s.st.LiveStatus().Response(),
		Version:   config.AppVersion,
	}
}

// Shutdown stops the live watch and closes the session as part of
// daemon teardown.
func (s *Service) Shutdown() {
	s.live.Stop()
	s.st.ClearConnection("shutdown")
}

// dispatcher returns the connected session's dispatcher.
func (s *Service) dispatcher() (*protocol.Dispatcher, error) {
	conn, ok := s.st.Connection()
	if !ok {
		return nil, ErrNotConnected
	}
	return conn.Dispatcher, nil
}

// outcomeResponse converts a collector outcome to its wire form.
func outcomeResponse(out protocol.Outcome) models.CommandResponse {
	return models.CommandResponse{
		Text:       out.Text,
		EndReason:  out.EndReason,
		ByteCount:  out.Bytes,
		LineCount:  out.Lines,
		DurationMs: out.Duration.Milliseconds(),
	}
}
