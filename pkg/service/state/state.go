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

package state

import (
	"context"
	"time"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/api/models"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/helpers/syncutil"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/reader/link"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/reader/parse"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/reader/protocol"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/service/notifications"
	"github.com/rs/zerolog/log"
)

// Connection is an open session with the reader. The Link and Dispatcher
// synchronize their own access, so sharing the pointer is safe.
type Connection struct {
	OpenedAt   time.Time
	Link       *link.Link
	Dispatcher *protocol.Dispatcher
	Port       string
}

// LiveStatus describes the live watch loop. WindowStart stays fixed at
// activation so every poll covers the full session so far.
type LiveStatus struct {
	WindowStart       time.Time
	LastPollAt        time.Time
	Active            bool
	ConsecutiveErrors int
}

// Response converts to the wire payload, leaving zero times out.
func (ls LiveStatus) Response() models.LiveStatusResponse {
	resp := models.LiveStatusResponse{
		Active:            ls.Active,
		ConsecutiveErrors: ls.ConsecutiveErrors,
	}
	if !ls.WindowStart.IsZero() {
		ws := ls.WindowStart
		resp.WindowStart = &ws
	}
	if !ls.LastPollAt.IsZero() {
		lp := ls.LastPollAt
		resp.LastPollAt = &lp
	}
	return resp
}

// State holds the runtime state of the host service.
//
// LOCKING RULES: mu protects all mutable fields. To prevent deadlocks:
//   - Never send to channels while holding the lock
//   - Never call external methods (link close is the one exception,
//     it cannot call back into State) while holding the lock
//   - Pattern: lock, modify, copy payload, unlock, send notifications
type State struct {
	ctx           context.Context
	ctxCancelFunc context.CancelFunc
	conn          *Connection
	Notifications chan<- models.Notification
	lastReadings  []parse.Reading
	lastSummary   []string
	lastSource    string
	lastOutcome   models.CommandResponse
	live          LiveStatus
	mu            syncutil.RWMutex
	hasResult     bool
}

func NewState() (state *State, notificationCh <-chan models.Notification) {
	// Buffer of 500 gives headroom for diagnostic line bursts without
	// dropping the connection and live state changes mixed in with them.
	ns := make(chan models.Notification, 500)
	ctx, ctxCancelFunc := context.WithCancel(context.Background())
	return &State{
		Notifications: ns,
		ctx:           ctx,
		ctxCancelFunc: ctxCancelFunc,
	}, ns
}

// SetConnection installs a new session. An existing one is closed first.
func (s *State) SetConnection(conn *Connection) {
	s.mu.Lock()

	existing := s.conn
	if existing != nil && existing.Link != nil {
		if err := existing.Link.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing existing connection")
		}
	}
	s.conn = conn

	// Prepare payload inside lock, send outside
	payload := models.ConnectionResponse{
		Connected: true,
		Port:      conn.Port,
	}

	s.mu.Unlock()

	notifications.ConnectionState(s.Notifications, payload)
}

// ClearConnection closes and removes the session. Reason lands in the
// connection.state notification so clients can tell a requested
// disconnect from a lost device.
func (s *State) ClearConnection(reason string) {
	s.mu.Lock()

	existing := s.conn
	if existing == nil {
		s.mu.Unlock()
		return
	}
	if existing.Link != nil {
		if err := existing.Link.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing connection")
		}
	}
	s.conn = nil

	payload := models.ConnectionResponse{
		Connected: false,
		Port:      existing.Port,
		Reason:    reason,
	}

	s.mu.Unlock()

	notifications.ConnectionState(s.Notifications, payload)
}

// Connection returns the current session, if any.
func (s *State) Connection() (*Connection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn, s.conn != nil
}

func (s *State) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn != nil
}

// Port returns the connected port path, or empty when disconnected.
func (s *State) Port() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.conn == nil {
		return ""
	}
	return s.conn.Port
}

// SetLastResult stores a parsed result set as the current one, making it
// the export source, and broadcasts it.
func (s *State) SetLastResult(
	source string, readings []parse.Reading, summary []string, outcome models.CommandResponse,
) {
	s.mu.Lock()

	s.lastSource = source
	s.lastReadings = readings
	s.lastSummary = summary
	s.lastOutcome = outcome
	s.hasResult = true

	payload := models.ReadingsUpdatedParams{
		Source:   source,
		Summary:  summary,
		Readings: readings,
		Count:    len(readings),
	}

	s.mu.Unlock()

	notifications.ReadingsUpdated(s.Notifications, payload)
}

// LastResult returns the current result set. The slices are copies, safe
// for callers to hold on to.
func (s *State) LastResult() (readings []parse.Reading, summary []string, outcome models.CommandResponse, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasResult {
		return nil, nil, models.CommandResponse{}, false
	}
	readings = make([]parse.Reading, len(s.lastReadings))
	copy(readings, s.lastReadings)
	summary = make([]string, len(s.lastSummary))
	copy(summary, s.lastSummary)
	return readings, summary, s.lastOutcome, true
}

// SetLiveActive marks the live watch running with a fixed window start.
func (s *State) SetLiveActive(windowStart time.Time) {
	s.mu.Lock()
	s.live = LiveStatus{Active: true, WindowStart: windowStart}
	payload := s.live.Response()
	s.mu.Unlock()

	notifications.LiveState(s.Notifications, payload)
}

// SetLiveStopped deactivates the live watch. Calling it when already
// stopped is a no-op.
func (s *State) SetLiveStopped() {
	s.mu.Lock()
	wasActive := s.live.Active
	s.live = LiveStatus{}
	payload := s.live.Response()
	s.mu.Unlock()

	if wasActive {
		notifications.LiveState(s.Notifications, payload)
	}
}

// RecordLivePoll updates poll bookkeeping. A change in the consecutive
// error count is broadcast; routine healthy ticks are not.
func (s *State) RecordLivePoll(at time.Time, consecutiveErrors int) {
	s.mu.Lock()
	if !s.live.Active {
		s.mu.Unlock()
		return
	}
	notify := s.live.ConsecutiveErrors != consecutiveErrors
	s.live.LastPollAt = at
	s.live.ConsecutiveErrors = consecutiveErrors
	payload := s.live.Response()
	s.mu.Unlock()

	if notify {
		notifications.LiveState(s.Notifications, payload)
	}
}

func (s *State) LiveStatus() LiveStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live
}

// StopService cancels the service context, ending the daemon loops.
func (s *State) StopService() {
	s.ctxCancelFunc()
}

func (s *State) GetContext() context.Context {
	return s.ctx
}
