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
	"time"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/api/models"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/reader/link"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/reader/protocol"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/service/state"
	"github.com/rs/zerolog/log"
)

// Connect opens a session with the reader. An empty port falls back to
// the configured port, then to the first enumerated device. Connecting
// to the already-connected port revalidates the existing link instead
// of reopening it; a different port replaces the session, closing the
// old link first.
func (s *Service) Connect(port string) (models.ConnectionResponse, error) {
	if conn, ok := s.st.Connection(); ok {
		samePort := port == "" || port == conn.Port
		if samePort && conn.Dispatcher.ProbeQuick() {
			log.Debug().Str("port", conn.Port).Msg("already connected, link checks out")
			return models.ConnectionResponse{Connected: true, Port: conn.Port}, nil
		}
		if samePort {
			log.Warn().Str("port", conn.Port).Msg("existing link is dead, reconnecting")
			s.st.ClearConnection("lost")
		}
	}

	path := port
	if path == "" {
		path = s.cfg.ReaderPort()
	}
	if path == "" {
		ports, err := link.ListPorts()
		if err != nil {
			return models.ConnectionResponse{}, fmt.Errorf("list serial ports: %w", err)
		}
		if len(ports) == 0 {
			return models.ConnectionResponse{}, ErrNoPorts
		}
		path = ports[0]
		log.Debug().Str("port", path).Msg("no port given, using first enumerated device")
	}

	l, err := link.Open(path, s.cfg.BaudRate(), s.portFactory)
	if err != nil {
		return models.ConnectionResponse{}, fmt.Errorf("open reader link: %w", err)
	}

	d := protocol.NewDispatcher(l, s.cfg, nil, s.captureDiagnostic)
	s.st.SetConnection(&state.Connection{
		Port:       path,
		Link:       l,
		Dispatcher: d,
		OpenedAt:   time.Now(),
	})

	log.Info().Str("port", path).Msg("reader connected")
	return models.ConnectionResponse{Connected: true, Port: path}, nil
}

// Disconnect ends the session. The device is left in whatever mode it
// is in; live watching stops with the session.
func (s *Service) Disconnect() models.ConnectionResponse {
	s.live.Stop()
	s.st.ClearConnection("requested")
	return models.ConnectionResponse{Connected: false}
}

// Ping probes the device. The clock probe runs first; the quick status
// probe covers firmware that is awake but mid tag-read.
func (s *Service) Ping() models.PingResponse {
	conn, ok := s.st.Connection()
	if !ok {
		return models.PingResponse{OK: false}
	}
	if conn.Dispatcher.ProbeAlive() {
		return models.PingResponse{OK: true}
	}
	return models.PingResponse{OK: conn.Dispatcher.ProbeQuick()}
}

// LiveStart activates the live watch. Requires a connected session;
// starting an already-active watch keeps its window.
func (s *Service) LiveStart() (models.LiveStatusResponse, error) {
	if !s.st.Connected() {
		return models.LiveStatusResponse{}, ErrNotConnected
	}
	s.live.Start()
	return s.st.LiveStatus().Response(), nil
}

// LiveStop deactivates the live watch. Safe to call when idle.
func (s *Service) LiveStop() models.LiveStatusResponse {
	s.live.Stop()
	return s.st.LiveStatus().Response()
}

// noteLinkError tears the session down when err says the device dropped
// off the bus. ClearConnection no-ops once the session is gone, so the
// lost signal goes out exactly once no matter how many operations see
// the dead link. Live watching is left to spend its own failure budget.
func (s *Service) noteLinkError(err error) {
	if !link.IsDisconnectError(err) {
		return
	}
	log.Warn().Err(err).Msg("reader link invalidated, disconnecting")
	s.st.ClearConnection("lost")
}
