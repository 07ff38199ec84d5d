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

// Package helpers provides shared test utilities: an in-process WebSocket
// server speaking the same endpoint as the real API, and config fixtures.
package helpers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/config"
	"github.com/gorilla/websocket"
	"github.com/olahol/melody"
	"github.com/stretchr/testify/require"
)

// WebSocketTestServer hosts a melody instance behind httptest for
// exercising WebSocket clients against the real API endpoint path.
type WebSocketTestServer struct {
	Server *httptest.Server
	Melody *melody.Melody
}

// NewWebSocketTestServer starts a test server that routes messages on
// the API endpoint to handler. A nil handler accepts connections but
// ignores inbound messages, which suits notification-only tests.
func NewWebSocketTestServer(t *testing.T, handler func(*melody.Session, []byte)) *WebSocketTestServer {
	t.Helper()

	m := melody.New()
	m.Upgrader.CheckOrigin = func(_ *http.Request) bool { return true }

	if handler != nil {
		m.HandleMessage(handler)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v0.1", func(w http.ResponseWriter, r *http.Request) {
		_ = m.HandleRequest(w, r)
	})

	srv := &WebSocketTestServer{
		Server: httptest.NewServer(mux),
		Melody: m,
	}

	// Brief wait so the listener is ready before clients dial, which
	// avoids "bad handshake" errors on loaded CI machines.
	time.Sleep(5 * time.Millisecond)

	return srv
}

// Close shuts down the test server and closes all sessions.
func (s *WebSocketTestServer) Close() {
	s.Server.Close()
	_ = s.Melody.Close()
}

// Port returns the ephemeral port the test server is listening on.
func (s *WebSocketTestServer) Port(t *testing.T) int {
	t.Helper()
	u, err := url.Parse(s.Server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return port
}

// NewClient dials the test server and returns a connected WebSocket.
// The connection is closed automatically when the test finishes.
func (s *WebSocketTestServer) NewClient(t *testing.T) *websocket.Conn {
	t.Helper()

	u, err := url.Parse(s.Server.URL)
	require.NoError(t, err)
	u.Scheme = "ws"
	u.Path = "/api/v0.1"

	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	t.Cleanup(func() {
		_ = conn.Close()
	})

	return conn
}

// NewTestConfigWithPort builds a config rooted in a temp dir whose API
// port points at the given port, usually one from an httptest server.
func NewTestConfigWithPort(t *testing.T, port int) *config.Instance {
	t.Helper()

	defaults := config.BaseDefaults
	defaults.Service.APIPort = port

	cfg, err := config.NewConfig(t.TempDir(), defaults)
	require.NoError(t, err)
	return cfg
}
