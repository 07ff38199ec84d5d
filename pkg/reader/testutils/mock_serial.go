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

package testutils

import (
	"errors"
	"time"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/helpers/syncutil"
)

// MockSerialPort is a mock implementation of a serial port for testing.
// It implements the link.SerialPort interface.
//
// Reads consume ReadData; tests preload it or push more with Feed, which
// is how scripted command/response exchanges are built: set WriteFunc to
// inspect the written command and Feed the board's reply.
type MockSerialPort struct {
	ReadError   error
	WriteError  error
	CloseError  error
	TimeoutErr  error
	ReadFunc    func(p []byte) (n int, err error)
	WriteFunc   func(p []byte)
	ReadData    []byte
	ReadIndex   int
	Writes      []string
	DTRHistory  []bool
	RTSHistory  []bool
	InputResets  int
	OutputResets int
	Drains       int
	Closed       bool
	readTimeout  time.Duration
	mu           syncutil.RWMutex
}

// NewMockSerialPort creates a new mock serial port for testing.
func NewMockSerialPort() *MockSerialPort {
	return &MockSerialPort{}
}

// Feed appends data to the read buffer, as if the board had sent it.
// Safe to call from another goroutine while a read is polling.
func (m *MockSerialPort) Feed(data string) {
	m.mu.Lock()
	m.ReadData = append(m.ReadData, data...)
	m.mu.Unlock()
}

// FeedAfter feeds data once delay has passed, for exercising quiet
// period handling with bursts separated by silence.
func (m *MockSerialPort) FeedAfter(delay time.Duration, data string) {
	go func() {
		time.Sleep(delay)
		m.Feed(data)
	}()
}

// Read implements the Read method for serial ports. It supports custom
// read functions, error injection and buffered data reading. When no data
// is available it behaves like a port read timeout: a short block, then
// (0, nil).
func (m *MockSerialPort) Read(p []byte) (n int, err error) {
	m.mu.RLock()
	closed := m.Closed
	m.mu.RUnlock()

	if closed {
		return 0, errors.New("port closed")
	}

	if m.ReadFunc != nil {
		return m.ReadFunc(p)
	}

	if m.ReadError != nil {
		return 0, m.ReadError
	}

	m.mu.Lock()
	available := len(m.ReadData) - m.ReadIndex
	if available > 0 {
		n = copy(p, m.ReadData[m.ReadIndex:])
		m.ReadIndex += n
		m.mu.Unlock()
		return n, nil
	}
	timeout := m.readTimeout
	m.mu.Unlock()

	// Simulate the driver blocking until its read timeout elapses.
	block := 10 * time.Millisecond
	if timeout > 0 && timeout < block {
		block = timeout
	}
	time.Sleep(block)
	return 0, nil
}

// Write implements the Write method for serial ports, recording what was
// sent and invoking WriteFunc so tests can script a response.
func (m *MockSerialPort) Write(p []byte) (n int, err error) {
	m.mu.RLock()
	closed := m.Closed
	m.mu.RUnlock()

	if closed {
		return 0, errors.New("port closed")
	}

	if m.WriteError != nil {
		return 0, m.WriteError
	}

	m.mu.Lock()
	m.Writes = append(m.Writes, string(p))
	m.mu.Unlock()

	if m.WriteFunc != nil {
		m.WriteFunc(p)
	}
	return len(p), nil
}

// Drain implements the Drain method for serial ports.
func (m *MockSerialPort) Drain() error {
	m.mu.Lock()
	m.Drains++
	m.mu.Unlock()
	return nil
}

// ResetInputBuffer discards any unread data.
func (m *MockSerialPort) ResetInputBuffer() error {
	m.mu.Lock()
	m.InputResets++
	m.ReadIndex = len(m.ReadData)
	m.mu.Unlock()
	return nil
}

// ResetOutputBuffer implements the ResetOutputBuffer method for serial ports.
func (m *MockSerialPort) ResetOutputBuffer() error {
	m.mu.Lock()
	m.OutputResets++
	m.mu.Unlock()
	return nil
}

// SetDTR records the requested DTR state.
func (m *MockSerialPort) SetDTR(dtr bool) error {
	m.mu.Lock()
	m.DTRHistory = append(m.DTRHistory, dtr)
	m.mu.Unlock()
	return nil
}

// SetRTS records the requested RTS state.
func (m *MockSerialPort) SetRTS(rts bool) error {
	m.mu.Lock()
	m.RTSHistory = append(m.RTSHistory, rts)
	m.mu.Unlock()
	return nil
}

// SetReadTimeout implements the SetReadTimeout method for serial ports.
func (m *MockSerialPort) SetReadTimeout(t time.Duration) error {
	if m.TimeoutErr != nil {
		return m.TimeoutErr
	}
	m.mu.Lock()
	m.readTimeout = t
	m.mu.Unlock()
	return nil
}

// Close implements the Close method for serial ports.
func (m *MockSerialPort) Close() error {
	m.mu.Lock()
	m.Closed = true
	closeError := m.CloseError
	m.mu.Unlock()
	return closeError
}

// IsClosed returns true if the port has been closed (thread-safe).
func (m *MockSerialPort) IsClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Closed
}

// WrittenCommands returns everything written so far (thread-safe copy).
func (m *MockSerialPort) WrittenCommands() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	writes := make([]string, len(m.Writes))
	copy(writes, m.Writes)
	return writes
}
