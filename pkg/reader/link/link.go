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

// Package link manages the serial connection to the reader board. It owns
// the raw port, assembles complete lines out of the byte stream and keeps
// the modem control lines in the state the board requires.
package link

import (
	"bytes"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/helpers/syncutil"
	"go.bug.st/serial"
)

// DefaultBaudRate is the rate the reader firmware runs its console at.
const DefaultBaudRate = 115200

// SerialPort is the interface for serial port operations the link needs.
// This allows for mocking in tests.
type SerialPort interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	Drain() error
	ResetInputBuffer() error
	ResetOutputBuffer() error
	SetDTR(dtr bool) error
	SetRTS(rts bool) error
	SetReadTimeout(t time.Duration) error
	Close() error
}

// SerialPortFactory creates serial port connections.
// This allows for dependency injection in tests.
type SerialPortFactory func(path string, mode *serial.Mode) (SerialPort, error)

// DefaultSerialPortFactory creates real serial port connections.
func DefaultSerialPortFactory(path string, mode *serial.Mode) (SerialPort, error) {
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", path, err)
	}
	return port, nil
}

// Link is an open serial connection to the reader board. Reads go through
// an internal buffer so callers always see whole lines; a partial line stays
// buffered until its terminator arrives.
type Link struct {
	lastData  time.Time
	port      SerialPort
	path      string
	buf       []byte
	bytesRead int64
	mu        syncutil.RWMutex // guards port for concurrent Close
}

// Open opens the serial device at path and prepares it for talking to the
// reader. The board browns out and reboots if DTR or RTS are driven high,
// so both are forced low before any traffic and the port is opened with
// them deasserted.
func Open(path string, baudRate int, factory SerialPortFactory) (*Link, error) {
	if factory == nil {
		factory = DefaultSerialPortFactory
	}
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}

	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
		InitialStatusBits: &serial.ModemOutputBits{
			RTS: false,
			DTR: false,
		},
	}

	port, err := factory(path, mode)
	if err != nil {
		return nil, classifyOpenError(path, err)
	}

	l := &Link{port: port, path: path}
	if err := l.holdControlLinesLow(); err != nil {
		_ = port.Close()
		return nil, classifyOpenError(path, err)
	}

	return l, nil
}

// holdControlLinesLow repeats the deassert because some USB serial drivers
// briefly pulse the lines during open. After the lines settle the buffers
// are cleared of anything the board printed while booting.
func (l *Link) holdControlLinesLow() error {
	for range 3 {
		if err := l.port.SetDTR(false); err != nil {
			return fmt.Errorf("failed to clear DTR: %w", err)
		}
		if err := l.port.SetRTS(false); err != nil {
			return fmt.Errorf("failed to clear RTS: %w", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	// One more pass in case the driver re-asserted during settle.
	if err := l.port.SetDTR(false); err != nil {
		return fmt.Errorf("failed to clear DTR: %w", err)
	}
	if err := l.port.SetRTS(false); err != nil {
		return fmt.Errorf("failed to clear RTS: %w", err)
	}

	time.Sleep(100 * time.Millisecond)

	if err := l.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("failed to reset input buffer: %w", err)
	}
	if err := l.port.ResetOutputBuffer(); err != nil {
		return fmt.Errorf("failed to reset output buffer: %w", err)
	}

	return nil
}

// Path returns the device path the link was opened on.
func (l *Link) Path() string {
	return l.path
}

func (l *Link) snapshot() SerialPort {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.port
}

// ReadLine returns the next complete line from the port, waiting up to
// timeout for one to arrive. The line is returned without its terminator
// and trimmed of surrounding whitespace. A line that is not valid UTF-8 is
// returned as empty rather than failing the read. Returns ErrReadTimeout
// when no complete line arrived in time.
func (l *Link) ReadLine(timeout time.Duration) (string, error) {
	if line, ok := l.takeLine(); ok {
		return line, nil
	}

	deadline := time.Now().Add(timeout)
	chunk := make([]byte, 256)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return "", ErrReadTimeout
		}

		port := l.snapshot()
		if port == nil {
			return "", ErrClosed
		}

		if err := port.SetReadTimeout(remaining); err != nil {
			return "", fmt.Errorf("failed to set read timeout: %w", err)
		}

		n, err := port.Read(chunk)
		if err != nil {
			return "", fmt.Errorf("serial read failed: %w", err)
		}
		if n == 0 {
			// Timeout tick from the driver, re-check the deadline.
			continue
		}

		l.buf = append(l.buf, chunk[:n]...)
		l.bytesRead += int64(n)
		l.lastData = time.Now()

		if line, ok := l.takeLine(); ok {
			return line, nil
		}
	}
}

// takeLine pops the first complete line off the internal buffer.
func (l *Link) takeLine() (string, bool) {
	i := bytes.IndexByte(l.buf, '\n')
	if i < 0 {
		return "", false
	}

	raw := l.buf[:i]
	l.buf = l.buf[i+1:]

	raw = bytes.TrimSuffix(raw, []byte{'\r'})
	if !utf8.Valid(raw) {
		return "", true
	}
	return string(bytes.TrimSpace(raw)), true
}

// Write sends data to the port and drains the OS transmit buffer so the
// bytes are actually on the wire before Write returns.
func (l *Link) Write(data []byte) error {
	port := l.snapshot()
	if port == nil {
		return ErrClosed
	}

	if _, err := port.Write(data); err != nil {
		return fmt.Errorf("serial write failed: %w", err)
	}
	if err := port.Drain(); err != nil {
		return fmt.Errorf("serial drain failed: %w", err)
	}
	return nil
}

// ClearInput discards everything the board has sent that has not been
// consumed yet, both in the OS buffer and the link's own line buffer.
func (l *Link) ClearInput() error {
	port := l.snapshot()
	if port == nil {
		return ErrClosed
	}

	l.buf = l.buf[:0]
	if err := port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("failed to reset input buffer: %w", err)
	}
	return nil
}

// BytesRead returns the total raw bytes received since the link opened,
// including line terminators and partial lines still buffered.
func (l *Link) BytesRead() int64 {
	return l.bytesRead
}

// LastDataAt returns when the last byte arrived, or the zero time if
// nothing has been received yet.
func (l *Link) LastDataAt() time.Time {
	return l.lastData
}

// Close closes the underlying port. A read blocked in another goroutine
// is interrupted by the close. Close is safe to call more than once.
func (l *Link) Close() error {
	l.mu.Lock()
	port := l.port
	l.port = nil
	l.mu.Unlock()

	if port == nil {
		return nil
	}
	if err := port.Close(); err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}
	return nil
}
