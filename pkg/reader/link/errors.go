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

package link

import (
	"errors"
	"fmt"
	"strings"

	"go.bug.st/serial"
)

var (
	// ErrReadTimeout is returned by ReadLine when no complete line arrived
	// within the caller's timeout. It is a normal outcome, not a fault.
	ErrReadTimeout = errors.New("serial read timed out")

	// ErrClosed is returned when an operation races with Close.
	ErrClosed = errors.New("serial link is closed")
)

// Reasons a connection attempt can fail, carried by ConnectionError.
const (
	ReasonBusy     = "busy"
	ReasonNotFound = "not_found"
	ReasonOSError  = "os_error"
)

// ConnectionError describes a failed attempt to open the serial device.
// Reason is one of the Reason constants above so callers can distinguish
// "another program holds the port" from "the device is unplugged" without
// string matching.
type ConnectionError struct {
	Err    error
	Port   string
	Reason string
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot open %s (%s): %v", e.Port, e.Reason, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// classifyOpenError maps an open failure onto a ConnectionError reason.
func classifyOpenError(path string, err error) *ConnectionError {
	reason := ReasonOSError

	var portErr *serial.PortError
	if errors.As(err, &portErr) {
		switch portErr.Code() {
		case serial.PortBusy, serial.PermissionDenied:
			reason = ReasonBusy
		case serial.PortNotFound:
			reason = ReasonNotFound
		case serial.PortClosed, serial.InvalidSerialPort, serial.InvalidSpeed,
			serial.InvalidDataBits, serial.InvalidParity, serial.InvalidStopBits,
			serial.InvalidTimeoutValue, serial.ErrorEnumeratingPorts,
			serial.FunctionNotImplemented:
			reason = ReasonOSError
		default:
			reason = ReasonOSError
		}
		return &ConnectionError{Port: path, Reason: reason, Err: err}
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "already open"),
		strings.Contains(errStr, "busy"),
		strings.Contains(errStr, "access denied"),
		strings.Contains(errStr, "permission denied"):
		reason = ReasonBusy
	case strings.Contains(errStr, "no such file"),
		strings.Contains(errStr, "not found"),
		strings.Contains(errStr, "cannot find"):
		reason = ReasonNotFound
	}

	return &ConnectionError{Port: path, Reason: reason, Err: err}
}

// IsDisconnectError checks if an error indicates the device dropped off
// the bus, as opposed to a configuration or permission problem.
func IsDisconnectError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrClosed) {
		return true
	}

	// Check for specific serial library error types first
	var portErr *serial.PortError
	if errors.As(err, &portErr) {
		switch portErr.Code() {
		case serial.PortNotFound:
			return true // Device was unplugged/removed
		case serial.PortClosed:
			return true // Port was closed unexpectedly
		case serial.InvalidSerialPort:
			return true // Device is no longer a valid serial port
		case serial.PortBusy, serial.PermissionDenied, serial.InvalidSpeed,
			serial.InvalidDataBits, serial.InvalidParity, serial.InvalidStopBits,
			serial.InvalidTimeoutValue, serial.ErrorEnumeratingPorts,
			serial.FunctionNotImplemented:
			return false // Configuration or permission errors, not disconnection
		default:
			return false
		}
	}

	// Fallback to string matching for OS-level errors that aren't wrapped
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "device not configured") ||
		strings.Contains(errStr, "input/output error") ||
		strings.Contains(errStr, "no such device") ||
		strings.Contains(errStr, "device not found") ||
		strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "device disconnected")
}
