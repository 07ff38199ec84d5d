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
	"testing"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/reader/link"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/reader/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

func TestConnect_OpensExplicitPort(t *testing.T) {
	t.Parallel()

	svc, mock := newTestService(t)

	resp, err := svc.Connect("/dev/ttyUSB0")
	require.NoError(t, err)

	assert.True(t, resp.Connected)
	assert.Equal(t, "/dev/ttyUSB0", resp.Port)
	assert.True(t, svc.st.Connected())
	assert.Equal(t, "/dev/ttyUSB0", svc.st.Port())
	assert.Empty(t, mock.WrittenCommands(), "fresh connect must not probe the device")
}

func TestConnect_UsesConfiguredPortWhenNoneGiven(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	svc.cfg.SetReaderPort("/dev/ttyACM2")

	var paths []string
	svc.portFactory = func(path string, _ *serial.Mode) (link.SerialPort, error) {
		paths = append(paths, path)
		return testutils.NewMockSerialPort(), nil
	}

	resp, err := svc.Connect("")
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM2", resp.Port)
	assert.Equal(t, []string{"/dev/ttyACM2"}, paths)
}

func TestConnect_SamePortReusesLiveSession(t *testing.T) {
	t.Parallel()

	svc, mock := newTestService(t)
	opens := 0
	svc.portFactory = func(_ string, _ *serial.Mode) (link.SerialPort, error) {
		opens++
		return mock, nil
	}
	mock.WriteFunc = func(p []byte) {
		if string(p) == "status\n" {
			mock.Feed("CMD_RECEIVED: status\n")
		}
	}

	connectService(t, svc)
	require.Equal(t, 1, opens)

	// Empty port means "whatever we are on", so the live session is kept.
	resp, err := svc.Connect("")
	require.NoError(t, err)
	assert.True(t, resp.Connected)
	assert.Equal(t, "/dev/ttyUSB0", resp.Port)
	assert.Equal(t, 1, opens, "live session must not be reopened")
}

func TestConnect_ReplacesDeadSession(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	var mocks []*testutils.MockSerialPort
	svc.portFactory = func(_ string, _ *serial.Mode) (link.SerialPort, error) {
		m := testutils.NewMockSerialPort()
		mocks = append(mocks, m)
		return m, nil
	}

	connectService(t, svc)
	require.Len(t, mocks, 1)

	// First mock stays silent, so the quick probe finds a dead link.
	resp, err := svc.Connect("/dev/ttyUSB0")
	require.NoError(t, err)
	assert.True(t, resp.Connected)
	require.Len(t, mocks, 2, "dead session gets a fresh open")
	assert.True(t, mocks[0].IsClosed())
	assert.False(t, mocks[1].IsClosed())
}

func TestConnect_SwitchesPortWithoutProbe(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	var mocks []*testutils.MockSerialPort
	svc.portFactory = func(_ string, _ *serial.Mode) (link.SerialPort, error) {
		m := testutils.NewMockSerialPort()
		mocks = append(mocks, m)
		return m, nil
	}

	connectService(t, svc)

	resp, err := svc.Connect("/dev/ttyUSB1")
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB1", resp.Port)
	require.Len(t, mocks, 2)
	assert.True(t, mocks[0].IsClosed(), "old link closes when the port changes")
	assert.Empty(t, mocks[0].WrittenCommands(), "no probe when switching ports")
}

func TestDisconnect(t *testing.T) {
	t.Parallel()

	svc, mock := newTestService(t)
	connectService(t, svc)

	resp := svc.Disconnect()
	assert.False(t, resp.Connected)
	assert.False(t, svc.st.Connected())
	assert.True(t, mock.IsClosed())
}

func TestDisconnect_WhenNotConnected(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	resp := svc.Disconnect()
	assert.False(t, resp.Connected)
}

func TestPing_NotConnected(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	assert.False(t, svc.Ping().OK)
}

func TestPing_AliveViaTimeProbe(t *testing.T) {
	t.Parallel()

	svc, mock := newTestService(t)
	mock.WriteFunc = func(p []byte) {
		if string(p) == "time\n" {
			mock.Feed("2026-08-25 10:00:00\n")
		}
	}
	connectService(t, svc)

	assert.True(t, svc.Ping().OK)
}

func TestPing_FallsBackToQuickProbe(t *testing.T) {
	t.Parallel()

	svc, mock := newTestService(t)
	mock.WriteFunc = func(p []byte) {
		// No answer for time, but status gets through.
		if string(p) == "status\n" {
			mock.Feed("CMD_RECEIVED: status\n[STATUS] Dashboard Mode: ACTIVE\n")
		}
	}
	connectService(t, svc)

	assert.True(t, svc.Ping().OK)
}

func TestLiveStart_RequiresConnection(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.LiveStart()
	require.ErrorIs(t, err, ErrNotConnected)
}

func TestLiveStartStop(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	connectService(t, svc)

	resp, err := svc.LiveStart()
	require.NoError(t, err)
	assert.True(t, resp.Active)
	assert.NotNil(t, resp.WindowStart)

	resp = svc.LiveStop()
	assert.False(t, resp.Active)
}
