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

package methods

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/api/models"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/api/models/requests"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/config"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/service"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/service/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestEnv builds a request environment around a real config and an
// unconnected service. Handlers that need a live reader are exercised
// only on their error paths here; the session behavior itself is
// covered by the service package tests.
func newTestEnv(t *testing.T) requests.RequestEnv {
	t.Helper()

	cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
	require.NoError(t, err)

	st, _ := state.NewState()
	svc := service.New(cfg, st, nil)
	t.Cleanup(svc.Shutdown)

	return requests.RequestEnv{
		Config:  cfg,
		State:   st,
		Service: svc,
		IsLocal: true,
	}
}

func TestHandleStatus(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	result, err := HandleStatus(env)
	require.NoError(t, err)

	status, ok := result.(models.StatusResponse)
	require.True(t, ok)
	assert.False(t, status.Connected)
	assert.Empty(t, status.Port)
	assert.Equal(t, config.AppVersion, status.Version)
}

func TestHandleVersion(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	result, err := HandleVersion(env)
	require.NoError(t, err)

	version, ok := result.(models.VersionResponse)
	require.True(t, ok)
	assert.Equal(t, config.AppVersion, version.Version)
	assert.Equal(t, runtime.GOOS, version.Platform)
}

func TestHandleConnect_RejectsBadPort(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.Params = json.RawMessage(`{"port":"ttyUSB0"}`)

	_, err := HandleConnect(env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid params")
}

func TestHandleDisconnect_Idle(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	result, err := HandleDisconnect(env)
	require.NoError(t, err)

	conn, ok := result.(models.ConnectionResponse)
	require.True(t, ok)
	assert.False(t, conn.Connected)
}

func TestHandleReaderSend_MissingParams(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, err := HandleReaderSend(env)
	assert.ErrorIs(t, err, ErrMissingParams)
}

func TestHandleReaderSend_NotConnected(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.Params = json.RawMessage(`{"command":"status"}`)

	_, err := HandleReaderSend(env)
	assert.ErrorIs(t, err, service.ErrNotConnected)
}

func TestHandleReadingsRange_RejectsInvertedWindow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.Params = json.RawMessage(`{"startEpoch":200,"endEpoch":100}`)

	_, err := HandleReadingsRange(env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid params")
}

func TestHandleReadingsRange_NotConnected(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.Params = json.RawMessage(`{"startEpoch":100,"endEpoch":200}`)

	_, err := HandleReadingsRange(env)
	assert.ErrorIs(t, err, service.ErrNotConnected)
}

func TestHandleReadingsHistory_NoDatabase(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	result, err := HandleReadingsHistory(env)
	require.NoError(t, err)

	history, ok := result.(models.HistoryResponse)
	require.True(t, ok)
	assert.NotNil(t, history.Entries)
	assert.Empty(t, history.Entries)
}

func TestHandleReadingsExport_NoResult(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, err := HandleReadingsExport(env)
	assert.ErrorIs(t, err, service.ErrNoResult)
}

func TestHandleLiveStart_NotConnected(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, err := HandleLiveStart(env)
	assert.ErrorIs(t, err, service.ErrNotConnected)
}

func TestHandleSettings_Defaults(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	result, err := HandleSettings(env)
	require.NoError(t, err)

	settings, ok := result.(models.SettingsResponse)
	require.True(t, ok)
	assert.Equal(t, 115200, settings.BaudRate)
	assert.Equal(t, 600, settings.QuietPeriodMs)
	assert.Equal(t, 20000, settings.HardTimeoutMs)
	assert.Equal(t, 5000, settings.LivePollIntervalMs)
	assert.Equal(t, 90, settings.HistoryRetentionDays)
	assert.True(t, settings.HistoryEnabled)
	assert.False(t, settings.DebugLogging)
}

func TestHandleSettingsUpdate_RemoteNotAllowed(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.IsLocal = false
	env.Params = json.RawMessage(`{"wakeSettleMs":120}`)

	_, err := HandleSettingsUpdate(env)
	assert.ErrorIs(t, err, ErrNotAllowed)
}

func TestHandleSettingsUpdate_PatchesAndPersists(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.Params = json.RawMessage(`{"wakeSettleMs":120,"historyRetentionDays":30,"liveFailureThreshold":5}`)

	result, err := HandleSettingsUpdate(env)
	require.NoError(t, err)
	assert.Equal(t, NoContent{}, result)

	readers := env.Config.ReaderValues()
	assert.Equal(t, 120, readers.WakeSettleMs)
	// untouched fields keep their values
	assert.Equal(t, 600, readers.QuietPeriodMs)
	assert.Equal(t, 30, env.Config.HistoryValues().RetentionDays)
	assert.Equal(t, 5, env.Config.LiveValues().FailureThreshold)

	// patch went through Save, so a reload sees the same values
	require.NoError(t, env.Config.Load())
	assert.Equal(t, 120, env.Config.ReaderValues().WakeSettleMs)
	assert.Equal(t, 30, env.Config.HistoryValues().RetentionDays)
}

func TestHandleSettingsUpdate_RejectsOutOfRange(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.Params = json.RawMessage(`{"quietPeriodMs":10}`)

	_, err := HandleSettingsUpdate(env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid params")
}

func TestHandleDeviceSettingsUpdate_RequiresAValue(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.Params = json.RawMessage(`{}`)

	_, err := HandleDeviceSettingsUpdate(env)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestHandleLogsDebug_Empty(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	result, err := HandleLogsDebug(env)
	require.NoError(t, err)

	logs, ok := result.(models.LogsDebugResponse)
	require.True(t, ok)
	assert.Empty(t, logs.General)
	assert.Empty(t, logs.Command)
	assert.Empty(t, logs.Set)
}
