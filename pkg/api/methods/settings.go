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
	"fmt"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/api/models"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/api/models/requests"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/api/validation"
	"github.com/rs/zerolog/log"
)

func HandleSettings(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received settings request")

	readers := env.Config.ReaderValues()
	live := env.Config.LiveValues()
	history := env.Config.HistoryValues()

	return models.SettingsResponse{
		ReaderPort:           readers.Port,
		BaudRate:             readers.BaudRate,
		WakeSettleMs:         readers.WakeSettleMs,
		QuietPeriodMs:        readers.QuietPeriodMs,
		RangeQuietPeriodMs:   readers.RangeQuietPeriodMs,
		HardTimeoutMs:        readers.HardTimeoutMs,
		RangeHardTimeoutMs:   readers.RangeHardTimeoutMs,
		FastHardTimeoutMs:    readers.FastHardTimeoutMs,
		RetryAttempts:        readers.RetryAttempts,
		RetryBackoffMs:       readers.RetryBackoffMs,
		LivePollIntervalMs:   live.PollIntervalMs,
		LiveFailureThreshold: live.FailureThreshold,
		HistoryRetentionDays: history.RetentionDays,
		HistoryEnabled:       history.Enabled,
		DebugLogging:         env.Config.DebugLogging(),
	}, nil
}

// HandleSettingsUpdate patches the host configuration. Only loopback
// clients may change it; remote dashboards get settings read-only.
//
//nolint:gocritic,gocyclo // single-use parameter; one branch per settable field
func HandleSettingsUpdate(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received settings update request")

	if !env.IsLocal {
		return nil, ErrNotAllowed
	}

	var params models.UpdateSettingsParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	readers := env.Config.ReaderValues()
	readersChanged := false

	if params.ReaderPort != nil {
		log.Info().Str("readerPort", *params.ReaderPort).Msg("update")
		readers.Port = *params.ReaderPort
		readersChanged = true
	}
	if params.WakeSettleMs != nil {
		log.Info().Int("wakeSettleMs", *params.WakeSettleMs).Msg("update")
		readers.WakeSettleMs = *params.WakeSettleMs
		readersChanged = true
	}
	if params.QuietPeriodMs != nil {
		log.Info().Int("quietPeriodMs", *params.QuietPeriodMs).Msg("update")
		readers.QuietPeriodMs = *params.QuietPeriodMs
		readersChanged = true
	}
	if params.RangeQuietPeriodMs != nil {
		log.Info().Int("rangeQuietPeriodMs", *params.RangeQuietPeriodMs).Msg("update")
		readers.RangeQuietPeriodMs = *params.RangeQuietPeriodMs
		readersChanged = true
	}
	if params.HardTimeoutMs != nil {
		log.Info().Int("hardTimeoutMs", *params.HardTimeoutMs).Msg("update")
		readers.HardTimeoutMs = *params.HardTimeoutMs
		readersChanged = true
	}
	if params.RangeHardTimeoutMs != nil {
		log.Info().Int("rangeHardTimeoutMs", *params.RangeHardTimeoutMs).Msg("update")
		readers.RangeHardTimeoutMs = *params.RangeHardTimeoutMs
		readersChanged = true
	}
	if params.FastHardTimeoutMs != nil {
		log.Info().Int("fastHardTimeoutMs", *params.FastHardTimeoutMs).Msg("update")
		readers.FastHardTimeoutMs = *params.FastHardTimeoutMs
		readersChanged = true
	}
	if params.RetryAttempts != nil {
		log.Info().Int("retryAttempts", *params.RetryAttempts).Msg("update")
		readers.RetryAttempts = *params.RetryAttempts
		readersChanged = true
	}
	if params.RetryBackoffMs != nil {
		log.Info().Int("retryBackoffMs", *params.RetryBackoffMs).Msg("update")
		readers.RetryBackoffMs = *params.RetryBackoffMs
		readersChanged = true
	}

	if readersChanged {
		env.Config.SetReaderValues(readers)
	}

	live := env.Config.LiveValues()
	liveChanged := false

	if params.LivePollIntervalMs != nil {
		log.Info().Int("livePollIntervalMs", *params.LivePollIntervalMs).Msg("update")
		live.PollIntervalMs = *params.LivePollIntervalMs
		liveChanged = true
	}
	if params.LiveFailureThreshold != nil {
		log.Info().Int("liveFailureThreshold", *params.LiveFailureThreshold).Msg("update")
		live.FailureThreshold = *params.LiveFailureThreshold
		liveChanged = true
	}

	if liveChanged {
		env.Config.SetLiveValues(live)
	}

	history := env.Config.HistoryValues()
	historyChanged := false

	if params.HistoryEnabled != nil {
		log.Info().Bool("historyEnabled", *params.HistoryEnabled).Msg("update")
		history.Enabled = *params.HistoryEnabled
		historyChanged = true
	}
	if params.HistoryRetentionDays != nil {
		log.Info().Int("historyRetentionDays", *params.HistoryRetentionDays).Msg("update")
		history.RetentionDays = *params.HistoryRetentionDays
		historyChanged = true
	}

	if historyChanged {
		env.Config.SetHistoryValues(history)
	}

	if params.DebugLogging != nil {
		log.Info().Bool("debugLogging", *params.DebugLogging).Msg("update")
		env.Config.SetDebugLogging(*params.DebugLogging)
	}

	if err := env.Config.Save(); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}
	return NoContent{}, nil
}

func HandleDeviceSettings(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received device settings request")

	resp, err := env.Service.DeviceSettings()
	if err != nil {
		log.Error().Err(err).Msg("error reading device settings")
		return nil, fmt.Errorf("device settings: %w", err)
	}
	return resp, nil
}

func HandleDeviceSettingsUpdate(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received device settings update request")

	var params models.UpdateDeviceSettingsParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	if params.SSID == nil && params.Password == nil && params.RFIDOnTimeMs == nil &&
		params.PeriodicIntervalMs == nil && params.LongPressMs == nil {
		return nil, ErrInvalidParams
	}

	resp, err := env.Service.UpdateDeviceSettings(params)
	if err != nil {
		log.Error().Err(err).Msg("error updating device settings")
		return nil, fmt.Errorf("device settings update: %w", err)
	}
	return resp, nil
}
