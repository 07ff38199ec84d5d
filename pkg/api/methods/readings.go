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

func HandleReadingsRange(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received readings range request")

	var params models.RangeParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	resp, err := env.Service.RangeQuery(params.StartEpoch, params.EndEpoch)
	if err != nil {
		log.Error().Err(err).
			Int64("startEpoch", params.StartEpoch).
			Int64("endEpoch", params.EndEpoch).
			Msg("error querying readings range")
		return nil, fmt.Errorf("range query: %w", err)
	}
	return resp, nil
}

// HandleReadingsClear forwards the device's own clear command. The host
// keeps its last result set; only the device-side store is wiped.
func HandleReadingsClear(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received readings clear request")

	resp, err := env.Service.Send("clear")
	if err != nil {
		log.Error().Err(err).Msg("error clearing device readings")
		return nil, fmt.Errorf("clear: %w", err)
	}
	return resp, nil
}

func HandleReadingsHistory(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received readings history request")

	var params models.HistoryParams
	if len(env.Params) > 0 {
		if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
			return nil, fmt.Errorf("invalid params: %w", err)
		}
	}

	resp, err := env.Service.History(params.LastID, params.Limit)
	if err != nil {
		log.Error().Err(err).Msg("error querying readings history")
		return nil, fmt.Errorf("history: %w", err)
	}
	return resp, nil
}

func HandleReadingsExport(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received readings export request")

	var params models.ExportParams
	if len(env.Params) > 0 {
		if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
			return nil, fmt.Errorf("invalid params: %w", err)
		}
	}

	resp, err := env.Service.Export(params.Path)
	if err != nil {
		log.Error().Err(err).Str("path", params.Path).Msg("error exporting readings")
		return nil, fmt.Errorf("export: %w", err)
	}
	return resp, nil
}
