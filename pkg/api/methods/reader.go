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

func HandleReaderSend(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received reader send request")

	var params models.SendParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	resp, err := env.Service.Send(params.Command)
	if err != nil {
		log.Error().Err(err).Str("command", params.Command).Msg("error sending command")
		return nil, fmt.Errorf("send: %w", err)
	}
	return resp, nil
}

func HandleReaderPing(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received reader ping request")
	return env.Service.Ping(), nil
}

func HandleLiveStart(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received live start request")

	resp, err := env.Service.LiveStart()
	if err != nil {
		log.Error().Err(err).Msg("error starting live polling")
		return nil, fmt.Errorf("live start: %w", err)
	}
	return resp, nil
}

func HandleLiveStop(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received live stop request")
	return env.Service.LiveStop(), nil
}
