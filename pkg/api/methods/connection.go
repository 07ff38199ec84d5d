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

func HandlePorts(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received ports request")

	resp, err := env.Service.Ports()
	if err != nil {
		log.Error().Err(err).Msg("error listing serial ports")
		return nil, fmt.Errorf("list ports: %w", err)
	}
	return resp, nil
}

func HandleConnect(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received connect request")

	var params models.ConnectParams
	if len(env.Params) > 0 {
		if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
			return nil, fmt.Errorf("invalid params: %w", err)
		}
	}

	resp, err := env.Service.Connect(params.Port)
	if err != nil {
		log.Error().Err(err).Str("port", params.Port).Msg("error connecting to reader")
		return nil, fmt.Errorf("connect: %w", err)
	}
	return resp, nil
}

func HandleDisconnect(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received disconnect request")
	return env.Service.Disconnect(), nil
}

func HandleStatus(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received status request")
	return env.Service.Status(), nil
}
