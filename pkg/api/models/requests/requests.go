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

package requests

import (
	"encoding/json"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/api/models"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/config"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/service"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/service/state"
)

// RequestEnv is everything a method handler gets to work with. IsLocal
// marks requests from loopback clients, which may change settings.
type RequestEnv struct {
	Config  *config.Instance
	State   *state.State
	Service *service.Service
	Params  json.RawMessage
	ID      models.RPCID
	IsLocal bool
}
