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
	"errors"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/api/validation"
)

var (
	ErrMissingParams = validation.ErrMissingParams
	ErrInvalidParams = validation.ErrInvalidParams
	ErrNotAllowed    = errors.New("not allowed")
)

// NoContent marks a successful result with nothing to report. It
// marshals to an empty object rather than JSON null.
type NoContent struct{}
