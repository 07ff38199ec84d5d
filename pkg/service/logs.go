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
	"strings"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/api/models"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/reader/protocol"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/service/notifications"
)

// captureDiagnostic is the line sink wired into every dispatcher. Lines
// that pass the keep filter land in the rolling debug logs and go out as
// notifications so connected UIs can tail the exchange.
func (s *Service) captureDiagnostic(command, line string) {
	if !protocol.KeepLine(command, line) {
		return
	}

	s.logGeneral.Add(line)
	if strings.HasPrefix(command, "set ") {
		s.logSet.Add(line)
	} else {
		s.logCommand.Add(line)
	}

	notifications.ReaderDiagnostic(s.st.Notifications, models.DiagnosticLineParams{
		Command: command,
		Line:    line,
	})
}

// LogsDebug snapshots the three rolling debug logs, oldest line first.
func (s *Service) LogsDebug() models.LogsDebugResponse {
	return models.LogsDebugResponse{
		General: s.logGeneral.Items(),
		Command: s.logCommand.Items(),
		Set:     s.logSet.Items(),
	}
}
