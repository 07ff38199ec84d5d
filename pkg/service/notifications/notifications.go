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

// Package notifications builds the typed notifications the service emits
// and sends them without ever blocking the caller.
package notifications

import (
	"encoding/json"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/api/models"
	"github.com/rs/zerolog/log"
)

// criticalNotifications are the ones a client cannot reconstruct from a
// later poll. Dropping one is logged at error level; reader.diagnostic
// is high-volume line chatter and stays out of this set.
var criticalNotifications = map[string]bool{
	models.NotificationRunning:         true,
	models.NotificationConnectionState: true,
	models.NotificationReadingsUpdated: true,
	models.NotificationLiveState:       true,
}

// sendNotification marshals the payload and performs a non-blocking
// send. A full channel drops the notification rather than stalling the
// serial exchange that produced it.
func sendNotification(ns chan<- models.Notification, method string, payload any) {
	var params json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Error().Err(err).Str("method", method).Msg("marshalling notification params")
			return
		}
		params = data
	}

	select {
	case ns <- models.Notification{Method: method, Params: params}:
	default:
		if criticalNotifications[method] {
			log.Error().Str("method", method).Msg("notification channel full, dropped critical notification")
		} else {
			log.Debug().Str("method", method).Msg("notification channel full, dropped notification")
		}
	}
}

// Running announces service startup.
func Running(ns chan<- models.Notification) {
	sendNotification(ns, models.NotificationRunning, nil)
}

// ConnectionState reports the link going up or down.
func ConnectionState(ns chan<- models.Notification, payload models.ConnectionResponse) {
	sendNotification(ns, models.NotificationConnectionState, payload)
}

// ReadingsUpdated carries a freshly parsed result set.
func ReadingsUpdated(ns chan<- models.Notification, payload models.ReadingsUpdatedParams) {
	sendNotification(ns, models.NotificationReadingsUpdated, payload)
}

// LiveState reports live watch activation, deactivation and poll health.
func LiveState(ns chan<- models.Notification, payload models.LiveStatusResponse) {
	sendNotification(ns, models.NotificationLiveState, payload)
}

// ReaderDiagnostic carries one filtered response line for live log views.
func ReaderDiagnostic(ns chan<- models.Notification, payload models.DiagnosticLineParams) {
	sendNotification(ns, models.NotificationReaderDiagnostic, payload)
}
