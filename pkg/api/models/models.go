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

// Package models defines the JSON-RPC wire objects, request parameters
// and response payloads of the host API.
package models

import "encoding/json"

const (
	NotificationRunning          = "running"
	NotificationConnectionState  = "connection.state"
	NotificationReadingsUpdated  = "readings.updated"
	NotificationLiveState        = "live.state"
	NotificationReaderDiagnostic = "reader.diagnostic"
)

const (
	MethodPorts                = "ports"
	MethodConnect              = "connect"
	MethodDisconnect           = "disconnect"
	MethodStatus               = "status"
	MethodReaderSend           = "reader.send"
	MethodReaderPing           = "reader.ping"
	MethodReadingsRange        = "readings.range"
	MethodReadingsClear        = "readings.clear"
	MethodReadingsHistory      = "readings.history"
	MethodReadingsExport       = "readings.export"
	MethodLiveStart            = "live.start"
	MethodLiveStop             = "live.stop"
	MethodSettingsDevice       = "settings.device"
	MethodSettingsDeviceUpdate = "settings.device.update"
	MethodSettings             = "settings"
	MethodSettingsUpdate       = "settings.update"
	MethodLogsDebug            = "logs.debug"
	MethodVersion              = "version"
)

// Notification is a server-initiated message fanned out to API sessions
// and the MQTT publisher. Params is pre-marshalled by the constructors
// in service/notifications.
type Notification struct {
	Method string
	Params json.RawMessage
}

// RequestObject carries requests in both directions: client calls in,
// notifications out. ID is a value field so an explicit null ID stays
// distinguishable from an absent one (absent marks a notification);
// omitzero keeps outgoing notifications free of an id key.
type RequestObject struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      RPCID           `json:"id,omitzero"`
}

type ErrorObject struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type ResponseObject struct {
	Result  any          `json:"result"`
	Error   *ErrorObject `json:"error,omitempty"`
	JSONRPC string       `json:"jsonrpc"`
	ID      RPCID        `json:"id"`
}

// ResponseErrorObject exists for sending errors, so result can be left
// out entirely, while ResponseObject still carries nil results.
type ResponseErrorObject struct {
	Error   *ErrorObject `json:"error"`
	JSONRPC string       `json:"jsonrpc"`
	ID      RPCID        `json:"id"`
}
