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

// Package api serves the JSON-RPC 2.0 API over WebSocket and plain
// HTTP POST, and fans service notifications out to connected clients.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/api/methods"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/api/middleware"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/api/models"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/api/models/requests"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/api/validation"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/config"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/service"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/service/state"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
)

var JSONRPCErrorParseError = models.ErrorObject{
	Code:    -32700,
	Message: "Parse error",
}
var JSONRPCErrorInvalidRequest = models.ErrorObject{
	Code:    -32600,
	Message: "Invalid Request",
}
var JSONRPCErrorMethodNotFound = models.ErrorObject{
	Code:    -32601,
	Message: "Method not found",
}
var JSONRPCErrorInvalidParams = models.ErrorObject{
	Code:    -32602,
	Message: "Invalid params",
}
var JSONRPCErrorInternalError = models.ErrorObject{
	Code:    -32603,
	Message: "Internal error",
}
var JSONRPCErrorServerError = models.ErrorObject{
	Code:    -32000,
	Message: "Server error",
}

var errUnknownMethod = errors.New("unknown method")

var methodMap = map[string]func(requests.RequestEnv) (any, error){
	// connection
	models.MethodPorts:      methods.HandlePorts,
	models.MethodConnect:    methods.HandleConnect,
	models.MethodDisconnect: methods.HandleDisconnect,
	models.MethodStatus:     methods.HandleStatus,
	// reader
	models.MethodReaderSend: methods.HandleReaderSend,
	models.MethodReaderPing: methods.HandleReaderPing,
	// readings
	models.MethodReadingsRange:   methods.HandleReadingsRange,
	models.MethodReadingsClear:   methods.HandleReadingsClear,
	models.MethodReadingsHistory: methods.HandleReadingsHistory,
	models.MethodReadingsExport:  methods.HandleReadingsExport,
	// live polling
	models.MethodLiveStart: methods.HandleLiveStart,
	models.MethodLiveStop:  methods.HandleLiveStop,
	// settings
	models.MethodSettingsDevice:       methods.HandleDeviceSettings,
	models.MethodSettingsDeviceUpdate: methods.HandleDeviceSettingsUpdate,
	models.MethodSettings:             methods.HandleSettings,
	models.MethodSettingsUpdate:       methods.HandleSettingsUpdate,
	// utils
	models.MethodLogsDebug: methods.HandleLogsDebug,
	models.MethodVersion:   methods.HandleVersion,
}

//nolint:gocritic // env is built per request and passed by value
func handleRequest(env requests.RequestEnv, req models.RequestObject) (any, error) {
	log.Debug().Str("method", req.Method).Str("id", req.ID.String()).Msg("received request")

	fn, ok := methodMap[strings.ToLower(req.Method)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownMethod, req.Method)
	}

	if req.ID.IsAbsent() {
		return nil, fmt.Errorf("missing ID for request: %s", req.Method)
	}

	env.ID = req.ID
	env.Params = req.Params

	return fn(env)
}

// errorForHandler maps a handler error to a JSON-RPC error object.
// Validation failures report as invalid params; everything else keeps
// the handler's message under the generic server error code.
func errorForHandler(err error) models.ErrorObject {
	var validationErr *validation.Error
	switch {
	case errors.Is(err, errUnknownMethod):
		return JSONRPCErrorMethodNotFound
	case errors.Is(err, validation.ErrMissingParams),
		errors.Is(err, validation.ErrInvalidParams),
		errors.As(err, &validationErr):
		errObj := JSONRPCErrorInvalidParams
		errObj.Message = err.Error()
		return errObj
	default:
		errObj := JSONRPCErrorServerError
		errObj.Message = err.Error()
		return errObj
	}
}

func sendResponse(session *melody.Session, id models.RPCID, result any) error {
	log.Debug().Str("id", id.String()).Msg("sending response")

	resp := models.ResponseObject{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("error marshalling response: %w", err)
	}

	return session.Write(data)
}

func sendError(session *melody.Session, id models.RPCID, errObj models.ErrorObject) error {
	log.Debug().Int("code", errObj.Code).Str("message", errObj.Message).Msg("sending error")

	resp := models.ResponseErrorObject{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &errObj,
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("error marshalling error response: %w", err)
	}

	return session.Write(data)
}

// handleResponse takes response objects sent by clients. Nothing on the
// host initiates client-bound requests yet, so they are only logged.
func handleResponse(resp *models.ResponseObject) error {
	log.Debug().Str("id", resp.ID.String()).Msg("received response")
	return nil
}

func broadcastNotifications(
	st *state.State,
	session *melody.Melody,
	notifications <-chan models.Notification,
) {
	for {
		select {
		case <-st.GetContext().Done():
			log.Debug().Msg("stopping notification broadcasts via context cancellation")
			return
		case notif := <-notifications:
			req := models.RequestObject{
				JSONRPC: "2.0",
				Method:  notif.Method,
				Params:  notif.Params,
			}

			data, err := json.Marshal(req)
			if err != nil {
				log.Error().Err(err).Msg("marshalling notification request")
				continue
			}

			err = session.Broadcast(data)
			if err != nil {
				log.Error().Err(err).Msg("broadcasting notification")
			}
		}
	}
}

func handleWSMessage(
	cfg *config.Instance,
	st *state.State,
	svc *service.Service,
) func(session *melody.Session, msg []byte) {
	return func(session *melody.Session, msg []byte) {
		// ping command for heartbeat operation
		if bytes.Equal(msg, []byte("ping")) {
			if err := session.Write([]byte("pong")); err != nil {
				log.Error().Err(err).Msg("sending pong")
			}
			return
		}

		if !json.Valid(msg) {
			log.Error().Msg("data not valid json")
			if err := sendError(session, models.RPCID{}, JSONRPCErrorParseError); err != nil {
				log.Error().Err(err).Msg("error sending error response")
			}
			return
		}

		// try parse a request first, which has a method field
		var req models.RequestObject
		err := json.Unmarshal(msg, &req)

		if err == nil && req.JSONRPC != "2.0" {
			log.Error().Str("jsonrpc", req.JSONRPC).Msg("unsupported payload version")
			if sendErr := sendError(session, req.ID, JSONRPCErrorInvalidRequest); sendErr != nil {
				log.Error().Err(sendErr).Msg("error sending error response")
			}
			return
		}

		if err == nil && req.Method != "" {
			if req.ID.IsAbsent() {
				// request is a notification
				log.Info().Str("method", req.Method).Msg("received notification, ignoring")
				return
			}

			env := requests.RequestEnv{
				Config:  cfg,
				State:   st,
				Service: svc,
				IsLocal: middleware.IsLoopbackAddr(session.Request.RemoteAddr),
			}

			result, handlerErr := handleRequest(env, req)
			if handlerErr != nil {
				if sendErr := sendError(session, req.ID, errorForHandler(handlerErr)); sendErr != nil {
					log.Error().Err(sendErr).Msg("error sending error response")
				}
				return
			}

			if sendErr := sendResponse(session, req.ID, result); sendErr != nil {
				log.Error().Err(sendErr).Msg("error sending response")
			}
			return
		}

		// otherwise try parse a response, which has an id field
		var resp models.ResponseObject
		err = json.Unmarshal(msg, &resp)
		if err == nil && !resp.ID.IsAbsent() {
			if respErr := handleResponse(&resp); respErr != nil {
				log.Error().Err(respErr).Msg("error handling response")
			}
			return
		}

		log.Error().Err(err).Msg("message does not match known types")
		if sendErr := sendError(session, models.RPCID{}, JSONRPCErrorInvalidRequest); sendErr != nil {
			log.Error().Err(sendErr).Msg("error sending error response")
		}
	}
}

// maxPostBodySize caps one-shot POST requests, which never carry more
// than a small params object.
const maxPostBodySize = 1 << 20

func writePostError(w http.ResponseWriter, id models.RPCID, errObj models.ErrorObject) {
	w.Header().Set("Content-Type", "application/json")
	resp := models.ResponseErrorObject{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &errObj,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("error writing error response")
	}
}

// handlePostRequest serves one-shot JSON-RPC calls over plain HTTP POST
// so scripts can use the API without a WebSocket client. JSON-RPC level
// failures still answer 200 with the error in the body; only transport
// problems map to HTTP status codes.
func handlePostRequest(
	cfg *config.Instance,
	st *state.State,
	svc *service.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contentType := r.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "application/json") {
			http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPostBodySize))
		if err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "error reading request body", http.StatusBadRequest)
			return
		}

		var req models.RequestObject
		if unmarshalErr := json.Unmarshal(body, &req); unmarshalErr != nil {
			log.Error().Err(unmarshalErr).Msg("invalid POST request body")
			writePostError(w, models.RPCID{}, JSONRPCErrorParseError)
			return
		}

		if req.JSONRPC != "2.0" {
			log.Error().Str("jsonrpc", req.JSONRPC).Msg("unsupported payload version")
			writePostError(w, req.ID, JSONRPCErrorInvalidRequest)
			return
		}

		env := requests.RequestEnv{
			Config:  cfg,
			State:   st,
			Service: svc,
			IsLocal: middleware.IsLoopbackAddr(r.RemoteAddr),
		}

		// An absent ID marks a notification: process it but never
		// reply. An explicit null ID is still a request.
		if req.ID.IsAbsent() {
			env.Params = req.Params
			if fn, ok := methodMap[strings.ToLower(req.Method)]; ok {
				if _, handlerErr := fn(env); handlerErr != nil {
					log.Error().Err(handlerErr).Str("method", req.Method).
						Msg("notification handler failed")
				}
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		result, handlerErr := handleRequest(env, req)
		if handlerErr != nil {
			writePostError(w, req.ID, errorForHandler(handlerErr))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		resp := models.ResponseObject{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  result,
		}
		if encodeErr := json.NewEncoder(w).Encode(resp); encodeErr != nil {
			log.Error().Err(encodeErr).Msg("error writing response")
		}
	}
}

// Start serves the API on the configured port. It blocks until the
// listener fails, so callers run it in a goroutine.
func Start(
	cfg *config.Instance,
	st *state.State,
	svc *service.Service,
	notifications <-chan models.Notification,
) {
	r := chi.NewRouter()

	limiter := middleware.NewIPRateLimiter()
	limiter.StartCleanup(st.GetContext())

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.NoCache)
	r.Use(chimiddleware.Timeout(config.ApiRequestTimeout))
	r.Use(middleware.HTTPRateLimitMiddleware(limiter))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*", "capacitor://*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{},
	}))

	session := melody.New()
	session.Upgrader.CheckOrigin = func(_ *http.Request) bool { return true }
	go broadcastNotifications(st, session, notifications)

	session.HandleMessage(middleware.WebSocketRateLimitHandler(limiter, handleWSMessage(cfg, st, svc)))

	r.Get("/api/v0.1", func(w http.ResponseWriter, r *http.Request) {
		err := session.HandleRequest(w, r)
		if err != nil {
			log.Error().Err(err).Msg("handling websocket request")
		}
	})
	r.Post("/api/v0.1", handlePostRequest(cfg, st, svc))

	err := http.ListenAndServe(":"+strconv.Itoa(cfg.APIPort()), r) //nolint:gosec // local service, timeouts handled per request
	if err != nil {
		log.Error().Err(err).Msg("error starting http server")
	}
}
