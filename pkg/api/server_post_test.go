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

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/api/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newPostHandler(t *testing.T) http.HandlerFunc {
	t.Helper()
	cfg, st, svc := newTestDeps(t)
	return handlePostRequest(cfg, st, svc)
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v0.1", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestHandlePostRequest_ValidRequest(t *testing.T) {
	t.Parallel()

	handler := newPostHandler(t)
	rr := postJSON(t, handler, `{"jsonrpc":"2.0","id":"`+uuid.New().String()+`","method":"version"}`)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.ResponseObject
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "2.0", resp.JSONRPC)
	require.NotNil(t, resp.Result)
}

func TestHandlePostRequest_InvalidJSON(t *testing.T) {
	t.Parallel()

	handler := newPostHandler(t)
	rr := postJSON(t, handler, `{invalid json`)

	// JSON-RPC errors still answer HTTP 200, the error lives in the body
	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.ResponseErrorObject
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	require.Equal(t, -32700, resp.Error.Code)
}

func TestHandlePostRequest_EmptyBody(t *testing.T) {
	t.Parallel()

	handler := newPostHandler(t)
	rr := postJSON(t, handler, "")

	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.ResponseErrorObject
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
}

func TestHandlePostRequest_UnknownMethod(t *testing.T) {
	t.Parallel()

	handler := newPostHandler(t)
	rr := postJSON(t, handler, `{"jsonrpc":"2.0","id":"1","method":"reader.levitate"}`)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.ResponseErrorObject
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	require.Equal(t, -32601, resp.Error.Code)
}

func TestHandlePostRequest_InvalidJSONRPCVersion(t *testing.T) {
	t.Parallel()

	handler := newPostHandler(t)
	rr := postJSON(t, handler, `{"jsonrpc":"1.0","id":"1","method":"version"}`)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.ResponseErrorObject
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	require.Equal(t, -32600, resp.Error.Code)
}

func TestHandlePostRequest_WrongContentType(t *testing.T) {
	t.Parallel()

	handler := newPostHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v0.1", strings.NewReader(`{"test":"data"}`))
	req.Header.Set("Content-Type", "text/plain")
	rr := httptest.NewRecorder()
	handler(rr, req)

	require.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
}

func TestHandlePostRequest_ContentTypeWithCharset(t *testing.T) {
	t.Parallel()

	handler := newPostHandler(t)

	reqBody := `{"jsonrpc":"2.0","id":"1","method":"version"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v0.1", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rr := httptest.NewRecorder()
	handler(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
}

func TestHandlePostRequest_OversizedBody(t *testing.T) {
	t.Parallel()

	handler := newPostHandler(t)
	rr := postJSON(t, handler, strings.Repeat("x", 2<<20))

	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	require.Contains(t, rr.Body.String(), "Request body too large")
}

// Per JSON-RPC 2.0: "The Server MUST NOT reply to a Notification."
func TestHandlePostRequest_Notification(t *testing.T) {
	t.Parallel()

	handler := newPostHandler(t)
	rr := postJSON(t, handler, `{"jsonrpc":"2.0","method":"version"}`)

	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Empty(t, rr.Body.Bytes())
}

func TestHandlePostRequest_MethodError(t *testing.T) {
	t.Parallel()

	handler := newPostHandler(t)
	rr := postJSON(t, handler,
		`{"jsonrpc":"2.0","id":"1","method":"reader.send","params":{"command":"MEA"}}`)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.ResponseErrorObject
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	require.Contains(t, resp.Error.Message, "no reader connected")
}

func TestHandlePostRequest_StringID(t *testing.T) {
	t.Parallel()

	handler := newPostHandler(t)
	rr := postJSON(t, handler, `{"jsonrpc":"2.0","id":"my-custom-string-id","method":"version"}`)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "my-custom-string-id", resp["id"])
}

func TestHandlePostRequest_NumberID(t *testing.T) {
	t.Parallel()

	handler := newPostHandler(t)
	rr := postJSON(t, handler, `{"jsonrpc":"2.0","id":12345,"method":"version"}`)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.InDelta(t, float64(12345), resp["id"], 0.001)
}

// An explicit null ID is a request, not a notification: the server
// answers with a result and echoes the null back.
func TestHandlePostRequest_NullID(t *testing.T) {
	t.Parallel()

	handler := newPostHandler(t)
	rr := postJSON(t, handler, `{"jsonrpc":"2.0","id":null,"method":"version"}`)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Nil(t, resp["id"])
	require.NotNil(t, resp["result"])
}

func TestHandlePostRequest_InvalidObjectID(t *testing.T) {
	t.Parallel()

	handler := newPostHandler(t)
	rr := postJSON(t, handler, `{"jsonrpc":"2.0","id":{"nested":"object"},"method":"version"}`)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp["error"])
}

func TestHandlePostRequest_InvalidArrayID(t *testing.T) {
	t.Parallel()

	handler := newPostHandler(t)
	rr := postJSON(t, handler, `{"jsonrpc":"2.0","id":[1,2,3],"method":"version"}`)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp["error"])
}
