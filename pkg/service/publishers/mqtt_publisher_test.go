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

package publishers

import (
	"testing"
	"time"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMQTTPublisher(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		broker string
		topic  string
		filter []string
	}{
		{
			name:   "with filter",
			broker: "localhost:1883",
			topic:  "rfidhost/notifications",
			filter: []string{"readings.updated", "connection.state"},
		},
		{
			name:   "without filter",
			broker: "broker.example.com:8883",
			topic:  "notifications",
			filter: nil,
		},
		{
			name:   "empty filter",
			broker: "test:1883",
			topic:  "test/topic",
			filter: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			publisher := NewMQTTPublisher(tt.broker, tt.topic, tt.filter)

			assert.NotNil(t, publisher)
			assert.Equal(t, tt.broker, publisher.broker)
			assert.Equal(t, tt.topic, publisher.topic)
			assert.Equal(t, tt.filter, publisher.filter)
			assert.NotNil(t, publisher.stopCh)
		})
	}
}

func TestMatchesFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		method  string
		wantMsg string
		filter  []string
		want    bool
	}{
		{
			name:    "empty filter matches all",
			filter:  []string{},
			method:  models.NotificationReadingsUpdated,
			want:    true,
			wantMsg: "empty filter should match all notifications",
		},
		{
			name:    "nil filter matches all",
			filter:  nil,
			method:  models.NotificationConnectionState,
			want:    true,
			wantMsg: "nil filter should match all notifications",
		},
		{
			name:    "method in filter",
			filter:  []string{"readings.updated", "live.state"},
			method:  "readings.updated",
			want:    true,
			wantMsg: "should match when method is in filter",
		},
		{
			name:    "method not in filter",
			filter:  []string{"readings.updated", "live.state"},
			method:  "reader.diagnostic",
			want:    false,
			wantMsg: "should not match when method not in filter",
		},
		{
			name:    "single item filter match",
			filter:  []string{"connection.state"},
			method:  "connection.state",
			want:    true,
			wantMsg: "should match single item in filter",
		},
		{
			name:    "case sensitive",
			filter:  []string{"readings.updated"},
			method:  "Readings.Updated",
			want:    false,
			wantMsg: "filter matching should be case-sensitive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			publisher := &MQTTPublisher{
				filter: tt.filter,
			}

			result := publisher.matchesFilter(tt.method)

			assert.Equal(t, tt.want, result, tt.wantMsg)
		})
	}
}

func TestStop(t *testing.T) {
	t.Parallel()

	publisher := NewMQTTPublisher("localhost:1883", "test", nil)

	// Stop should not panic and should close the channel
	publisher.Stop()

	// Verify stopCh is closed
	_, ok := <-publisher.stopCh
	assert.False(t, ok, "stopCh should be closed after Stop()")
}

func TestPublishNotifications_ForwardsWithMethodEnvelope(t *testing.T) {
	t.Parallel()

	mockClient := newMockMQTTClient()
	publisher := NewMQTTPublisher("localhost:1883", "rfidhost/notifications", nil)

	// Inject the mock in place of the client Start would create
	publisher.client = mockClient
	mockClient.connected = true

	notifChan := make(chan models.Notification, 10)

	publisher.wg.Add(1)
	go publisher.publishNotifications(notifChan)

	notifChan <- models.Notification{
		Method: models.NotificationReadingsUpdated,
		Params: []byte(`{"source":"live","count":2}`),
	}

	// Wait for publish
	time.Sleep(50 * time.Millisecond)

	require.Equal(t, 1, mockClient.getPublishedCount())

	msg := mockClient.lastPublished()
	assert.Equal(t, "rfidhost/notifications", msg.topic)
	payload, ok := msg.payload.([]byte)
	require.True(t, ok)
	assert.Contains(t, string(payload), `"method":"readings.updated"`)
	assert.Contains(t, string(payload), `"source":"live"`)

	publisher.Stop()
}

func TestPublishNotifications_FilteredOut(t *testing.T) {
	t.Parallel()

	mockClient := newMockMQTTClient()
	publisher := NewMQTTPublisher("localhost:1883", "test/topic", []string{"readings.updated"})
	publisher.client = mockClient
	mockClient.connected = true

	notifChan := make(chan models.Notification, 10)

	publisher.wg.Add(1)
	go publisher.publishNotifications(notifChan)

	// Send notification that should be filtered out
	notifChan <- models.Notification{
		Method: models.NotificationReaderDiagnostic,
		Params: []byte(`{"command":"status","line":"CMD_RECEIVED: status"}`),
	}

	time.Sleep(50 * time.Millisecond)

	// Should not have published anything
	assert.Equal(t, 0, mockClient.getPublishedCount())

	// Now send one that matches the filter
	notifChan <- models.Notification{
		Method: models.NotificationReadingsUpdated,
		Params: []byte(`{"source":"range","count":1}`),
	}

	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 1, mockClient.getPublishedCount())

	publisher.Stop()
}

func TestPublishNotifications_PublishError(t *testing.T) {
	t.Parallel()

	mockClient := newMockMQTTClient()
	mockClient.publishError = assert.AnError
	mockClient.connected = true

	publisher := NewMQTTPublisher("localhost:1883", "test/topic", nil)
	publisher.client = mockClient

	notifChan := make(chan models.Notification, 10)

	publisher.wg.Add(1)
	go publisher.publishNotifications(notifChan)

	notifChan <- models.Notification{
		Method: models.NotificationLiveState,
		Params: []byte(`{}`),
	}

	// Wait briefly - the error is logged, not fatal
	time.Sleep(50 * time.Millisecond)

	publisher.Stop()
}

func TestPublishNotifications_ChannelClosed(t *testing.T) {
	t.Parallel()

	mockClient := newMockMQTTClient()
	mockClient.connected = true

	publisher := NewMQTTPublisher("localhost:1883", "test/topic", nil)
	publisher.client = mockClient

	notifChan := make(chan models.Notification, 10)

	publisher.wg.Add(1)
	go publisher.publishNotifications(notifChan)

	// Closing the subscription ends the goroutine
	close(notifChan)

	publisher.wg.Wait()
}

func TestStop_WithConnectedClient(t *testing.T) {
	t.Parallel()

	mockClient := newMockMQTTClient()
	mockClient.connected = true

	publisher := NewMQTTPublisher("localhost:1883", "test", nil)
	publisher.client = mockClient

	publisher.Stop()

	// Verify disconnect was called
	assert.Equal(t, 1, mockClient.disconnectCall)
	assert.False(t, mockClient.IsConnected())

	// Verify stopCh is closed
	_, ok := <-publisher.stopCh
	assert.False(t, ok, "stopCh should be closed after Stop()")
}
