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

package broker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/api/models"
	"github.com/stretchr/testify/assert"
)

func TestNewBroker(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	source := make(chan models.Notification)
	b := NewBroker(ctx, source)

	assert.NotNil(t, b)
	assert.NotNil(t, b.subscribers)
	assert.Equal(t, 0, b.nextID)
}

func TestBroker_Subscribe(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	source := make(chan models.Notification)
	b := NewBroker(ctx, source)

	ch, id := b.Subscribe(10)

	assert.NotNil(t, ch)
	assert.Equal(t, 0, id)
	assert.Len(t, b.subscribers, 1)

	// Subscribe again, should get incremented ID
	ch2, id2 := b.Subscribe(20)

	assert.NotNil(t, ch2)
	assert.Equal(t, 1, id2)
	assert.Len(t, b.subscribers, 2)
}

func TestBroker_Unsubscribe(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	source := make(chan models.Notification)
	b := NewBroker(ctx, source)

	ch, id := b.Subscribe(10)

	b.Unsubscribe(id)

	assert.Empty(t, b.subscribers)

	// Channel should be closed
	_, ok := <-ch
	assert.False(t, ok, "channel should be closed")

	// Unsubscribing again should be safe (no-op)
	b.Unsubscribe(id)
}

func TestBroker_BroadcastToMultipleSubscribers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	source := make(chan models.Notification, 10)
	b := NewBroker(ctx, source)
	b.Start()

	sub1, _ := b.Subscribe(10)
	sub2, _ := b.Subscribe(10)
	sub3, _ := b.Subscribe(10)

	notif := models.Notification{
		Method: models.NotificationReadingsUpdated,
		Params: []byte(`{"source":"live","count":1}`),
	}

	source <- notif

	// All three subscribers should receive it
	received1 := <-sub1
	received2 := <-sub2
	received3 := <-sub3

	assert.Equal(t, notif.Method, received1.Method)
	assert.Equal(t, notif.Method, received2.Method)
	assert.Equal(t, notif.Method, received3.Method)
}

func TestBroker_SlowConsumerDoesNotBlockFastConsumer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	source := make(chan models.Notification, 100)
	b := NewBroker(ctx, source)
	b.Start()

	// Fast consumer with a roomy buffer
	fastConsumer, _ := b.Subscribe(10)

	// Slow consumer with a tiny buffer that will fill up quickly
	_, _ = b.Subscribe(2)

	sentCount := 20
	for range sentCount {
		source <- models.Notification{
			Method: models.NotificationReaderDiagnostic,
			Params: []byte(`{}`),
		}
	}

	// Give the broker time to process
	time.Sleep(50 * time.Millisecond)

	fastReceived := 0
	fastTimeout := time.After(100 * time.Millisecond)
	for {
		select {
		case <-fastConsumer:
			fastReceived++
		case <-fastTimeout:
			goto checkResults
		}
	}

checkResults:
	// The slow consumer dropped some, but the fast one kept receiving.
	assert.Greater(t, fastReceived, 5, "fast consumer should have received several notifications")
}

func TestBroker_NonBlockingSendDropsWhenFull(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	source := make(chan models.Notification, 100)
	b := NewBroker(ctx, source)
	b.Start()

	// Subscriber with a very small buffer that is never read from
	subscriber, _ := b.Subscribe(2)

	for range 10 {
		source <- models.Notification{
			Method: models.NotificationReaderDiagnostic,
			Params: []byte(`{}`),
		}
	}

	// Give the broker time to attempt sends
	time.Sleep(100 * time.Millisecond)

	// Drain: only the buffered notifications should be there
	received := 0
	timeout := time.After(50 * time.Millisecond)
drainLoop:
	for {
		select {
		case <-subscriber:
			received++
		case <-timeout:
			break drainLoop
		}
	}

	assert.LessOrEqual(t, received, 3, "should have dropped excess notifications")
}

func TestBroker_ContextCancellationStopsBroker(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	source := make(chan models.Notification, 10)
	b := NewBroker(ctx, source)
	b.Start()

	subscriber, _ := b.Subscribe(10)

	cancel()

	// Give the broker time to shut down
	time.Sleep(50 * time.Millisecond)

	_, ok := <-subscriber
	assert.False(t, ok, "subscriber channel should be closed on context cancellation")
}

func TestBroker_SourceChannelClosureStopsBroker(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	source := make(chan models.Notification, 10)
	b := NewBroker(ctx, source)
	b.Start()

	subscriber, _ := b.Subscribe(10)

	close(source)

	// Give the broker time to shut down
	time.Sleep(50 * time.Millisecond)

	_, ok := <-subscriber
	assert.False(t, ok, "subscriber channel should be closed when source closes")
}

func TestBroker_ConcurrentSubscribeUnsubscribe(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	source := make(chan models.Notification, 100)
	b := NewBroker(ctx, source)
	b.Start()

	var wg sync.WaitGroup
	subscriberCount := 10

	for range subscriberCount {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, id := b.Subscribe(5)
			time.Sleep(10 * time.Millisecond)
			b.Unsubscribe(id)
		}()
	}

	// Also send notifications while subscriptions churn
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 20 {
			source <- models.Notification{
				Method: models.NotificationLiveState,
				Params: []byte(`{}`),
			}
			time.Sleep(5 * time.Millisecond)
		}
	}()

	wg.Wait()
}

func TestBroker_SubscriberReceivesInOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	source := make(chan models.Notification, 100)
	b := NewBroker(ctx, source)
	b.Start()

	subscriber, _ := b.Subscribe(100)

	methods := []string{
		models.NotificationRunning,
		models.NotificationConnectionState,
		models.NotificationLiveState,
		models.NotificationReadingsUpdated,
		models.NotificationConnectionState,
	}
	for _, method := range methods {
		source <- models.Notification{
			Method: method,
			Params: []byte(`{}`),
		}
	}

	for i, expectedMethod := range methods {
		notif := <-subscriber
		assert.Equal(t, expectedMethod, notif.Method, "notification %d should maintain order", i)
	}
}
