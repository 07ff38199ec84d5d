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

// Package livewatch schedules the repeating range queries behind live
// mode. One activation fixes the window start; every poll then covers
// window start through poll time, so each result supersedes the last
// instead of extending it.
package livewatch

import (
	"context"
	"sync"
	"time"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/config"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/service/state"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Poller runs one live range query over [start, end]. nonEmpty reports
// whether the device sent any response text at all; parse results do not
// matter here, a healthy device answering "no readings" is still healthy.
type Poller interface {
	PollLiveWindow(start, end time.Time) (nonEmpty bool, err error)
}

// Watcher drives live mode: a clock-paced loop issuing one poll per
// interval until the user stops it or the device goes quiet for too many
// polls in a row. The clock is injected so tests can step time.
type Watcher struct {
	clock  clockwork.Clock
	ctx    context.Context
	poller Poller
	st     *state.State
	cfg    *config.Instance
	stop   chan struct{}
	mu     sync.Mutex
}

// NewWatcher creates a watcher bound to the service state. Passing a nil
// clock selects the real clock. The loop also ends when the service
// context is cancelled.
func NewWatcher(cfg *config.Instance, st *state.State, poller Poller, clock clockwork.Clock) *Watcher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Watcher{
		cfg:    cfg,
		st:     st,
		poller: poller,
		clock:  clock,
		ctx:    st.GetContext(),
	}
}

// Start activates live mode. The window start is captured once, here, and
// every poll of this activation queries from it. Starting an already
// active watcher changes nothing.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.stop != nil {
		w.mu.Unlock()
		log.Debug().Msg("live: already active")
		return
	}
	stop := make(chan struct{})
	w.stop = stop
	w.mu.Unlock()

	windowStart := w.clock.Now()
	w.st.SetLiveActive(windowStart)
	log.Info().Time("window_start", windowStart).Msg("live: watch activated")

	go w.pollLoop(stop, windowStart)
}

// Stop deactivates live mode. Safe to call when already idle.
func (w *Watcher) Stop() {
	w.mu.Lock()
	stop := w.stop
	w.stop = nil
	w.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	w.st.SetLiveStopped()
	log.Info().Msg("live: watch deactivated")
}

// Active reports whether a watch is currently running.
func (w *Watcher) Active() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stop != nil
}

func (w *Watcher) pollLoop(stop chan struct{}, windowStart time.Time) {
	ticker := w.clock.NewTicker(w.cfg.LivePollInterval())
	defer ticker.Stop()

	failures := 0

	// The first poll runs at activation so a mute device is caught right
	// away instead of one interval later.
	if !w.poll(stop, windowStart, &failures) {
		return
	}

	for {
		select {
		case <-ticker.Chan():
			if !w.poll(stop, windowStart, &failures) {
				return
			}
		case <-stop:
			return
		case <-w.ctx.Done():
			return
		}
	}
}

// poll runs one query and updates the failure budget. It returns false
// when the loop must end because the failure threshold was reached.
func (w *Watcher) poll(stop chan struct{}, windowStart time.Time, failures *int) bool {
	now := w.clock.Now()

	healthy := false
	switch {
	case !w.st.Connected():
		// A tick with no transport still spends the failure budget, but
		// there is nothing to send.
		log.Debug().Msg("live: poll skipped, not connected")
	default:
		nonEmpty, err := w.poller.PollLiveWindow(windowStart, now)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("live: poll failed")
		case !nonEmpty:
			log.Debug().Msg("live: poll returned no response")
		default:
			healthy = true
		}
	}

	if healthy {
		*failures = 0
	} else {
		*failures++
	}

	w.st.RecordLivePoll(now, *failures)

	if *failures >= w.cfg.LiveFailureThreshold() {
		log.Warn().
			Int("failures", *failures).
			Msg("live: reader stopped responding, deactivating watch")
		w.deactivateLost(stop)
		return false
	}
	return true
}

// deactivateLost ends the activation from inside the loop after too many
// silent polls and tears the session down, mirroring what a user sees
// when the cable is pulled.
func (w *Watcher) deactivateLost(stop chan struct{}) {
	w.mu.Lock()
	// The user may have stopped or restarted the watch while this poll
	// was in flight; only clear our own activation.
	if w.stop == stop {
		w.stop = nil
	}
	w.mu.Unlock()

	w.st.SetLiveStopped()
	w.st.ClearConnection("lost")
}
