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

package protocol

import (
	"errors"
	"strings"
	"time"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/config"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// ErrEmptyResponse means the exchange completed but the reader sent
// nothing back, typically because it was asleep or busy with a tag read.
var ErrEmptyResponse = errors.New("reader returned no response")

const (
	// Extra settle after writing a fast command so the firmware's command
	// parser has the full line before we start listening.
	fastWriteSettle = 100 * time.Millisecond

	getWriteSettle = 50 * time.Millisecond
	getWindow      = 4 * time.Second

	defaultAliveWindow = 2 * time.Second
	defaultQuickWindow = time.Second
	quickWriteSettle   = 100 * time.Millisecond
)

// LineSink receives each response line as it is collected, tagged with the
// command that provoked it. Used to feed the diagnostic log buffers.
type LineSink func(command, line string)

// Dispatcher serializes command traffic to the reader. Only one exchange
// can be in flight at a time; callers block until the port is free.
type Dispatcher struct {
	port        Port
	cfg         *config.Instance
	clock       clockwork.Clock
	sink        LineSink
	aliveWindow time.Duration
	quickWindow time.Duration
	mu          syncutil.Mutex
}

// NewDispatcher creates a dispatcher for the given port. A nil clock uses
// the real one; sink may be nil when no diagnostic capture is wanted.
func NewDispatcher(port Port, cfg *config.Instance, clock clockwork.Clock, sink LineSink) *Dispatcher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Dispatcher{
		port:        port,
		cfg:         cfg,
		clock:       clock,
		sink:        sink,
		aliveWindow: defaultAliveWindow,
		quickWindow: defaultQuickWindow,
	}
}

// Send runs one command exchange and returns the collected response.
// Commands on the fast list are retried on an empty response and fall back
// to the relaxed path as a last resort; everything else is sent once.
// An exchange that completes without any response text returns the partial
// Outcome together with ErrEmptyResponse.
func (d *Dispatcher) Send(cmd string) (Outcome, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	log.Debug().Str("command", cmd).Msg("sending command")

	if IsFastCommand(cmd) {
		return d.sendFast(cmd)
	}
	return d.sendOnce(cmd, d.profileFor(cmd))
}

// Get reads a configuration variable. The response window is short and
// ends at the variable's own end marker; extracting the value between the
// markers is the caller's business.
func (d *Dispatcher) Get(name string) (Outcome, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, end := GetVarMarkers(name)
	prof := Profile{
		Hard:             getWindow,
		EndMarkers:       []string{end},
		SettleAfterWrite: getWriteSettle,
	}
	return d.sendOnce(GetCommand(name), prof)
}

// ProbeAlive checks that the board is powered and talking by asking for
// its clock. Any non-blank output that is not the RTC failure message
// counts as alive; the wake chatter itself is enough. Input is not
// cleared first so recent output also counts as evidence of life.
func (d *Dispatcher) ProbeAlive() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.wake(); err != nil {
		return false
	}
	if err := d.port.Write([]byte("time\n")); err != nil {
		return false
	}

	deadline := time.Now().Add(d.aliveWindow)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		line, err := d.port.ReadLine(remaining)
		if err != nil {
			return false
		}
		if line != "" && !strings.Contains(line, "RTC not available") {
			return true
		}
	}
}

// ProbeQuick is a faster liveness check used before command batches: no
// wake, just a status request and a short listen for anything that looks
// like the firmware answering.
func (d *Dispatcher) ProbeQuick() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.port.ClearInput(); err != nil {
		return false
	}
	if err := d.port.Write([]byte("status\n")); err != nil {
		return false
	}
	d.clock.Sleep(quickWriteSettle)

	deadline := time.Now().Add(d.quickWindow)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		line, err := d.port.ReadLine(remaining)
		if err != nil {
			return false
		}
		if strings.Contains(line, "CMD_RECEIVED") ||
			strings.Contains(line, "Dashboard Mode") ||
			strings.Contains(line, "ACTIVE") ||
			strings.Contains(line, "INACTIVE") {
			return true
		}
	}
}

// wake pokes the board out of light sleep. The wake byte itself is
// consumed by the wakeup and never reaches the command parser, so the
// settle delay is what matters: the clocks need it before the firmware
// can read the UART reliably.
func (d *Dispatcher) wake() error {
	if err := d.port.Write([]byte("\n")); err != nil {
		return err
	}
	d.clock.Sleep(d.cfg.WakeSettle())
	return nil
}

// sendFast drives the retry loop for fast-list commands: each attempt
// re-wakes the board, and attempts that yield nothing back off briefly.
// When all attempts come up empty the command gets one pass through the
// relaxed path before giving up.
func (d *Dispatcher) sendFast(cmd string) (Outcome, error) {
	attempts := d.cfg.RetryAttempts()
	if attempts < 1 {
		attempts = 1
	}
	prof := d.fastProfile()

	for attempt := 1; attempt <= attempts; attempt++ {
		out, err := d.sendOnce(cmd, prof)
		if err == nil {
			return out, nil
		}
		log.Debug().Err(err).Int("attempt", attempt).Str("command", cmd).
			Msg("fast command attempt failed")
		if attempt < attempts {
			d.clock.Sleep(d.cfg.RetryBackoff())
		}
	}

	log.Debug().Str("command", cmd).Msg("fast path exhausted, falling back to relaxed path")
	return d.sendOnce(cmd, d.profileFor(cmd))
}

// sendOnce runs a single wake / clear / write / collect exchange.
func (d *Dispatcher) sendOnce(cmd string, prof Profile) (Outcome, error) {
	if err := d.wake(); err != nil {
		return Outcome{}, err
	}
	// Stale output from before the wake must not be mistaken for the
	// response to this command.
	if err := d.port.ClearInput(); err != nil {
		return Outcome{}, err
	}
	if err := d.port.Write([]byte(cmd + "\n")); err != nil {
		return Outcome{}, err
	}
	if prof.SettleAfterWrite > 0 {
		d.clock.Sleep(prof.SettleAfterWrite)
	}

	out, err := Collect(d.port, prof, d.lineSink(cmd))
	if err != nil {
		return out, err
	}

	log.Debug().Str("command", cmd).Str("reason", out.EndReason).
		Int64("bytes", out.Bytes).Int("lines", out.Lines).
		Dur("duration", out.Duration).Msg("command finished")

	if out.Text == "" {
		return out, ErrEmptyResponse
	}
	return out, nil
}

func (d *Dispatcher) lineSink(cmd string) func(string) {
	if d.sink == nil {
		return nil
	}
	return func(line string) {
		d.sink(cmd, line)
	}
}

// fastProfile collects fast-list responses: same quiet period as the
// relaxed path but a shorter hard timeout, and no end markers since these
// commands reply with free-form status chatter.
func (d *Dispatcher) fastProfile() Profile {
	return Profile{
		Quiet:            d.cfg.QuietPeriod(),
		Hard:             d.cfg.FastHardTimeout(),
		SettleAfterWrite: fastWriteSettle,
	}
}

// profileFor picks the relaxed-path profile. Range queries stream an
// arbitrary amount of stored readings, so they get more generous timing
// and an extra end marker.
func (d *Dispatcher) profileFor(cmd string) Profile {
	if IsRangeCommand(cmd) {
		return Profile{
			Quiet:      d.cfg.RangeQuietPeriod(),
			Hard:       d.cfg.RangeHardTimeout(),
			EndMarkers: []string{DashboardDataEnd, ReadingsEnd},
		}
	}
	return Profile{
		Quiet:      d.cfg.QuietPeriod(),
		Hard:       d.cfg.HardTimeout(),
		EndMarkers: []string{DashboardDataEnd},
	}
}
