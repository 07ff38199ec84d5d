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

// Package protocol implements the command/response conversation with the
// reader firmware: waking it out of light sleep, sending one command at a
// time and deciding when a multi-line response is complete.
package protocol

import (
	"errors"
	"strings"
	"time"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/reader/link"
)

// Port is the part of the serial link the protocol layer drives.
type Port interface {
	ReadLine(timeout time.Duration) (string, error)
	Write(data []byte) error
	ClearInput() error
	BytesRead() int64
}

// End reasons recorded in an Outcome.
const (
	EndReasonMarker  = "end_marker"
	EndReasonQuiet   = "quiet_period"
	EndReasonTimeout = "hard_timeout"
)

// Profile tunes how a response is collected. The quiet period only starts
// counting once at least one non-blank line has arrived; before that only
// the hard timeout can end the collection. A zero Quiet disables the quiet
// period entirely.
type Profile struct {
	EndMarkers       []string
	Quiet            time.Duration
	Hard             time.Duration
	SettleAfterWrite time.Duration
}

// Outcome describes how a collection run ended. It is diagnostic data for
// logs and API responses and is never persisted.
type Outcome struct {
	Text      string
	EndReason string
	Duration  time.Duration
	Bytes     int64
	Lines     int
}

// maxPollSlice bounds how long a single line read blocks so the quiet and
// hard deadlines are checked promptly.
const maxPollSlice = 50 * time.Millisecond

// Collect reads response lines off the port until an end marker line
// arrives, the device has been quiet long enough, or the hard timeout
// expires. Blank lines are discarded and do not feed the quiet timer.
// onLine, when set, sees every kept line as it arrives.
//
// The returned text is the kept lines joined with newlines, so an end
// marker line is included when one terminated the run. A transport error
// aborts collection and returns what was gathered alongside the error.
func Collect(port Port, prof Profile, onLine func(string)) (Outcome, error) {
	start := time.Now()
	startBytes := port.BytesRead()

	var text strings.Builder
	var lineCount int
	var receivedAny bool
	var lastRx time.Time
	endReason := ""

	finish := func() Outcome {
		return Outcome{
			Text:      text.String(),
			EndReason: endReason,
			Bytes:     port.BytesRead() - startBytes,
			Lines:     lineCount,
			Duration:  time.Since(start),
		}
	}

	for {
		line, err := port.ReadLine(pollSlice(start, lastRx, receivedAny, prof))
		now := time.Now()

		if err != nil && !errors.Is(err, link.ErrReadTimeout) {
			return finish(), err
		}

		if err == nil {
			if line != "" {
				if text.Len() > 0 {
					text.WriteByte('\n')
				}
				text.WriteString(line)
				lineCount++
				receivedAny = true
				lastRx = now
				if onLine != nil {
					onLine(line)
				}
			}
			for _, marker := range prof.EndMarkers {
				if strings.Contains(line, marker) {
					endReason = EndReasonMarker
					return finish(), nil
				}
			}
		}

		if receivedAny && prof.Quiet > 0 && now.Sub(lastRx) > prof.Quiet {
			endReason = EndReasonQuiet
			return finish(), nil
		}
		if now.Sub(start) > prof.Hard {
			endReason = EndReasonTimeout
			return finish(), nil
		}
	}
}

// pollSlice picks a read timeout short enough that whichever deadline
// comes next is honored without overshooting.
func pollSlice(start, lastRx time.Time, receivedAny bool, prof Profile) time.Duration {
	slice := maxPollSlice

	if until := time.Until(start.Add(prof.Hard)); until < slice {
		slice = until
	}
	if receivedAny && prof.Quiet > 0 {
		if until := time.Until(lastRx.Add(prof.Quiet)); until < slice {
			slice = until
		}
	}

	if slice < time.Millisecond {
		slice = time.Millisecond
	}
	return slice
}
