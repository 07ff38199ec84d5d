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

package helpers

import (
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/helpers/syncutil"
)

// RingBuffer is a fixed-capacity append-only log. Once full, each append
// drops the oldest entry. Safe for concurrent use.
type RingBuffer[T any] struct {
	items    []T
	start    int
	count    int
	capacity int
	mu       syncutil.Mutex
}

// NewRingBuffer creates a buffer holding at most capacity entries.
// Capacity must be positive.
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &RingBuffer[T]{
		items:    make([]T, capacity),
		capacity: capacity,
	}
}

// Add appends an entry, evicting the oldest when the buffer is full.
func (b *RingBuffer[T]) Add(item T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count < b.capacity {
		b.items[(b.start+b.count)%b.capacity] = item
		b.count++
		return
	}
	b.items[b.start] = item
	b.start = (b.start + 1) % b.capacity
}

// Items returns a copy of the buffer contents, oldest first.
func (b *RingBuffer[T]) Items() []T {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]T, b.count)
	for i := range b.count {
		out[i] = b.items[(b.start+i)%b.capacity]
	}
	return out
}

// Len returns the number of entries currently held.
func (b *RingBuffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Clear discards all entries.
func (b *RingBuffer[T]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.start = 0
	b.count = 0
}
