// go-mfrc522
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-mfrc522.
//
// go-mfrc522 is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-mfrc522 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-mfrc522; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package polling

import (
	"sync/atomic"
	"time"
)

// Metrics is a snapshot of the loop's counters. All counters only grow.
type Metrics struct {
	PollCycles           int64
	RequestFailures      int64
	AnticollFailures     int64
	ChecksumFailures     int64
	CardsRead            int64
	HandlerErrors        int64
	LastPollLatency      time.Duration
	LastCardReadUnixNano int64
}

type counters struct {
	pollCycles       atomic.Int64
	requestFailures  atomic.Int64
	anticollFailures atomic.Int64
	checksumFailures atomic.Int64
	cardsRead        atomic.Int64
	handlerErrors    atomic.Int64
	lastPollLatency  atomic.Int64
	lastCardRead     atomic.Int64
}

func (c *counters) snapshot() Metrics {
	return Metrics{
		PollCycles:           c.pollCycles.Load(),
		RequestFailures:      c.requestFailures.Load(),
		AnticollFailures:     c.anticollFailures.Load(),
		ChecksumFailures:     c.checksumFailures.Load(),
		CardsRead:            c.cardsRead.Load(),
		HandlerErrors:        c.handlerErrors.Load(),
		LastPollLatency:      time.Duration(c.lastPollLatency.Load()),
		LastCardReadUnixNano: c.lastCardRead.Load(),
	}
}
