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

package attendance

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// DefaultDebounceWindow is the minimum spacing between two dispatched events.
const DefaultDebounceWindow = 2000 * time.Millisecond

// ErrDebounced reports a tap suppressed by the debounce window.
var ErrDebounced = errors.New("tap suppressed by debounce window")

// Gateway delivers events to the attendance backend.
type Gateway interface {
	Send(ctx context.Context, event Event) error
}

// Dispatcher turns accepted taps into events. The debounce window is global:
// a second card tapped within the window of any dispatched event is dropped.
type Dispatcher struct {
	gateway  Gateway
	now      func() time.Time
	random   func() uint32
	last     time.Time
	deviceID string
	window   time.Duration
	hasLast  bool
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDebounceWindow overrides DefaultDebounceWindow.
func WithDebounceWindow(window time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if window >= 0 {
			d.window = window
		}
	}
}

// WithClock replaces time.Now. The clock must carry a monotonic reading or
// otherwise never step backwards.
func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// WithRandom replaces the source of event id bits.
func WithRandom(random func() uint32) DispatcherOption {
	return func(d *Dispatcher) {
		if random != nil {
			d.random = random
		}
	}
}

// NewDispatcher creates a dispatcher sending events for deviceID through gateway.
func NewDispatcher(deviceID string, gateway Gateway, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		gateway:  gateway,
		deviceID: deviceID,
		window:   DefaultDebounceWindow,
		now:      time.Now,
		random:   rand.Uint32,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Now returns the dispatcher clock reading.
func (d *Dispatcher) Now() time.Time {
	return d.now()
}

// Admit applies the debounce window to a tap seen at. An admitted tap
// becomes the new reference point; a suppressed one leaves it unchanged.
func (d *Dispatcher) Admit(at time.Time) bool {
	if d.hasLast && at.Sub(d.last) < d.window {
		return false
	}
	d.last = at
	d.hasLast = true
	return true
}

// Deliver builds the event for uid stamped at and hands it to the gateway.
// The event is returned even when delivery fails.
func (d *Dispatcher) Deliver(ctx context.Context, uid string, at time.Time) (Event, error) {
	event := Event{
		EventID:  NewEventID(d.random),
		DeviceID: d.deviceID,
		RFIDUID:  uid,
		TS:       FormatTimestamp(at),
	}
	if d.gateway == nil {
		return event, nil
	}
	if err := d.gateway.Send(ctx, event); err != nil {
		return event, fmt.Errorf("deliver event %s: %w", event.EventID, err)
	}
	return event, nil
}

// Dispatch admits and delivers a tap of uid at the current time.
// A suppressed tap returns ErrDebounced.
func (d *Dispatcher) Dispatch(ctx context.Context, uid string) (Event, error) {
	at := d.now()
	if !d.Admit(at) {
		return Event{}, ErrDebounced
	}
	return d.Deliver(ctx, uid, at)
}
