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

	"github.com/ZaparooProject/go-mfrc522"
)

// Profile is what the directory knows about a card holder.
type Profile struct {
	Name          string `json:"name"`
	NextEventType string `json:"next_event_type"`
}

// Directory resolves a card to its holder.
type Directory interface {
	Lookup(ctx context.Context, uid string) (Profile, error)
}

// Display shows the outcome of a tap to the person at the reader.
type Display interface {
	ShowEvent(name string, entry bool)
}

// Result describes what Handle did with one tap.
type Result struct {
	Event      Event
	Name       string
	Direction  Direction
	Suppressed bool
}

// Pipeline holds the cache and debounce state of one reader and runs each
// tap through debounce, enrichment, delivery, display and toggle.
// It is owned by the acquisition goroutine and is not safe for concurrent use.
type Pipeline struct {
	cache      *Cache
	dispatcher *Dispatcher
	directory  Directory
	display    Display
	logger     mfrc522.Logger
}

// NewPipeline wires a pipeline. A nil cache or dispatcher gets the default
// one; the default dispatcher has no device id and no gateway. A nil
// directory disables enrichment, a nil display shows nothing and a nil
// logger means mfrc522.DefaultLogger.
func NewPipeline(
	cache *Cache, dispatcher *Dispatcher, directory Directory, display Display, logger mfrc522.Logger,
) *Pipeline {
	if cache == nil {
		cache = NewCache(DefaultCapacity, nil)
	}
	if dispatcher == nil {
		dispatcher = NewDispatcher("", nil)
	}
	if logger == nil {
		logger = mfrc522.DefaultLogger
	}
	return &Pipeline{
		cache:      cache,
		dispatcher: dispatcher,
		directory:  directory,
		display:    display,
		logger:     logger,
	}
}

// Cache returns the pipeline's card cache.
func (p *Pipeline) Cache() *Cache {
	return p.cache
}

// Handle processes one tap of uid. A tap inside the debounce window is
// dropped before any lookup, delivery, display or toggle. Otherwise the
// entry's direction flips after the event was handed to the gateway, even if
// delivery failed; the delivery error is returned for logging.
func (p *Pipeline) Handle(ctx context.Context, uid string) (Result, error) {
	at := p.dispatcher.Now()
	if !p.dispatcher.Admit(at) {
		p.logger.Debugf("ignoring tap of %s (debounce)", uid)
		return Result{Suppressed: true}, nil
	}

	entry := p.cache.LookupOrCreate(uid)
	if entry.Name == "" {
		p.enrich(ctx, entry)
	}

	result := Result{Name: entry.Name, Direction: entry.Next}
	event, err := p.dispatcher.Deliver(ctx, uid, at)
	result.Event = event
	if err == nil {
		p.logger.Infof("sent %s event %s for %s", result.Direction, event.EventID, uid)
	}

	if p.display != nil {
		p.display.ShowEvent(result.Name, result.Direction.IsEntry())
	}
	entry.Next = result.Direction.Toggle()

	return result, err
}

// OnCard adapts Handle to the polling handler signature.
func (p *Pipeline) OnCard(ctx context.Context, uid string) error {
	_, err := p.Handle(ctx, uid)
	return err
}

// enrich fills in name and direction from the directory. Any failure falls
// back to the uid as name and entry as direction.
func (p *Pipeline) enrich(ctx context.Context, entry *Entry) {
	entry.Name = entry.UID
	entry.Next = DirectionEntry
	if p.directory == nil {
		return
	}

	profile, err := p.directory.Lookup(ctx, entry.UID)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			p.logger.Warnf("directory lookup for %s failed, using uid: %v", entry.UID, err)
		}
		return
	}
	if profile.Name != "" {
		entry.Name = profile.Name
	}
	entry.Next = ParseDirection(profile.NextEventType)
}

// String renders r for logs.
func (r Result) String() string {
	if r.Suppressed {
		return "suppressed"
	}
	return fmt.Sprintf("%s %s (%s)", r.Direction, r.Name, r.Event.EventID)
}
