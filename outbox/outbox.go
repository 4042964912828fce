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

// Package outbox keeps undelivered attendance events on disk and retries
// them in the background.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.etcd.io/bbolt"

	"github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/attendance"
)

var bucketName = []byte("events")

// DefaultTarget names the queue of a gateway opened through Open.
const DefaultTarget = "default"

// ErrOutboxFull is returned when an undelivered event had to be dropped.
var ErrOutboxFull = errors.New("outbox full, event dropped")

// Config holds outbox settings.
type Config struct {
	Path          string        `yaml:"path"`
	Capacity      int           `yaml:"capacity"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	Enabled       bool          `yaml:"enabled"`
}

// DefaultConfig returns a disabled outbox with standard limits.
func DefaultConfig() Config {
	return Config{
		Path:          "/var/lib/attendanced/outbox.db",
		Capacity:      1000,
		FlushInterval: 10 * time.Second,
	}
}

// Stats are the outbox counters, summed over all targets.
type Stats struct {
	Buffered int64
	Flushed  int64
	Dropped  int64
}

// Target is one delivery backend. Each target has its own queue, so a
// stored event is only retried against the backends that missed it.
type Target struct {
	Gateway attendance.Gateway
	Name    string
}

// Outbox delivers every event to its targets. Events a target rejects are
// stored in that target's queue and redelivered by Run. Send and Run may be
// called from different goroutines.
type Outbox struct {
	db       *bbolt.DB
	logger   mfrc522.Logger
	targets  []Target
	config   Config
	buffered atomic.Int64
	flushed  atomic.Int64
	dropped  atomic.Int64
}

// Open opens or creates the outbox database at config.Path with inner as
// its only target.
func Open(config Config, inner attendance.Gateway, logger mfrc522.Logger) (*Outbox, error) {
	return OpenTargets(config, []Target{{Name: DefaultTarget, Gateway: inner}}, logger)
}

// OpenTargets opens or creates the outbox database at config.Path with one
// queue per target. Target names must be unique and stable across restarts;
// events queued under a name no longer configured stay on disk untouched.
func OpenTargets(config Config, targets []Target, logger mfrc522.Logger) (*Outbox, error) {
	def := DefaultConfig()
	if config.Capacity <= 0 {
		config.Capacity = def.Capacity
	}
	if config.FlushInterval <= 0 {
		config.FlushInterval = def.FlushInterval
	}
	if logger == nil {
		logger = mfrc522.DefaultLogger
	}

	seen := make(map[string]bool, len(targets))
	for _, t := range targets {
		if t.Name == "" || t.Gateway == nil {
			return nil, fmt.Errorf("outbox target %q needs a name and a gateway", t.Name)
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("duplicate outbox target %q", t.Name)
		}
		seen[t.Name] = true
	}

	db, err := bbolt.Open(config.Path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open outbox %s: %w", config.Path, err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}
		for _, t := range targets {
			if _, err := root.CreateBucketIfNotExists([]byte(t.Name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create outbox bucket: %w", err)
	}

	return &Outbox{db: db, logger: logger, targets: targets, config: config}, nil
}

func queue(tx *bbolt.Tx, target string) *bbolt.Bucket {
	return tx.Bucket(bucketName).Bucket([]byte(target))
}

// Send implements attendance.Gateway. Every target is tried; each failed
// delivery is stored in the failing target's queue and the delivery errors
// are returned so the caller can log them.
func (o *Outbox) Send(ctx context.Context, event attendance.Event) error {
	var errs []error
	for _, t := range o.targets {
		sendErr := t.Gateway.Send(ctx, event)
		if sendErr == nil {
			continue
		}
		if err := o.store(t.Name, event); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t.Name, errors.Join(sendErr, err)))
			continue
		}
		o.buffered.Add(1)
		errs = append(errs, fmt.Errorf("%s: buffered for retry: %w", t.Name, sendErr))
	}
	return errors.Join(errs...)
}

func (o *Outbox) store(target string, event attendance.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	err = o.db.Update(func(tx *bbolt.Tx) error {
		bucket := queue(tx, target)
		if bucket.Get([]byte(event.EventID)) == nil && bucket.Stats().KeyN >= o.config.Capacity {
			return ErrOutboxFull
		}
		return bucket.Put([]byte(event.EventID), data)
	})
	if errors.Is(err, ErrOutboxFull) {
		o.dropped.Add(1)
	}
	return err
}

// Len returns the number of stored records over all targets. An event
// missed by two targets counts twice.
func (o *Outbox) Len() int {
	n := 0
	_ = o.db.View(func(tx *bbolt.Tx) error {
		for _, t := range o.targets {
			n += queue(tx, t.Name).Stats().KeyN
		}
		return nil
	})
	return n
}

// Pending returns the events stored for target in key order.
func (o *Outbox) Pending(target string) ([]attendance.Event, error) {
	var events []attendance.Event
	err := o.db.View(func(tx *bbolt.Tx) error {
		bucket := queue(tx, target)
		if bucket == nil {
			return fmt.Errorf("unknown target %q", target)
		}
		return bucket.ForEach(func(k, v []byte) error {
			var event attendance.Event
			if err := json.Unmarshal(v, &event); err != nil {
				o.logger.Warnf("skipping unreadable outbox record %s/%s: %v", target, k, err)
				return nil
			}
			events = append(events, event)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("read outbox: %w", err)
	}
	return events, nil
}

// Flush retries every stored event once against the target it is queued
// for and deletes the delivered ones. It returns the number delivered.
func (o *Outbox) Flush(ctx context.Context) (int, error) {
	delivered := 0
	for _, t := range o.targets {
		n, err := o.flushTarget(ctx, t)
		delivered += n
		if err != nil {
			return delivered, err
		}
	}
	return delivered, nil
}

func (o *Outbox) flushTarget(ctx context.Context, t Target) (int, error) {
	events, err := o.Pending(t.Name)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, event := range events {
		if ctx.Err() != nil {
			return delivered, ctx.Err()
		}
		if err := t.Gateway.Send(ctx, event); err != nil {
			o.logger.Debugf("outbox retry of %s to %s failed: %v", event.EventID, t.Name, err)
			continue
		}
		if err := o.db.Update(func(tx *bbolt.Tx) error {
			return queue(tx, t.Name).Delete([]byte(event.EventID))
		}); err != nil {
			return delivered, fmt.Errorf("delete flushed event: %w", err)
		}
		delivered++
		o.flushed.Add(1)
		o.logger.Infof("flushed buffered event %s to %s", event.EventID, t.Name)
	}
	return delivered, nil
}

// Run flushes every FlushInterval until ctx ends.
func (o *Outbox) Run(ctx context.Context) error {
	ticker := time.NewTicker(o.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := o.Flush(ctx); err != nil && !errors.Is(err, context.Canceled) {
				o.logger.Errorf("outbox flush: %v", err)
			}
		}
	}
}

// Stats returns the outbox counters.
func (o *Outbox) Stats() Stats {
	return Stats{
		Buffered: o.buffered.Load(),
		Flushed:  o.flushed.Load(),
		Dropped:  o.dropped.Load(),
	}
}

// Close closes the database.
func (o *Outbox) Close() error {
	if err := o.db.Close(); err != nil {
		return fmt.Errorf("close outbox: %w", err)
	}
	return nil
}

var _ attendance.Gateway = (*Outbox)(nil)
