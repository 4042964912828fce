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
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ZaparooProject/go-mfrc522"
)

// ErrNoTagInPoll indicates no card answered during a cycle (not an error condition)
var ErrNoTagInPoll = errors.New("no tag detected in polling cycle")

// Reader is the part of *mfrc522.Device the loop needs
type Reader interface {
	ReadUID() (mfrc522.UID, error)
}

// Handler receives each card read, rendered as 8 uppercase hex digits
type Handler func(ctx context.Context, uid string) error

// Loop polls the reader on a fixed cadence and hands every card to a Handler.
// It owns the reader; nothing else may touch the device while Run is active.
type Loop struct {
	reader  Reader
	config  *Config
	handler Handler
	logger  mfrc522.Logger
	now     func() time.Time
	stats   counters
	stateMu sync.Mutex
	state   CardState
}

// NewLoop creates an acquisition loop. A nil config uses DefaultConfig and a
// nil logger uses mfrc522.DefaultLogger.
func NewLoop(reader Reader, config *Config, handler Handler, logger mfrc522.Logger) *Loop {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config
	cfg.normalize()
	if logger == nil {
		logger = mfrc522.DefaultLogger
	}
	return &Loop{
		reader:  reader,
		config:  &cfg,
		handler: handler,
		logger:  logger,
		now:     time.Now,
	}
}

// Run polls until ctx ends and returns ctx.Err(). Read failures are never
// fatal; the loop keeps polling even if the device failed to initialize.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		wait := l.config.MissInterval
		if err := l.PollOnce(ctx); err == nil {
			wait = l.config.HitInterval
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// PollOnce runs a single acquisition cycle. It returns ErrNoTagInPoll or the
// read failure when no card was read, nil after a card was handed to the
// handler. Handler errors are logged, not returned.
func (l *Loop) PollOnce(ctx context.Context) error {
	start := l.now()
	uid, err := l.reader.ReadUID()
	l.stats.pollCycles.Add(1)
	l.stats.lastPollLatency.Store(int64(l.now().Sub(start)))

	if err != nil {
		l.recordFailure(err)
		l.stateMu.Lock()
		l.state.RecordMiss(l.config.RemovalMisses)
		l.stateMu.Unlock()
		if mfrc522.IsMiss(err) {
			return ErrNoTagInPoll
		}
		return err
	}

	id := uid.String()
	l.stats.cardsRead.Add(1)
	l.stats.lastCardRead.Store(start.UnixNano())
	l.stateMu.Lock()
	l.state.TransitionToDetected(id, start)
	l.stateMu.Unlock()
	l.logger.Debugf("card %s read in %v", id, l.now().Sub(start))

	if l.handler != nil {
		if herr := l.handler(ctx, id); herr != nil {
			l.stats.handlerErrors.Add(1)
			l.logger.Errorf("handling card %s: %v", id, herr)
		}
	}
	return nil
}

// recordFailure counts err under the stage it came from and logs the 1st,
// (ReportEvery+1)th, ... failure of each kind.
func (l *Loop) recordFailure(err error) {
	switch mfrc522.FailedStep(err) {
	case mfrc522.StepAnticollision:
		n := l.stats.anticollFailures.Add(1)
		if errors.Is(err, mfrc522.ErrChecksumMismatch) {
			l.stats.checksumFailures.Add(1)
			l.report(n, "anticollision checksum mismatch", err)
			return
		}
		l.report(n, "anticollision failed", err)
	default:
		n := l.stats.requestFailures.Add(1)
		if mfrc522.IsMiss(err) {
			l.reportDebug(n, "no card in field")
			return
		}
		l.report(n, "request failed", err)
	}
}

func (l *Loop) shouldReport(n int64) bool {
	return (n-1)%int64(l.config.ReportEvery) == 0
}

func (l *Loop) report(n int64, reason string, err error) {
	if l.shouldReport(n) {
		l.logger.Warnf("%s (failure #%d): %v", reason, n, err)
	}
}

func (l *Loop) reportDebug(n int64, reason string) {
	if l.shouldReport(n) {
		l.logger.Debugf("%s (request failure #%d)", reason, n)
	}
}

// Metrics returns a snapshot of the loop counters
func (l *Loop) Metrics() Metrics {
	return l.stats.snapshot()
}

// State returns the current card state
func (l *Loop) State() CardState {
	l.stateMu.Lock()
	defer l.stateMu.Unlock()
	return l.state
}

// Close releases the reader if it can be closed
func (l *Loop) Close() error {
	closer, ok := l.reader.(interface{ Close() error })
	if !ok {
		return nil
	}
	if err := closer.Close(); err != nil {
		return fmt.Errorf("failed to close device: %w", err)
	}
	return nil
}
