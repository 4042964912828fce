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

import "time"

// Config holds the acquisition loop cadence
type Config struct {
	// MissInterval is the pause after a cycle without a card
	MissInterval time.Duration
	// HitInterval is the pause after a card was read and handled
	HitInterval time.Duration
	// ReportEvery logs one failure line per this many failures of a kind
	ReportEvery int
	// RemovalMisses is the number of consecutive misses after which the
	// last card is considered removed from the field
	RemovalMisses int
}

// DefaultConfig returns the standard attendance terminal cadence
func DefaultConfig() *Config {
	return &Config{
		MissInterval:  125 * time.Millisecond,
		HitInterval:   time.Second,
		ReportEvery:   20,
		RemovalMisses: 2,
	}
}

func (c *Config) normalize() {
	def := DefaultConfig()
	if c.MissInterval < 0 {
		c.MissInterval = def.MissInterval
	}
	if c.HitInterval < 0 {
		c.HitInterval = def.HitInterval
	}
	if c.ReportEvery < 1 {
		c.ReportEvery = def.ReportEvery
	}
	if c.RemovalMisses < 1 {
		c.RemovalMisses = def.RemovalMisses
	}
}
