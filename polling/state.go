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

// CardDetectionState is the presence state of the reader field as seen by the loop
type CardDetectionState int

const (
	StateIdle CardDetectionState = iota
	StateTagDetected
)

func (s CardDetectionState) String() string {
	if s == StateTagDetected {
		return "detected"
	}
	return "idle"
}

// CardState tracks the last card the loop read
type CardState struct {
	LastSeenTime   time.Time
	LastUID        string
	DetectionState CardDetectionState
	Present        bool
	// Misses counts consecutive cycles without a card since the last read
	Misses int
}

// TransitionToDetected records a successful read of uid
func (cs *CardState) TransitionToDetected(uid string, at time.Time) {
	cs.DetectionState = StateTagDetected
	cs.Present = true
	cs.LastUID = uid
	cs.LastSeenTime = at
	cs.Misses = 0
}

// RecordMiss notes a cycle without a card. The card is considered gone after
// removalMisses consecutive misses; LastUID is kept for diagnostics.
func (cs *CardState) RecordMiss(removalMisses int) {
	cs.Misses++
	if cs.Present && cs.Misses >= removalMisses {
		cs.TransitionToIdle()
	}
}

// TransitionToIdle clears presence
func (cs *CardState) TransitionToIdle() {
	cs.DetectionState = StateIdle
	cs.Present = false
}
