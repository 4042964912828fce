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

import "strings"

// Direction is the kind of the next event expected for a card.
type Direction string

const (
	DirectionEntry Direction = "entry"
	DirectionExit  Direction = "exit"
)

// ParseDirection maps a directory next_event_type value to a Direction.
// Only "exit" (any case) yields DirectionExit.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(DirectionExit)) {
		return DirectionExit
	}
	return DirectionEntry
}

// Toggle returns the opposite direction.
func (d Direction) Toggle() Direction {
	if d == DirectionExit {
		return DirectionEntry
	}
	return DirectionExit
}

// IsEntry reports whether d is an entry. The zero value counts as entry.
func (d Direction) IsEntry() bool {
	return d != DirectionExit
}
