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

package mfrc522

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// UIDLen is the length of a cascade level 1 anticollision answer:
// four serial bytes followed by the block check character.
const UIDLen = 5

// UID is a single-size card serial number with its BCC byte.
type UID [UIDLen]byte

// ParseUID validates a raw anticollision answer.
func ParseUID(raw []byte) (UID, error) {
	var uid UID
	if len(raw) < UIDLen {
		return uid, fmt.Errorf("%w: uid needs %d bytes, got %d", ErrInvalidParameter, UIDLen, len(raw))
	}
	copy(uid[:], raw[:UIDLen])
	if !uid.Valid() {
		return UID{}, fmt.Errorf("%w: bcc 0x%02X, want 0x%02X", ErrChecksumMismatch, uid[4], uid.checksum())
	}
	return uid, nil
}

func (u UID) checksum() byte {
	return u[0] ^ u[1] ^ u[2] ^ u[3]
}

// Valid reports whether the BCC byte matches the XOR of the serial bytes.
func (u UID) Valid() bool {
	return u.checksum() == u[4]
}

// Bytes returns a copy of the four serial bytes.
func (u UID) Bytes() []byte {
	b := make([]byte, 4)
	copy(b, u[:4])
	return b
}

// String renders the serial bytes as 8 uppercase hex digits.
func (u UID) String() string {
	return strings.ToUpper(hex.EncodeToString(u[:4]))
}
