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
	"encoding/binary"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout renders UTC times with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Event is the record delivered to the gateway for one accepted tap.
type Event struct {
	EventID  string `json:"event_id"`
	DeviceID string `json:"device_id"`
	RFIDUID  string `json:"rfid_uid"`
	TS       string `json:"ts"`
}

// NewEventID formats four random 32-bit values as a canonical 8-4-4-4-12 UUID
// string. Version and variant bits are left as drawn.
func NewEventID(random func() uint32) string {
	var b uuid.UUID
	for i := 0; i < 4; i++ {
		binary.BigEndian.PutUint32(b[i*4:], random())
	}
	return b.String()
}

// FormatTimestamp renders t in UTC as YYYY-MM-DDTHH:MM:SS.mmmZ.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
