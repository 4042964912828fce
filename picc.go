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

import "fmt"

const (
	atqaBits = 16
	uidBits  = UIDLen * 8
)

// Request sends REQA for idle cards using a 7-bit short frame and returns the
// ATQA. Anything but a 16-bit answer is reported as ErrNoCard.
func (d *Device) Request() ([]byte, error) {
	if err := d.transport.WriteRegister(RegBitFraming, 0x07); err != nil {
		return nil, fmt.Errorf("set short frame: %w", err)
	}

	frame, err := d.Transceive([]byte{piccReqIdl}, true)
	if err != nil {
		return nil, err
	}
	if frame.Bits != atqaBits {
		return nil, fmt.Errorf("%w: request answered with %d bits", ErrNoCard, frame.Bits)
	}
	return frame.Data, nil
}

// Anticollision runs cascade level 1 anticollision and returns the card's
// serial. A 40-bit answer whose BCC does not match yields ErrChecksumMismatch,
// never a UID.
func (d *Device) Anticollision() (UID, error) {
	if err := d.transport.WriteRegister(RegBitFraming, 0x00); err != nil {
		return UID{}, fmt.Errorf("set full frame: %w", err)
	}

	frame, err := d.Transceive([]byte{piccAnticollCL1, piccAnticollNVB}, true)
	if err != nil {
		return UID{}, err
	}
	if frame.Bits != uidBits {
		return UID{}, fmt.Errorf("%w: anticollision answered with %d bits", ErrNoCard, frame.Bits)
	}
	return ParseUID(frame.Data)
}

// Halt puts the selected card into the HALT state. The card does not answer
// a HALT, so any response is discarded.
func (d *Device) Halt() error {
	cmd := []byte{piccHalt, 0x00, 0x00, 0x00}
	crc, err := d.CalculateCRC(cmd[:2])
	if err != nil {
		return fmt.Errorf("halt: %w", err)
	}
	cmd[2], cmd[3] = crc[0], crc[1]

	if _, err := d.Transceive(cmd, false); err != nil {
		return fmt.Errorf("halt: %w", err)
	}
	return nil
}
