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

package testing

import (
	"encoding/hex"
	"strings"
)

// ISO14443A card commands understood by VirtualCard.
const (
	CmdReqIdl   = 0x26
	CmdAnticoll = 0x93
	CmdHalt     = 0x50
)

// VirtualCard represents a simulated ISO14443A card in the reader field
type VirtualCard struct {
	// Serial is returned verbatim by anticollision, BCC included, so tests
	// can present a corrupted checksum
	Serial []byte
	ATQA   []byte
	// RequestBits and AnticollBits override the reported answer length in bits
	RequestBits  int
	AnticollBits int
	// ErrorReg is loaded into the chip error register after each exchange
	ErrorReg byte
	Present  bool
	Halted   bool
}

// NewVirtualCard creates a present card with a correct BCC for the four uid bytes.
func NewVirtualCard(uid []byte) *VirtualCard {
	if uid == nil {
		uid = TestUID
	}
	serial := make([]byte, 5)
	copy(serial, uid[:4])
	serial[4] = serial[0] ^ serial[1] ^ serial[2] ^ serial[3]
	return &VirtualCard{
		Serial:  serial,
		ATQA:    []byte{0x04, 0x00},
		Present: true,
	}
}

// NewCorruptCard creates a present card whose BCC byte is wrong.
func NewCorruptCard(uid []byte) *VirtualCard {
	card := NewVirtualCard(uid)
	card.Serial[4] ^= 0xFF
	return card
}

// UIDString returns the four uid bytes as uppercase hex
func (v *VirtualCard) UIDString() string {
	return strings.ToUpper(hex.EncodeToString(v.Serial[:4]))
}

// Tap puts the card back into the field in the idle state.
func (v *VirtualCard) Tap() {
	v.Present = true
	v.Halted = false
}

// Remove takes the card out of the field.
func (v *VirtualCard) Remove() {
	v.Present = false
}

// Answer returns the card's reply to tx and its length in bits. A nil reply
// means the card stayed silent and the reader timer will expire.
func (v *VirtualCard) Answer(tx []byte) (reply []byte, bits int) {
	if v == nil || !v.Present || len(tx) == 0 {
		return nil, 0
	}

	switch tx[0] {
	case CmdReqIdl:
		if v.Halted {
			return nil, 0
		}
		return v.withBits(v.ATQA, v.RequestBits)
	case CmdAnticoll:
		if v.Halted || len(tx) < 2 {
			return nil, 0
		}
		return v.withBits(v.Serial, v.AnticollBits)
	case CmdHalt:
		v.Halted = true
		return nil, 0
	default:
		return nil, 0
	}
}

func (*VirtualCard) withBits(data []byte, override int) ([]byte, int) {
	out := make([]byte, len(data))
	copy(out, data)
	if override > 0 {
		return out, override
	}
	return out, len(out) * 8
}

// CRCA computes the ISO14443-3 CRC_A of data, low byte first.
func CRCA(data []byte) [2]byte {
	crc := uint16(0x6363)
	for _, b := range data {
		b ^= byte(crc & 0xFF)
		b ^= b << 4
		crc = (crc >> 8) ^ uint16(b)<<8 ^ uint16(b)<<3 ^ uint16(b)>>4
	}
	return [2]byte{byte(crc), byte(crc >> 8)}
}
