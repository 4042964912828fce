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
	"fmt"
	"time"
)

// Frame is the result of one transceive exchange.
type Frame struct {
	// Data holds the bytes drained from the FIFO, at most MaxFrameLen
	Data []byte
	// Bits is the number of valid response bits reported by the chip,
	// which need not be a multiple of 8
	Bits int
}

// deadline is a point on the monotonic clock after which a poll loop gives up.
type deadline struct {
	now func() time.Time
	at  time.Time
}

func (d *Device) newDeadline(timeout time.Duration) deadline {
	return deadline{now: d.now, at: d.now().Add(timeout)}
}

func (dl deadline) expired() bool {
	return !dl.now().Before(dl.at)
}

// waitIRQ reads reg until any bit of mask is set or the deadline passes.
// At least one read always happens.
func (d *Device) waitIRQ(reg Register, mask byte, timeout time.Duration) (byte, error) {
	dl := d.newDeadline(timeout)
	reads := 0
	for {
		value, err := d.transport.ReadRegister(reg)
		if err != nil {
			return 0, err
		}
		reads++
		if value&mask != 0 {
			return value, nil
		}
		if dl.expired() {
			debugf("register 0x%02X never showed 0x%02X after %d reads", byte(reg), mask, reads)
			return value, fmt.Errorf("%w: waiting %v for register 0x%02X", ErrTimeout, timeout, byte(reg))
		}
	}
}

func (d *Device) writeFIFO(data []byte) error {
	for _, b := range data {
		if err := d.transport.WriteRegister(RegFIFOData, b); err != nil {
			return fmt.Errorf("write fifo: %w", err)
		}
	}
	return nil
}

// clearIRQ clears the given request bits. ComIrq and DivIrq clear the bits
// written as 1 when bit 7 is 0, so no read-modify-write is involved.
func (d *Device) clearIRQ(reg Register, bits byte) error {
	if err := d.transport.WriteRegister(reg, bits&^irqSet); err != nil {
		return fmt.Errorf("clear irq 0x%02X: %w", byte(reg), err)
	}
	return nil
}

func (d *Device) command(cmd Command) error {
	if err := d.transport.WriteRegister(RegCommand, byte(cmd)); err != nil {
		return fmt.Errorf("command 0x%02X: %w", byte(cmd), err)
	}
	return nil
}

// CalculateCRC runs data through the chip's CRC_A coprocessor and returns
// the result as [low, high].
func (d *Device) CalculateCRC(data []byte) ([2]byte, error) {
	var crc [2]byte

	if err := d.clearIRQ(RegDivIrq, divIrqCRC); err != nil {
		return crc, err
	}
	if err := SetBits(d.transport, RegFIFOLevel, fifoFlush); err != nil {
		return crc, err
	}
	if err := d.writeFIFO(data); err != nil {
		return crc, err
	}
	if err := d.command(CmdCalcCRC); err != nil {
		return crc, err
	}

	if _, err := d.waitIRQ(RegDivIrq, divIrqCRC, d.config.CRCTimeout); err != nil {
		return crc, fmt.Errorf("crc: %w", err)
	}

	low, err := d.transport.ReadRegister(RegCRCResultL)
	if err != nil {
		return crc, fmt.Errorf("read crc low: %w", err)
	}
	high, err := d.transport.ReadRegister(RegCRCResultH)
	if err != nil {
		return crc, fmt.Errorf("read crc high: %w", err)
	}
	crc[0], crc[1] = low, high
	return crc, nil
}

// Transceive sends data to the card through the FIFO and, if wantResponse is
// set, drains the answer. The exchange ends on RxIRq/IdleIRq, on the chip
// timer (no card) or on the TransceiveTimeout deadline.
func (d *Device) Transceive(data []byte, wantResponse bool) (Frame, error) {
	var frame Frame

	if err := d.transport.WriteRegister(RegComIEn, comIEnAll); err != nil {
		return frame, fmt.Errorf("enable interrupts: %w", err)
	}
	if err := d.clearIRQ(RegComIrq, comIrqAll); err != nil {
		return frame, err
	}
	if err := SetBits(d.transport, RegFIFOLevel, fifoFlush); err != nil {
		return frame, err
	}
	if err := d.command(CmdIdle); err != nil {
		return frame, err
	}
	if err := d.writeFIFO(data); err != nil {
		return frame, err
	}
	if err := d.command(CmdTransceive); err != nil {
		return frame, err
	}
	if err := SetBits(d.transport, RegBitFraming, startSend); err != nil {
		return frame, err
	}

	_, waitErr := d.waitIRQ(RegComIrq, comIrqRxIdle|comIrqTimer, d.config.TransceiveTimeout)

	if err := ClearBits(d.transport, RegBitFraming, startSend); err != nil {
		return frame, err
	}
	if waitErr != nil {
		return frame, fmt.Errorf("transceive: %w", waitErr)
	}

	errReg, err := d.transport.ReadRegister(RegError)
	if err != nil {
		return frame, fmt.Errorf("read error register: %w", err)
	}
	if errReg&errorMask != 0 {
		return frame, &ProtocolError{ErrorReg: errReg}
	}

	if !wantResponse {
		return frame, nil
	}
	return d.drainFIFO()
}

func (d *Device) drainFIFO() (Frame, error) {
	var frame Frame

	level, err := d.transport.ReadRegister(RegFIFOLevel)
	if err != nil {
		return frame, fmt.Errorf("read fifo level: %w", err)
	}
	control, err := d.transport.ReadRegister(RegControl)
	if err != nil {
		return frame, fmt.Errorf("read control: %w", err)
	}

	n := int(level & 0x7F)
	lastBits := int(control & rxLastBitsMask)
	switch {
	case n == 0:
		frame.Bits = 0
	case lastBits != 0:
		frame.Bits = (n-1)*8 + lastBits
	default:
		frame.Bits = n * 8
	}

	if n > MaxFrameLen {
		debugf("fifo holds %d bytes, truncating to %d", n, MaxFrameLen)
		n = MaxFrameLen
	}

	frame.Data = make([]byte, n)
	for i := 0; i < n; i++ {
		b, err := d.transport.ReadRegister(RegFIFOData)
		if err != nil {
			return Frame{}, fmt.Errorf("read fifo: %w", err)
		}
		frame.Data[i] = b
	}
	return frame, nil
}
