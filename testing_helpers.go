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
	"sync"

	testutil "github.com/ZaparooProject/go-mfrc522/internal/testing"
)

// RegisterWrite records one WriteRegister call on a MockTransport.
type RegisterWrite struct {
	Reg   Register
	Value byte
}

// MockTransport simulates an MFRC522 at register level: FIFO, command
// register, interrupt flags, CRC coprocessor and a card in the field.
type MockTransport struct {
	regs       map[Register]byte
	readErrs   map[Register]error
	writeErrs  map[Register]error
	card       *testutil.VirtualCard
	fifo       []byte
	writes     []RegisterWrite
	reads      int
	mu         sync.Mutex
	closed     bool
	stuckIRQ   bool
	stuckCRC   bool
	exchanges  int
	lastTx     []byte
	fifoOffset int
}

// NewMockTransport creates a connected mock chip reporting version 0x92.
func NewMockTransport() *MockTransport {
	m := &MockTransport{
		readErrs:  make(map[Register]error),
		writeErrs: make(map[Register]error),
	}
	m.resetRegisters()
	m.regs[RegVersion] = testutil.VersionMFRC522v2
	return m
}

func (m *MockTransport) resetRegisters() {
	version := byte(testutil.VersionMFRC522v2)
	if m.regs != nil {
		version = m.regs[RegVersion]
	}
	m.regs = map[Register]byte{
		RegTxControl:  0x80,
		RegRFCfg:      0x48,
		RegCommand:    0x20,
		RegBitFraming: 0x00,
		RegVersion:    version,
	}
	m.fifo = nil
	m.fifoOffset = 0
}

// SetCard places card in the field; nil empties the field.
func (m *MockTransport) SetCard(card *testutil.VirtualCard) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.card = card
}

// SetVersion sets the value returned by the version register.
func (m *MockTransport) SetVersion(version byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regs[RegVersion] = version
}

// SetRegister forces a register value.
func (m *MockTransport) SetRegister(reg Register, value byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regs[reg] = value
}

// Register returns the current value of reg without side effects.
func (m *MockTransport) Register(reg Register) byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.regs[reg]
}

// SetReadError makes every read of reg fail with err; nil clears it.
func (m *MockTransport) SetReadError(reg Register, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.readErrs, reg)
		return
	}
	m.readErrs[reg] = err
}

// SetWriteError makes every write of reg fail with err; nil clears it.
func (m *MockTransport) SetWriteError(reg Register, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.writeErrs, reg)
		return
	}
	m.writeErrs[reg] = err
}

// SetStuckIRQ stops transceive from ever raising an interrupt.
func (m *MockTransport) SetStuckIRQ(stuck bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stuckIRQ = stuck
}

// SetStuckCRC stops the CRC coprocessor from ever finishing.
func (m *MockTransport) SetStuckCRC(stuck bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stuckCRC = stuck
}

// Writes returns a copy of the recorded register writes.
func (m *MockTransport) Writes() []RegisterWrite {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RegisterWrite, len(m.writes))
	copy(out, m.writes)
	return out
}

// ReadCount returns the number of register reads served.
func (m *MockTransport) ReadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

// Exchanges returns the number of transceive exchanges started.
func (m *MockTransport) Exchanges() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exchanges
}

// LastTx returns the bytes sent by the last transceive.
func (m *MockTransport) LastTx() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.lastTx...)
}

// ResetLog clears recorded writes and counters.
func (m *MockTransport) ResetLog() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = nil
	m.reads = 0
	m.exchanges = 0
}

// WriteRegister implements Transport.
func (m *MockTransport) WriteRegister(reg Register, value byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return NewClosedError("WriteRegister", "mock")
	}
	if err := m.writeErrs[reg]; err != nil {
		return err
	}
	m.writes = append(m.writes, RegisterWrite{Reg: reg, Value: value})

	switch reg {
	case RegFIFOData:
		m.fifo = append(m.fifo, value)
	case RegFIFOLevel:
		if value&fifoFlush != 0 {
			m.fifo = nil
			m.fifoOffset = 0
		}
	case RegComIrq, RegDivIrq:
		// Set1 semantics: bit 7 selects set or clear of the marked bits.
		if value&irqSet != 0 {
			m.regs[reg] |= value & 0x7F
		} else {
			m.regs[reg] &^= value & 0x7F
		}
	case RegCommand:
		m.regs[reg] = value
		m.runCommand(Command(value & 0x0F))
	case RegBitFraming:
		m.regs[reg] = value
		if value&startSend != 0 && Command(m.regs[RegCommand]&0x0F) == CmdTransceive {
			m.exchange()
		}
	default:
		m.regs[reg] = value
	}
	return nil
}

func (m *MockTransport) runCommand(cmd Command) {
	switch cmd {
	case CmdSoftReset:
		m.resetRegisters()
	case CmdCalcCRC:
		crc := testutil.CRCA(m.fifo[m.fifoOffset:])
		m.regs[RegCRCResultL] = crc[0]
		m.regs[RegCRCResultH] = crc[1]
		if !m.stuckCRC {
			m.regs[RegDivIrq] |= divIrqCRC
		}
	}
}

func (m *MockTransport) exchange() {
	m.exchanges++
	m.lastTx = append([]byte(nil), m.fifo[m.fifoOffset:]...)
	m.fifo = nil
	m.fifoOffset = 0

	if m.stuckIRQ {
		return
	}

	reply, bits := m.card.Answer(m.lastTx)
	if reply == nil {
		m.regs[RegComIrq] |= comIrqTimer
		m.regs[RegControl] &^= rxLastBitsMask
		m.regs[RegError] = 0
		return
	}

	m.fifo = reply
	m.regs[RegControl] = (m.regs[RegControl] &^ rxLastBitsMask) | byte(bits%8)
	m.regs[RegComIrq] |= comIrqRxIdle
	m.regs[RegError] = m.card.ErrorReg
}

// ReadRegister implements Transport.
func (m *MockTransport) ReadRegister(reg Register) (byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, NewClosedError("ReadRegister", "mock")
	}
	if err := m.readErrs[reg]; err != nil {
		return 0, err
	}
	m.reads++

	switch reg {
	case RegFIFOData:
		if m.fifoOffset >= len(m.fifo) {
			return 0, nil
		}
		b := m.fifo[m.fifoOffset]
		m.fifoOffset++
		return b, nil
	case RegFIFOLevel:
		return byte(len(m.fifo) - m.fifoOffset), nil
	default:
		return m.regs[reg], nil
	}
}

// Close implements Transport.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// IsConnected implements Transport.
func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

// Type implements Transport.
func (*MockTransport) Type() TransportType {
	return TransportMock
}

// MockResetPin records reset line levels.
type MockResetPin struct {
	Err    error
	Levels []bool
}

// Out implements ResetPin.
func (p *MockResetPin) Out(high bool) error {
	if p.Err != nil {
		return p.Err
	}
	p.Levels = append(p.Levels, high)
	return nil
}

var (
	_ Transport = (*MockTransport)(nil)
	_ ResetPin  = (*MockResetPin)(nil)
)
