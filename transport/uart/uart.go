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

// Package uart provides the UART transport for the MFRC522
package uart

import (
	"fmt"
	"sync"
	"time"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the chip's power-on UART speed.
	DefaultBaudRate = 9600

	// DefaultReadTimeout bounds the wait for an echo or register value.
	DefaultReadTimeout = 50 * time.Millisecond

	echoRetries = 2
	readFlag    = 0x80
	addrMask    = 0x3F
)

// Transport implements the mfrc522.Transport interface over a serial line.
//
// A write sends [address, value] and the chip echoes the address back. A read
// sends [0x80|address] and the chip answers with the register value.
type Transport struct {
	port     serial.Port
	portName string
	mu       sync.Mutex
}

// New opens portName at baud (DefaultBaudRate when zero), 8N1.
func New(portName string, baud int) (*Transport, error) {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(DefaultReadTimeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", portName, err)
	}
	if err := port.ResetInputBuffer(); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to flush %s: %w", portName, err)
	}

	return NewWithPort(port, portName), nil
}

// NewWithPort wraps an open serial port. The read timeout must already be set.
func NewWithPort(port serial.Port, portName string) *Transport {
	return &Transport{port: port, portName: portName}
}

// WriteRegister sends [address, value] and checks the echoed address. On a
// mismatch the input buffer is flushed and the write repeated, except for the
// FIFO data register where a repeat would push the byte twice. The buffer is
// also flushed after the last mismatch so the next access starts in step.
func (t *Transport) WriteRegister(reg mfrc522.Register, value byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil {
		return mfrc522.NewClosedError("WriteRegister", t.portName)
	}

	retries := echoRetries
	if reg == mfrc522.RegFIFOData {
		retries = 0
	}
	addr := byte(reg) & addrMask

	for attempt := 0; ; attempt++ {
		if err := t.write([]byte{addr, value}, "WriteRegister"); err != nil {
			return err
		}
		echo, err := t.readByte("WriteRegister")
		if err != nil {
			return err
		}
		if echo == addr {
			return nil
		}

		mfrc522.Debugf("uart %s: echo 0x%02X for register 0x%02X (attempt %d)", t.portName, echo, addr, attempt+1)
		if err := t.resync(); err != nil {
			return err
		}
		if attempt >= retries {
			return mfrc522.NewTransportError("WriteRegister", t.portName,
				fmt.Errorf("%w: register 0x%02X echoed 0x%02X", mfrc522.ErrEchoMismatch, addr, echo),
				mfrc522.ErrorTypeTransient)
		}
	}
}

// ReadRegister sends [0x80|address] and returns the answered byte.
func (t *Transport) ReadRegister(reg mfrc522.Register) (byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil {
		return 0, mfrc522.NewClosedError("ReadRegister", t.portName)
	}

	if err := t.write([]byte{readFlag | byte(reg)&addrMask}, "ReadRegister"); err != nil {
		return 0, err
	}
	return t.readByte("ReadRegister")
}

func (t *Transport) write(data []byte, op string) error {
	n, err := t.port.Write(data)
	if err != nil {
		return mfrc522.NewTransportError(op, t.portName,
			fmt.Errorf("%w: %w", mfrc522.ErrTransportWrite, err), mfrc522.ErrorTypeTransient)
	}
	if n != len(data) {
		return mfrc522.NewTransportError(op, t.portName,
			fmt.Errorf("%w: short write %d/%d", mfrc522.ErrTransportWrite, n, len(data)),
			mfrc522.ErrorTypeTransient)
	}
	return nil
}

func (t *Transport) readByte(op string) (byte, error) {
	buf := make([]byte, 1)
	n, err := t.port.Read(buf)
	if err != nil {
		return 0, mfrc522.NewTransportError(op, t.portName,
			fmt.Errorf("%w: %w", mfrc522.ErrTransportRead, err), mfrc522.ErrorTypeTransient)
	}
	if n == 0 {
		return 0, mfrc522.NewTimeoutError(op, t.portName)
	}
	return buf[0], nil
}

func (t *Transport) resync() error {
	if err := t.port.ResetInputBuffer(); err != nil {
		return mfrc522.NewTransportError("resync", t.portName, err, mfrc522.ErrorTypePermanent)
	}
	return nil
}

// Close closes the serial port
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	if err != nil {
		return fmt.Errorf("failed to close serial port %s: %w", t.portName, err)
	}
	return nil
}

// IsConnected returns true if the port is open
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.port != nil
}

// Type returns the transport type
func (*Transport) Type() mfrc522.TransportType {
	return mfrc522.TransportUART
}

var _ mfrc522.Transport = (*Transport)(nil)
