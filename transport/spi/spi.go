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

// Package spi provides the SPI transport for the MFRC522
package spi

import (
	"fmt"
	"sync"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// DefaultSpeed is the SPI clock used when none is given. The chip accepts up
// to 10 MHz but long jumper wires on hobby boards do not.
const DefaultSpeed = 5 * physic.MegaHertz

// Transport implements the mfrc522.Transport interface over SPI. Every
// register access is a single two-byte full-duplex exchange.
type Transport struct {
	conn     spi.Conn
	port     spi.PortCloser
	portName string
	mu       sync.Mutex
}

// New opens portName (for example "/dev/spidev0.0" or "SPI0.0") at DefaultSpeed.
func New(portName string) (*Transport, error) {
	return NewWithSpeed(portName, DefaultSpeed)
}

// NewWithSpeed opens portName in mode 0 with 8-bit words at speed.
func NewWithSpeed(portName string, speed physic.Frequency) (*Transport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI port %s: %w", portName, err)
	}

	if speed <= 0 {
		speed = DefaultSpeed
	}
	conn, err := port.Connect(speed, spi.Mode0, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to configure SPI port %s: %w", portName, err)
	}

	return &Transport{conn: conn, port: port, portName: portName}, nil
}

// NewWithConn wraps an already configured connection. Close leaves conn alone.
func NewWithConn(conn spi.Conn, portName string) *Transport {
	return &Transport{conn: conn, portName: portName}
}

// WriteRegister sends [address, value].
func (t *Transport) WriteRegister(reg mfrc522.Register, value byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		return mfrc522.NewClosedError("WriteRegister", t.portName)
	}

	w := []byte{mfrc522.SPIAddress(reg, false), value}
	if err := t.conn.Tx(w, nil); err != nil {
		return mfrc522.NewTransportError("WriteRegister", t.portName,
			fmt.Errorf("%w: %w", mfrc522.ErrTransportWrite, err), mfrc522.ErrorTypeTransient)
	}
	return nil
}

// ReadRegister sends [address|0x80, 0x00] and returns the second byte clocked in.
func (t *Transport) ReadRegister(reg mfrc522.Register) (byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		return 0, mfrc522.NewClosedError("ReadRegister", t.portName)
	}

	w := []byte{mfrc522.SPIAddress(reg, true), 0x00}
	r := make([]byte, len(w))
	if err := t.conn.Tx(w, r); err != nil {
		return 0, mfrc522.NewTransportError("ReadRegister", t.portName,
			fmt.Errorf("%w: %w", mfrc522.ErrTransportRead, err), mfrc522.ErrorTypeTransient)
	}
	return r[1], nil
}

// Close releases the SPI port
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.conn = nil
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	if err != nil {
		return fmt.Errorf("failed to close SPI port %s: %w", t.portName, err)
	}
	return nil
}

// IsConnected returns true if the port is open
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}

// Type returns the transport type
func (*Transport) Type() mfrc522.TransportType {
	return mfrc522.TransportSPI
}

var _ mfrc522.Transport = (*Transport)(nil)
