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
	"context"
	"errors"
	"fmt"
)

// Transport gives register level access to an MFRC522.
//
// Each call maps to exactly one bus exchange. Implementations must return an
// error rather than a filler value when the bus is not available.
type Transport interface {
	// WriteRegister writes value to reg
	WriteRegister(reg Register, value byte) error

	// ReadRegister returns the current value of reg
	ReadRegister(reg Register) (byte, error)

	// Close releases the bus
	Close() error

	// IsConnected returns true if the bus is open
	IsConnected() bool

	// Type returns the transport type
	Type() TransportType
}

// TransportType identifies the host interface the chip is wired through.
type TransportType string

const (
	// TransportSPI represents the SPI host interface.
	TransportSPI TransportType = "spi"
	// TransportI2C represents the I2C host interface.
	TransportI2C TransportType = "i2c"
	// TransportUART represents the UART host interface.
	TransportUART TransportType = "uart"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)

// SetBits sets mask in reg with a read-modify-write. It is not atomic.
func SetBits(t Transport, reg Register, mask byte) error {
	value, err := t.ReadRegister(reg)
	if err != nil {
		return fmt.Errorf("set bits 0x%02X in register 0x%02X: %w", mask, byte(reg), err)
	}
	if err := t.WriteRegister(reg, value|mask); err != nil {
		return fmt.Errorf("set bits 0x%02X in register 0x%02X: %w", mask, byte(reg), err)
	}
	return nil
}

// ClearBits clears mask in reg with a read-modify-write. It is not atomic.
func ClearBits(t Transport, reg Register, mask byte) error {
	value, err := t.ReadRegister(reg)
	if err != nil {
		return fmt.Errorf("clear bits 0x%02X in register 0x%02X: %w", mask, byte(reg), err)
	}
	if err := t.WriteRegister(reg, value&^mask); err != nil {
		return fmt.Errorf("clear bits 0x%02X in register 0x%02X: %w", mask, byte(reg), err)
	}
	return nil
}

// TransportWithRetry retries transient register access failures.
type TransportWithRetry struct {
	transport Transport
	config    *RetryConfig
}

// NewTransportWithRetry wraps transport. A nil config uses DefaultRetryConfig.
func NewTransportWithRetry(transport Transport, config *RetryConfig) *TransportWithRetry {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &TransportWithRetry{
		transport: transport,
		config:    config,
	}
}

// WriteRegister writes reg, retrying transient failures.
func (t *TransportWithRetry) WriteRegister(reg Register, value byte) error {
	return RetryWithConfig(context.Background(), t.config, func() error {
		if err := t.transport.WriteRegister(reg, value); err != nil {
			return t.wrap("WriteRegister", err)
		}
		return nil
	})
}

// ReadRegister reads reg, retrying transient failures.
func (t *TransportWithRetry) ReadRegister(reg Register) (byte, error) {
	var result byte
	err := RetryWithConfig(context.Background(), t.config, func() error {
		v, err := t.transport.ReadRegister(reg)
		if err != nil {
			return t.wrap("ReadRegister", err)
		}
		result = v
		return nil
	})
	return result, err
}

func (*TransportWithRetry) wrap(op string, err error) error {
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{
		Op:        op,
		Err:       err,
		Type:      GetErrorType(err),
		Retryable: IsRetryable(err),
	}
}

// Close closes the underlying transport.
func (t *TransportWithRetry) Close() error {
	if err := t.transport.Close(); err != nil {
		return fmt.Errorf("failed to close underlying transport: %w", err)
	}
	return nil
}

// IsConnected reports the underlying transport state.
func (t *TransportWithRetry) IsConnected() bool {
	return t.transport.IsConnected()
}

// Type returns the underlying transport type.
func (t *TransportWithRetry) Type() TransportType {
	return t.transport.Type()
}

// SetRetryConfig replaces the retry configuration.
func (t *TransportWithRetry) SetRetryConfig(config *RetryConfig) {
	t.config = config
}
