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

// Option configures a Device.
type Option func(*Device) error

// WithResetPin sets the line pulsed low before the soft reset.
func WithResetPin(pin ResetPin) Option {
	return func(d *Device) error {
		d.resetPin = pin
		return nil
	}
}

// WithCRCTimeout sets how long CalculateCRC waits for the coprocessor.
func WithCRCTimeout(timeout time.Duration) Option {
	return func(d *Device) error {
		if timeout <= 0 {
			return fmt.Errorf("%w: crc timeout %v", ErrInvalidParameter, timeout)
		}
		d.config.CRCTimeout = timeout
		return nil
	}
}

// WithTransceiveTimeout sets how long Transceive waits for a receive or timer interrupt.
func WithTransceiveTimeout(timeout time.Duration) Option {
	return func(d *Device) error {
		if timeout <= 0 {
			return fmt.Errorf("%w: transceive timeout %v", ErrInvalidParameter, timeout)
		}
		d.config.TransceiveTimeout = timeout
		return nil
	}
}

// WithSettleTime sets the delays used around reset. Zero disables them.
func WithSettleTime(resetPulse, settle time.Duration) Option {
	return func(d *Device) error {
		if resetPulse < 0 || settle < 0 {
			return fmt.Errorf("%w: negative settle time", ErrInvalidParameter)
		}
		d.config.ResetPulse = resetPulse
		d.config.SettleTime = settle
		return nil
	}
}

// WithRetryConfig wraps the transport so transient register failures are retried.
func WithRetryConfig(config *RetryConfig) Option {
	return func(d *Device) error {
		d.config.RetryConfig = config
		if tr, ok := d.transport.(*TransportWithRetry); ok {
			tr.SetRetryConfig(config)
			return nil
		}
		d.transport = NewTransportWithRetry(d.transport, config)
		return nil
	}
}

// WithClock replaces the monotonic clock used for deadlines.
func WithClock(now func() time.Time) Option {
	return func(d *Device) error {
		if now == nil {
			return fmt.Errorf("%w: nil clock", ErrInvalidParameter)
		}
		d.now = now
		return nil
	}
}
