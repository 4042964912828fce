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
	"time"
)

// ResetPin drives the chip's NRSTPD line.
type ResetPin interface {
	Out(high bool) error
}

// DeviceConfig contains configuration options for the Device
type DeviceConfig struct {
	// RetryConfig configures retry behavior for register access; nil disables retries
	RetryConfig *RetryConfig
	// CRCTimeout bounds the wait for the CRC coprocessor
	CRCTimeout time.Duration
	// TransceiveTimeout bounds the wait for a card answer or the chip timer
	TransceiveTimeout time.Duration
	// ResetPulse is how long the reset line is held low, and then high
	ResetPulse time.Duration
	// SettleTime is the wait after the soft reset command
	SettleTime time.Duration
}

// DefaultDeviceConfig returns default device configuration.
//
// The timeouts are wall-clock deadlines, so they hold regardless of the bus
// clock. The chip's own timer (TReload 30 at 40 kHz) ends a transceive with no
// card after about 0.75 ms, well inside TransceiveTimeout.
func DefaultDeviceConfig() *DeviceConfig {
	return &DeviceConfig{
		CRCTimeout:        25 * time.Millisecond,
		TransceiveTimeout: 50 * time.Millisecond,
		ResetPulse:        10 * time.Millisecond,
		SettleTime:        50 * time.Millisecond,
	}
}

// Device represents an MFRC522 reader chip.
//
// Thread Safety: Device is NOT thread-safe. The acquisition loop owns it and
// is the only caller; register access is never locked.
type Device struct {
	transport   Transport
	resetPin    ResetPin
	config      *DeviceConfig
	now         func() time.Time
	initErr     error
	version     byte
	initialized bool
}

// New creates a new MFRC522 device with the given transport
func New(transport Transport, opts ...Option) (*Device, error) {
	if transport == nil {
		return nil, fmt.Errorf("%w: nil transport", ErrInvalidParameter)
	}

	device := &Device{
		transport: transport,
		config:    DefaultDeviceConfig(),
		now:       time.Now,
	}

	for _, opt := range opts {
		if err := opt(device); err != nil {
			return nil, err
		}
	}

	return device, nil
}

// Transport returns the underlying transport
func (d *Device) Transport() Transport {
	return d.transport
}

// Config returns a copy of the device configuration.
func (d *Device) Config() DeviceConfig {
	return *d.config
}

// Init resets and configures the chip.
func (d *Device) Init() error {
	return d.InitContext(context.Background())
}

// InitContext resets the chip, programs timer, modulation and framing
// registers, enables the antenna and checks the version register.
//
// A failed initialization is permanent for this Device: later calls return
// the same error and ReadUID reports ErrNotInitialized.
func (d *Device) InitContext(ctx context.Context) error {
	if d.initialized {
		return nil
	}
	if d.initErr != nil {
		return d.initErr
	}

	if err := d.initialize(ctx); err != nil {
		d.initErr = fmt.Errorf("mfrc522 init failed: %w", err)
		return d.initErr
	}

	d.initialized = true
	debugf("chip ready, version 0x%02X over %s", d.version, d.transport.Type())
	return nil
}

func (d *Device) initialize(ctx context.Context) error {
	if !d.transport.IsConnected() {
		return NewClosedError("init", string(d.transport.Type()))
	}

	if err := d.reset(ctx); err != nil {
		return err
	}

	if err := d.configure(); err != nil {
		return err
	}

	version, err := d.transport.ReadRegister(RegVersion)
	if err != nil {
		return fmt.Errorf("read version register: %w", err)
	}
	d.version = version

	if version == 0x00 || version == 0xFF {
		return fmt.Errorf("%w: 0x%02X, check wiring and power", ErrInvalidVersion, version)
	}
	return nil
}

// reset pulses the hardware reset line and issues a soft reset.
func (d *Device) reset(ctx context.Context) error {
	if d.resetPin != nil {
		if err := d.resetPin.Out(false); err != nil {
			return fmt.Errorf("drive reset line low: %w", err)
		}
		if err := sleepContext(ctx, d.config.ResetPulse); err != nil {
			return err
		}
		if err := d.resetPin.Out(true); err != nil {
			return fmt.Errorf("drive reset line high: %w", err)
		}
		if err := sleepContext(ctx, d.config.ResetPulse); err != nil {
			return err
		}
	}

	if err := d.transport.WriteRegister(RegCommand, byte(CmdSoftReset)); err != nil {
		return fmt.Errorf("soft reset: %w", err)
	}
	return sleepContext(ctx, d.config.SettleTime)
}

// configure programs the timer so a missing card ends a transceive through
// TimerIRq, forces 100% ASK, presets the CRC to 0x6363 and turns the antenna on.
func (d *Device) configure() error {
	writes := []struct {
		reg   Register
		value byte
	}{
		{RegTMode, tModeAuto},
		{RegTPrescaler, tPrescalerValue},
		{RegTReloadL, tReloadLow},
		{RegTReloadH, tReloadHigh},
		{RegTxASK, txASK100},
		{RegMode, modeCRCPreset},
	}
	for _, w := range writes {
		if err := d.transport.WriteRegister(w.reg, w.value); err != nil {
			return fmt.Errorf("configure register 0x%02X: %w", byte(w.reg), err)
		}
	}
	return d.AntennaOn()
}

// AntennaOn enables both antenna drivers and sets the receiver gain.
func (d *Device) AntennaOn() error {
	value, err := d.transport.ReadRegister(RegTxControl)
	if err != nil {
		return fmt.Errorf("read tx control: %w", err)
	}
	if value&antennaBits != antennaBits {
		if err := SetBits(d.transport, RegTxControl, antennaBits); err != nil {
			return fmt.Errorf("antenna on: %w", err)
		}
	}
	if err := d.transport.WriteRegister(RegRFCfg, rfCfgGain); err != nil {
		return fmt.Errorf("set rf gain: %w", err)
	}
	return nil
}

// AntennaOff disables both antenna drivers.
func (d *Device) AntennaOff() error {
	if err := ClearBits(d.transport, RegTxControl, antennaBits); err != nil {
		return fmt.Errorf("antenna off: %w", err)
	}
	return nil
}

// Version returns the version register value read during Init.
func (d *Device) Version() byte {
	return d.version
}

// Initialized reports whether Init completed successfully.
func (d *Device) Initialized() bool {
	return d.initialized
}

// InitError returns the sticky initialization error, if any.
func (d *Device) InitError() error {
	return d.initErr
}

// ReadUID runs one acquisition attempt: request, anticollision and halt.
//
// ErrNoCard means nothing answered; ErrChecksumMismatch means a card
// answered with a corrupted serial. Both are ordinary outcomes for a polling
// caller.
func (d *Device) ReadUID() (UID, error) {
	if !d.initialized {
		if d.initErr != nil {
			return UID{}, fmt.Errorf("%w: %w", ErrNotInitialized, d.initErr)
		}
		return UID{}, ErrNotInitialized
	}

	if _, err := d.Request(); err != nil {
		return UID{}, &StepError{Step: StepRequest, Err: err}
	}

	uid, err := d.Anticollision()
	if err != nil {
		return UID{}, &StepError{Step: StepAnticollision, Err: err}
	}

	if err := d.Halt(); err != nil {
		debugf("halt after %s ignored: %v", uid, err)
	}
	return uid, nil
}

// Close closes the device connection
func (d *Device) Close() error {
	if d.transport != nil {
		if err := d.transport.Close(); err != nil {
			return fmt.Errorf("failed to close transport: %w", err)
		}
	}
	return nil
}

// Step names the acquisition stage a failure happened in.
type Step string

const (
	StepRequest       Step = "request"
	StepAnticollision Step = "anticollision"
)

// StepError tags an acquisition failure with its stage.
type StepError struct {
	Err  error
	Step Step
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// FailedStep returns the stage err came from, or "" if it carries none.
func FailedStep(err error) Step {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step
	}
	return ""
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled during reset: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
