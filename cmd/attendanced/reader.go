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

package main

import (
	"context"
	"errors"
	"fmt"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/config"
	"github.com/ZaparooProject/go-mfrc522/detection"
	// Import all detectors to register them
	_ "github.com/ZaparooProject/go-mfrc522/detection/i2c"
	_ "github.com/ZaparooProject/go-mfrc522/detection/spi"
	_ "github.com/ZaparooProject/go-mfrc522/detection/uart"
	"github.com/ZaparooProject/go-mfrc522/pins"
	"github.com/ZaparooProject/go-mfrc522/transport/i2c"
	"github.com/ZaparooProject/go-mfrc522/transport/spi"
	"github.com/ZaparooProject/go-mfrc522/transport/uart"
	"periph.io/x/conn/v3/physic"
)

var errNoReader = errors.New("no reader port configured and none detected")

// newTransport opens the bus named by rc.
func newTransport(rc config.ReaderConfig) (mfrc522.Transport, error) {
	switch mfrc522.TransportType(rc.Bus) {
	case mfrc522.TransportSPI:
		transport, err := spi.NewWithSpeed(rc.Port, physic.Frequency(rc.SpeedHz)*physic.Hertz)
		if err != nil {
			return nil, fmt.Errorf("failed to create SPI transport: %w", err)
		}
		return transport, nil
	case mfrc522.TransportI2C:
		transport, err := i2c.NewWithAddress(rc.Port, rc.Address)
		if err != nil {
			return nil, fmt.Errorf("failed to create I2C transport: %w", err)
		}
		return transport, nil
	case mfrc522.TransportUART:
		transport, err := uart.New(rc.Port, rc.BaudRate)
		if err != nil {
			return nil, fmt.Errorf("failed to create UART transport: %w", err)
		}
		return transport, nil
	default:
		return nil, fmt.Errorf("unsupported transport type: %s", rc.Bus)
	}
}

// pickDevice returns the best candidate on bus. Candidates arrive ordered by
// confidence.
func pickDevice(devices []detection.DeviceInfo, bus string) (detection.DeviceInfo, bool) {
	for _, dev := range devices {
		if dev.Transport == bus {
			return dev, true
		}
	}
	return detection.DeviceInfo{}, false
}

// resolvePort fills rc.Port from detection when it is empty. I2C candidates
// carry the address in their path, so the bus is taken from metadata.
func resolvePort(ctx context.Context, rc config.ReaderConfig, logger mfrc522.Logger) (config.ReaderConfig, error) {
	if rc.Port != "" {
		return rc, nil
	}

	devices, err := detection.DetectAll(ctx, detection.DefaultOptions())
	if err != nil {
		return rc, fmt.Errorf("%w: %w", errNoReader, err)
	}
	dev, ok := pickDevice(devices, rc.Bus)
	if !ok {
		return rc, fmt.Errorf("%w: no %s candidate", errNoReader, rc.Bus)
	}

	rc.Port = dev.Path
	if bus, ok := dev.Metadata["bus"]; ok {
		rc.Port = bus
	}
	logger.Infof("using detected %s reader %s (%s confidence)", dev.Transport, dev.Path, dev.Confidence)
	return rc, nil
}

// reader bundles an initialized device with what must be released with it.
type reader struct {
	device *mfrc522.Device
	reset  pins.Pin
}

func (r *reader) Close() error {
	err := r.device.Close()
	if r.reset != nil {
		err = errors.Join(err, r.reset.Close())
	}
	return err
}

// openReader opens the configured bus and reset line and initializes the chip.
// Failing to open either is fatal; a chip init failure is left on the device.
func openReader(ctx context.Context, cfg config.Config, logger mfrc522.Logger) (*reader, error) {
	rc, err := resolvePort(ctx, cfg.Reader, logger)
	if err != nil {
		return nil, err
	}

	transport, err := newTransport(rc)
	if err != nil {
		return nil, err
	}

	reset, err := pins.Open(rc.Reset)
	if err != nil {
		_ = transport.Close()
		return nil, fmt.Errorf("open reset line: %w", err)
	}

	opts := cfg.DeviceOptions()
	if reset != nil {
		opts = append(opts, mfrc522.WithResetPin(reset))
	}
	r, err := initReader(ctx, transport, opts...)
	if err != nil {
		if reset != nil {
			_ = reset.Close()
		}
		return nil, err
	}
	r.reset = reset
	return r, nil
}

// initReader creates a device on transport and initializes it. A chip that
// fails to initialize is still returned, open, with InitError set: the loop
// keeps polling it and every cycle fails. Only a bad option set or a
// cancelled context closes the transport and returns an error.
func initReader(ctx context.Context, transport mfrc522.Transport, opts ...mfrc522.Option) (*reader, error) {
	device, err := mfrc522.New(transport, opts...)
	if err != nil {
		_ = transport.Close()
		return nil, fmt.Errorf("failed to create device: %w", err)
	}
	if err := device.InitContext(ctx); err != nil && ctx.Err() != nil {
		_ = device.Close()
		return nil, fmt.Errorf("failed to initialize reader: %w", err)
	}
	return &reader{device: device}, nil
}
