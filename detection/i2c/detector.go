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

// Package i2c detects MFRC522 chips on I2C buses
package i2c

import (
	"context"
	"fmt"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/detection"
	"github.com/ZaparooProject/go-mfrc522/transport/i2c"
)

const (
	// firstAddress and lastAddress bound the addresses selectable with the
	// chip's ADR pins when EA is low.
	firstAddress = i2c.DefaultAddress
	lastAddress  = i2c.DefaultAddress + 7
)

// busScanner is the platform specific part of detection.
type busScanner interface {
	Buses() ([]string, error)
	Scan(busPath string, first, last uint16) []uint16
	ReadVersion(ctx context.Context, busPath string, addr uint16) (byte, error)
}

// detector implements the Detector interface for I2C devices
type detector struct {
	scanner busScanner
}

// New creates a new I2C detector
func New() detection.Detector {
	return &detector{scanner: newPlatformScanner()}
}

// init registers the detector on package import
func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type
func (*detector) Transport() string {
	return string(mfrc522.TransportI2C)
}

// Detect searches for MFRC522 devices on I2C buses
func (d *detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	if d.scanner == nil {
		return nil, detection.ErrUnsupportedPlatform
	}

	buses, err := d.scanner.Buses()
	if err != nil {
		return nil, err
	}

	var devices []detection.DeviceInfo
	for _, bus := range buses {
		select {
		case <-ctx.Done():
			return devices, detection.ErrDetectionTimeout
		default:
		}

		for _, addr := range d.scanner.Scan(bus, firstAddress, lastAddress) {
			dev, ok := d.createDeviceInfo(ctx, bus, addr, opts)
			if ok {
				devices = append(devices, dev)
			}
		}
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

// createDeviceInfo describes the chip answering at addr on busPath
func (d *detector) createDeviceInfo(
	ctx context.Context, busPath string, addr uint16, opts *detection.Options,
) (detection.DeviceInfo, bool) {
	devicePath := fmt.Sprintf("%s:0x%02X", busPath, addr)
	if detection.IsPathIgnored(devicePath, opts.IgnorePaths) {
		return detection.DeviceInfo{}, false
	}

	dev := detection.DeviceInfo{
		Transport:  string(mfrc522.TransportI2C),
		Path:       devicePath,
		Name:       fmt.Sprintf("I2C device at %s address 0x%02X", busPath, addr),
		Confidence: detection.Low,
		Metadata: map[string]string{
			"bus":     busPath,
			"address": fmt.Sprintf("0x%02X", addr),
		},
	}
	if addr == i2c.DefaultAddress {
		dev.Confidence = detection.Medium
	}

	if opts.Mode == detection.Passive {
		return dev, true
	}

	version, err := d.scanner.ReadVersion(ctx, busPath, addr)
	return dev, detection.ApplyProbe(&dev, version, err)
}
