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

// Package uart detects MFRC522 modules behind serial ports
package uart

import (
	"context"
	"fmt"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/detection"
	"github.com/ZaparooProject/go-mfrc522/transport/uart"
	"go.bug.st/serial/enumerator"
)

type (
	listFunc  func() ([]*enumerator.PortDetails, error)
	probeFunc func(ctx context.Context, path string) (byte, error)
)

// detector implements the Detector interface for serial ports
type detector struct {
	list  listFunc
	probe probeFunc
}

// New creates a new serial detector
func New() detection.Detector {
	return &detector{list: enumerator.GetDetailedPortsList, probe: probeVersion}
}

func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type
func (*detector) Transport() string {
	return string(mfrc522.TransportUART)
}

// Detect lists serial ports, ranking known USB-UART bridges above the rest.
func (d *detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	ports, err := d.list()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}

	devices := make([]detection.DeviceInfo, 0, len(ports))
	for _, port := range ports {
		if ctx.Err() != nil {
			return devices, detection.ErrDetectionTimeout
		}

		dev, ok := describe(port, opts)
		if !ok {
			continue
		}

		if opts.Mode == detection.Safe {
			version, probeErr := d.probe(ctx, port.Name)
			if !detection.ApplyProbe(&dev, version, probeErr) {
				continue
			}
		}
		devices = append(devices, dev)
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

func describe(port *enumerator.PortDetails, opts *detection.Options) (detection.DeviceInfo, bool) {
	if detection.IsPathIgnored(port.Name, opts.IgnorePaths) {
		return detection.DeviceInfo{}, false
	}

	dev := detection.DeviceInfo{
		Transport:  string(mfrc522.TransportUART),
		Path:       port.Name,
		Name:       port.Name,
		Confidence: detection.Low,
		Metadata:   make(map[string]string),
	}
	if !port.IsUSB {
		return dev, true
	}

	vidpid := detection.FormatVIDPID(port.VID, port.PID)
	if detection.IsBlocked(vidpid, opts.Blocklist) {
		return detection.DeviceInfo{}, false
	}
	dev.Metadata["vidpid"] = vidpid
	if port.SerialNumber != "" {
		dev.Metadata["serial"] = port.SerialNumber
	}
	if port.Product != "" {
		dev.Name = port.Product
	}
	if bridge, ok := detection.KnownBridges[vidpid]; ok {
		dev.Confidence = detection.Medium
		dev.Metadata["bridge"] = bridge
	}
	return dev, true
}

func probeVersion(ctx context.Context, path string) (byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	tr, err := uart.New(path, uart.DefaultBaudRate)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tr.Close() }()
	return tr.ReadRegister(mfrc522.RegVersion)
}
