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

// Package spi detects MFRC522 chips on SPI ports
package spi

import (
	"context"
	"fmt"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/detection"
	"github.com/ZaparooProject/go-mfrc522/transport/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// port is one SPI port known to periph.
type port struct {
	Name    string
	Aliases []string
}

type (
	listFunc  func() ([]port, error)
	probeFunc func(ctx context.Context, name string) (byte, error)
)

// detector implements the Detector interface for SPI ports
type detector struct {
	list       listFunc
	probe      probeFunc
	accessible func(path string) bool
}

// New creates a new SPI detector
func New() detection.Detector {
	return &detector{list: listPorts, probe: probeVersion, accessible: canOpen}
}

func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type
func (*detector) Transport() string {
	return string(mfrc522.TransportSPI)
}

// Detect lists SPI ports. SPI has no presence signal, so a port is Medium
// when the process may open it and Low otherwise until a probe answers.
func (d *detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	ports, err := d.list()
	if err != nil {
		return nil, err
	}

	var devices []detection.DeviceInfo
	for _, p := range ports {
		if ctx.Err() != nil {
			return devices, detection.ErrDetectionTimeout
		}
		if detection.IsPathIgnored(p.Name, opts.IgnorePaths) {
			continue
		}

		dev := detection.DeviceInfo{
			Transport:  string(mfrc522.TransportSPI),
			Path:       p.Name,
			Name:       fmt.Sprintf("SPI port %s", p.Name),
			Confidence: detection.Low,
			Metadata:   make(map[string]string),
		}
		if len(p.Aliases) > 0 {
			dev.Metadata["alias"] = p.Aliases[0]
		}
		if d.accessible(p.Name) {
			dev.Confidence = detection.Medium
		} else {
			dev.Metadata["access"] = "denied"
		}

		if opts.Mode == detection.Safe {
			version, probeErr := d.probe(ctx, p.Name)
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

func listPorts() ([]port, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}
	refs := spireg.All()
	ports := make([]port, 0, len(refs))
	for _, ref := range refs {
		ports = append(ports, port{Name: ref.Name, Aliases: ref.Aliases})
	}
	return ports, nil
}

func probeVersion(ctx context.Context, name string) (byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	tr, err := spi.New(name)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tr.Close() }()
	return tr.ReadRegister(mfrc522.RegVersion)
}
