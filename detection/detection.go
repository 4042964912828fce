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

// Package detection enumerates buses an MFRC522 may be attached to.
//
// Bus specific detectors live in subpackages and register themselves on
// import:
//
//	import (
//		"github.com/ZaparooProject/go-mfrc522/detection"
//		_ "github.com/ZaparooProject/go-mfrc522/detection/spi"
//	)
//
//	devices, err := detection.DetectAll(ctx, detection.DefaultOptions())
package detection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
)

var (
	// ErrNoDevicesFound is returned when no candidate bus was found.
	ErrNoDevicesFound = errors.New("no MFRC522 devices found")
	// ErrDetectionTimeout is returned when detection ran out of time.
	ErrDetectionTimeout = errors.New("detection timeout")
	// ErrUnsupportedPlatform is returned by detectors that cannot run here.
	ErrUnsupportedPlatform = errors.New("detection not supported on this platform")
)

// Mode controls how intrusive detection is.
type Mode int

const (
	// Passive only lists device nodes and never talks to them.
	Passive Mode = iota
	// Safe reads the version register of each candidate.
	Safe
)

// Confidence ranks a candidate.
type Confidence int

const (
	Low Confidence = iota
	Medium
	High
)

func (c Confidence) String() string {
	switch c {
	case High:
		return "high"
	case Medium:
		return "medium"
	default:
		return "low"
	}
}

// DeviceInfo describes one candidate.
type DeviceInfo struct {
	Metadata   map[string]string
	Transport  string
	Path       string
	Name       string
	Confidence Confidence
}

// Options configures detection.
type Options struct {
	IgnorePaths []string
	Blocklist   []string
	Timeout     time.Duration
	Mode        Mode
}

// DefaultOptions returns Passive detection with a 5 second budget.
func DefaultOptions() *Options {
	return &Options{
		Mode:      Passive,
		Timeout:   5 * time.Second,
		Blocklist: DefaultBlocklist(),
	}
}

// Detector finds candidates on one kind of bus.
type Detector interface {
	Transport() string
	Detect(ctx context.Context, opts *Options) ([]DeviceInfo, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Detector)
)

// RegisterDetector adds d, replacing any detector for the same transport.
func RegisterDetector(d Detector) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[d.Transport()] = d
}

// Detectors returns the registered detectors ordered by transport name.
func Detectors() []Detector {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]Detector, 0, len(registry))
	for _, d := range registry {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Transport() < out[j].Transport() })
	return out
}

// DetectAll runs every registered detector and returns candidates ordered by
// confidence, best first. Detector errors are skipped unless nothing is found.
func DetectAll(ctx context.Context, opts *Options) ([]DeviceInfo, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var devices []DeviceInfo
	var errs []error
	for _, d := range Detectors() {
		if ctx.Err() != nil {
			errs = append(errs, ErrDetectionTimeout)
			break
		}
		found, err := d.Detect(ctx, opts)
		if err != nil && !errors.Is(err, ErrNoDevicesFound) {
			errs = append(errs, err)
		}
		for _, dev := range found {
			if IsPathIgnored(dev.Path, opts.IgnorePaths) {
				continue
			}
			devices = append(devices, dev)
		}
	}

	if len(devices) == 0 {
		return nil, errors.Join(append([]error{ErrNoDevicesFound}, errs...)...)
	}

	sort.SliceStable(devices, func(i, j int) bool {
		return devices[i].Confidence > devices[j].Confidence
	})
	return devices, nil
}

// ApplyProbe records the result of a version register read on dev and
// reports whether dev is still worth listing. A chip that answers raises the
// candidate to High; a silent Low candidate is dropped.
func ApplyProbe(dev *DeviceInfo, version byte, err error) bool {
	if dev.Metadata == nil {
		dev.Metadata = make(map[string]string)
	}
	if err == nil && version != 0x00 && version != 0xFF {
		dev.Confidence = High
		dev.Metadata["version"] = fmt.Sprintf("0x%02X", version)
		dev.Metadata["chip"] = mfrc522.VersionName(version)
		return true
	}
	if err != nil {
		dev.Metadata["probe_error"] = err.Error()
	}
	return dev.Confidence > Low
}
