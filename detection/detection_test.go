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

package detection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDetector struct {
	err       error
	transport string
	devices   []DeviceInfo
	calls     int
}

func (f *fakeDetector) Transport() string { return f.transport }

func (f *fakeDetector) Detect(context.Context, *Options) ([]DeviceInfo, error) {
	f.calls++
	return f.devices, f.err
}

func resetRegistry(t *testing.T) {
	t.Helper()
	registryMu.Lock()
	saved := registry
	registry = make(map[string]Detector)
	registryMu.Unlock()
	t.Cleanup(func() {
		registryMu.Lock()
		registry = saved
		registryMu.Unlock()
	})
}

//nolint:paralleltest // mutates the detector registry
func TestDetectAll_OrdersByConfidence(t *testing.T) {
	resetRegistry(t)

	RegisterDetector(&fakeDetector{transport: "uart", devices: []DeviceInfo{
		{Transport: "uart", Path: "/dev/ttyUSB0", Confidence: Low},
		{Transport: "uart", Path: "/dev/ttyUSB1", Confidence: Medium},
	}})
	RegisterDetector(&fakeDetector{transport: "spi", devices: []DeviceInfo{
		{Transport: "spi", Path: "/dev/spidev0.0", Confidence: High},
	}})

	devices, err := DetectAll(context.Background(), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, devices, 3)
	assert.Equal(t, "/dev/spidev0.0", devices[0].Path)
	assert.Equal(t, "/dev/ttyUSB1", devices[1].Path)
	assert.Equal(t, "/dev/ttyUSB0", devices[2].Path)
}

//nolint:paralleltest // mutates the detector registry
func TestDetectAll_IgnoresPathsAndErrors(t *testing.T) {
	resetRegistry(t)

	RegisterDetector(&fakeDetector{transport: "i2c", err: ErrUnsupportedPlatform})
	RegisterDetector(&fakeDetector{transport: "uart", devices: []DeviceInfo{
		{Transport: "uart", Path: "/dev/ttyUSB0"},
		{Transport: "uart", Path: "/dev/ttyAMA0"},
	}})

	opts := DefaultOptions()
	opts.IgnorePaths = []string{"/dev/ttyUSB0"}
	devices, err := DetectAll(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "/dev/ttyAMA0", devices[0].Path)
}

//nolint:paralleltest // mutates the detector registry
func TestDetectAll_NothingFound(t *testing.T) {
	resetRegistry(t)

	boom := errors.New("permission denied")
	RegisterDetector(&fakeDetector{transport: "spi", err: boom})
	RegisterDetector(&fakeDetector{transport: "uart", err: ErrNoDevicesFound})

	_, err := DetectAll(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoDevicesFound)
	require.ErrorIs(t, err, boom)
}

//nolint:paralleltest // mutates the detector registry
func TestDetectAll_Timeout(t *testing.T) {
	resetRegistry(t)

	fake := &fakeDetector{transport: "spi"}
	RegisterDetector(fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := DetectAll(ctx, &Options{Timeout: time.Second})
	require.ErrorIs(t, err, ErrDetectionTimeout)
	assert.Zero(t, fake.calls)
}

//nolint:paralleltest // mutates the detector registry
func TestRegisterDetector_Replaces(t *testing.T) {
	resetRegistry(t)

	RegisterDetector(&fakeDetector{transport: "spi"})
	second := &fakeDetector{transport: "spi"}
	RegisterDetector(second)

	detectors := Detectors()
	require.Len(t, detectors, 1)
	assert.Same(t, second, detectors[0])
}

func TestBlocklist(t *testing.T) {
	t.Parallel()

	assert.True(t, IsBlocked("2341:0043", DefaultBlocklist()))
	assert.True(t, IsBlocked(" 1915:520f ", DefaultBlocklist()))
	assert.False(t, IsBlocked("1A86:7523", DefaultBlocklist()))
	assert.False(t, IsBlocked("not-a-vidpid", DefaultBlocklist()))
	assert.True(t, IsBlocked("403:6001", []string{"0403:6001"}))
	assert.Contains(t, KnownBridges, "1A86:7523")
}

func TestFormatVIDPID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		vid, pid string
		want     string
	}{
		{vid: "1a86", pid: "7523", want: "1A86:7523"},
		{vid: "403", pid: "6001", want: "0403:6001"},
		{vid: "0x10c4", pid: "0xEA60", want: "10C4:EA60"},
		{vid: " 67b ", pid: "2303", want: "067B:2303"},
	}

	for _, tt := range tests {
		got := FormatVIDPID(tt.vid, tt.pid)
		assert.Equal(t, tt.want, got)
		_, known := KnownBridges[got]
		assert.True(t, known, got)
	}
}

func TestConfidenceString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "high", High.String())
	assert.Equal(t, "medium", Medium.String())
	assert.Equal(t, "low", Low.String())
}

func TestApplyProbe(t *testing.T) {
	t.Parallel()

	dev := DeviceInfo{Confidence: Low}
	assert.True(t, ApplyProbe(&dev, 0x92, nil))
	assert.Equal(t, High, dev.Confidence)
	assert.Equal(t, "MFRC522 v2.0", dev.Metadata["chip"])

	silent := DeviceInfo{Confidence: Low}
	assert.False(t, ApplyProbe(&silent, 0xFF, nil))

	bridge := DeviceInfo{Confidence: Medium}
	assert.True(t, ApplyProbe(&bridge, 0, errors.New("timeout")))
	assert.Equal(t, Medium, bridge.Confidence)
	assert.Equal(t, "timeout", bridge.Metadata["probe_error"])
}
