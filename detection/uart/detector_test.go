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

package uart

import (
	"context"
	"errors"
	"testing"

	"github.com/ZaparooProject/go-mfrc522/detection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"
)

func fixedPorts(ports ...*enumerator.PortDetails) listFunc {
	return func() ([]*enumerator.PortDetails, error) { return ports, nil }
}

func TestDetect_Passive(t *testing.T) {
	t.Parallel()

	d := &detector{list: fixedPorts(
		&enumerator.PortDetails{Name: "/dev/ttyAMA0"},
		&enumerator.PortDetails{Name: "/dev/ttyUSB0", IsUSB: true, VID: "1a86", PID: "7523", Product: "USB Serial"},
		&enumerator.PortDetails{Name: "/dev/ttyACM0", IsUSB: true, VID: "2341", PID: "0043"},
	)}

	devices, err := d.Detect(context.Background(), detection.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, devices, 2)

	assert.Equal(t, detection.Low, devices[0].Confidence)
	assert.Equal(t, "/dev/ttyUSB0", devices[1].Path)
	assert.Equal(t, "USB Serial", devices[1].Name)
	assert.Equal(t, detection.Medium, devices[1].Confidence)
	assert.Equal(t, "CH340", devices[1].Metadata["bridge"])
	assert.Equal(t, "1A86:7523", devices[1].Metadata["vidpid"])
}

func TestDetect_ShortVendorID(t *testing.T) {
	t.Parallel()

	d := &detector{list: fixedPorts(
		&enumerator.PortDetails{Name: "/dev/ttyUSB0", IsUSB: true, VID: "403", PID: "6001"},
		&enumerator.PortDetails{Name: "/dev/ttyACM0", IsUSB: true, VID: "2341", PID: "43"},
	)}

	devices, err := d.Detect(context.Background(), detection.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "0403:6001", devices[0].Metadata["vidpid"])
	assert.Equal(t, "FT232R", devices[0].Metadata["bridge"])
}

func TestDetect_SafeProbes(t *testing.T) {
	t.Parallel()

	versions := map[string]byte{"/dev/ttyUSB0": 0x92}
	d := &detector{
		list: fixedPorts(
			&enumerator.PortDetails{Name: "/dev/ttyUSB0", IsUSB: true, VID: "10C4", PID: "EA60"},
			&enumerator.PortDetails{Name: "/dev/ttyS0"},
			&enumerator.PortDetails{Name: "/dev/ttyUSB1", IsUSB: true, VID: "0403", PID: "6001"},
		),
		probe: func(_ context.Context, path string) (byte, error) {
			v, ok := versions[path]
			if !ok {
				return 0, errors.New("transport timeout")
			}
			return v, nil
		},
	}

	opts := detection.DefaultOptions()
	opts.Mode = detection.Safe
	devices, err := d.Detect(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, devices, 2)

	assert.Equal(t, detection.High, devices[0].Confidence)
	assert.Equal(t, "MFRC522 v2.0", devices[0].Metadata["chip"])
	// Known bridge that did not answer stays listed; the silent ttyS0 is dropped.
	assert.Equal(t, "/dev/ttyUSB1", devices[1].Path)
	assert.Equal(t, detection.Medium, devices[1].Confidence)
}

func TestDetect_Errors(t *testing.T) {
	t.Parallel()

	d := &detector{list: func() ([]*enumerator.PortDetails, error) { return nil, errors.New("no sysfs") }}
	_, err := d.Detect(context.Background(), detection.DefaultOptions())
	require.Error(t, err)

	d = &detector{list: fixedPorts()}
	_, err = d.Detect(context.Background(), detection.DefaultOptions())
	require.ErrorIs(t, err, detection.ErrNoDevicesFound)

	opts := detection.DefaultOptions()
	opts.IgnorePaths = []string{"/dev/ttyS0"}
	d = &detector{list: fixedPorts(&enumerator.PortDetails{Name: "/dev/ttyS0"})}
	_, err = d.Detect(context.Background(), opts)
	require.ErrorIs(t, err, detection.ErrNoDevicesFound)
}
