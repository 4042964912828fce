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

package pins

import (
	"errors"
	"testing"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

type fakeLine struct {
	err    error
	values []int
	closed bool
}

func (l *fakeLine) SetValue(value int) error {
	if l.err != nil {
		return l.err
	}
	l.values = append(l.values, value)
	return nil
}

func (l *fakeLine) Close() error {
	l.closed = true
	return nil
}

func TestPeriphPin(t *testing.T) {
	t.Parallel()

	raw := &gpiotest.Pin{N: "GPIO25", Num: 25}
	pin := NewPeriphPin(raw)

	require.NoError(t, pin.Out(false))
	assert.Equal(t, gpio.Low, raw.Read())
	require.NoError(t, pin.Out(true))
	assert.Equal(t, gpio.High, raw.Read())

	require.NoError(t, pin.Out(false))
	require.NoError(t, pin.Close())
	assert.Equal(t, gpio.High, raw.Read())
}

func TestCDevPin(t *testing.T) {
	t.Parallel()

	line := &fakeLine{}
	pin := &CDevPin{line: line, name: "gpiochip0:25"}

	require.NoError(t, pin.Out(false))
	require.NoError(t, pin.Out(true))
	assert.Equal(t, []int{0, 1}, line.values)

	require.NoError(t, pin.Close())
	assert.True(t, line.closed)

	line.err = errors.New("line released")
	err := pin.Out(true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gpiochip0:25")
}

func TestCDevPin_DrivesReset(t *testing.T) {
	t.Parallel()

	line := &fakeLine{}
	device, err := mfrc522.New(mfrc522.NewMockTransport(),
		mfrc522.WithSettleTime(0, 0),
		mfrc522.WithResetPin(&CDevPin{line: line, name: "gpiochip0:25"}))
	require.NoError(t, err)

	require.NoError(t, device.Init())
	assert.Equal(t, []int{0, 1}, line.values)
}

func TestOpen(t *testing.T) {
	t.Parallel()

	pin, err := Open(Config{})
	require.NoError(t, err)
	assert.Nil(t, pin)

	_, err = Open(Config{Driver: "sysfs"})
	require.ErrorIs(t, err, ErrUnknownDriver)
}
