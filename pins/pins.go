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

// Package pins opens the GPIO line wired to the MFRC522 NRSTPD pin.
package pins

import (
	"errors"
	"fmt"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/warthog618/go-gpiocdev"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Driver selects the GPIO library used for the reset line.
type Driver string

const (
	// DriverNone leaves the reset line unmanaged.
	DriverNone Driver = ""
	// DriverPeriph opens the pin by name through periph.io ("GPIO25").
	DriverPeriph Driver = "periph"
	// DriverCDev requests a line offset on a character device ("gpiochip0").
	DriverCDev Driver = "gpiocdev"
)

// ErrUnknownDriver is returned for a Driver this package does not know.
var ErrUnknownDriver = errors.New("unknown gpio driver")

// Config describes the reset line.
type Config struct {
	Driver Driver `yaml:"driver"`
	Name   string `yaml:"name"`
	Chip   string `yaml:"chip"`
	Offset int    `yaml:"offset"`
}

// Pin is a reset line that must be released when done.
type Pin interface {
	mfrc522.ResetPin
	Close() error
}

// Open opens the line described by cfg. DriverNone returns a nil Pin.
func Open(cfg Config) (Pin, error) {
	switch cfg.Driver {
	case DriverNone:
		return nil, nil
	case DriverPeriph:
		pin, err := OpenPeriph(cfg.Name)
		if err != nil {
			return nil, err
		}
		return pin, nil
	case DriverCDev:
		pin, err := OpenCDev(cfg.Chip, cfg.Offset)
		if err != nil {
			return nil, err
		}
		return pin, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// PeriphPin drives a pin through periph.io.
type PeriphPin struct {
	pin gpio.PinOut
}

// OpenPeriph looks up name in the periph GPIO registry.
func OpenPeriph(name string) (*PeriphPin, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("gpio pin %s not found", name)
	}
	return NewPeriphPin(pin), nil
}

// NewPeriphPin wraps an already resolved pin.
func NewPeriphPin(pin gpio.PinOut) *PeriphPin {
	return &PeriphPin{pin: pin}
}

// Out implements mfrc522.ResetPin.
func (p *PeriphPin) Out(high bool) error {
	if err := p.pin.Out(gpio.Level(high)); err != nil {
		return fmt.Errorf("set %s: %w", p.pin, err)
	}
	return nil
}

// Close leaves the pin driven high so the chip stays powered.
func (p *PeriphPin) Close() error {
	return p.Out(true)
}

// valueLine is the part of *gpiocdev.Line the reset pin uses.
type valueLine interface {
	SetValue(value int) error
	Close() error
}

// CDevPin drives a line through the GPIO character device.
type CDevPin struct {
	line valueLine
	name string
}

// OpenCDev requests offset on chip as an output, initially high.
func OpenCDev(chip string, offset int) (*CDevPin, error) {
	line, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsOutput(1),
		gpiocdev.WithConsumer("mfrc522-reset"))
	if err != nil {
		return nil, fmt.Errorf("request %s line %d: %w", chip, offset, err)
	}
	return &CDevPin{line: line, name: fmt.Sprintf("%s:%d", chip, offset)}, nil
}

// Out implements mfrc522.ResetPin.
func (p *CDevPin) Out(high bool) error {
	value := 0
	if high {
		value = 1
	}
	if err := p.line.SetValue(value); err != nil {
		return fmt.Errorf("set %s: %w", p.name, err)
	}
	return nil
}

// Close releases the line.
func (p *CDevPin) Close() error {
	return p.line.Close()
}

var (
	_ Pin = (*PeriphPin)(nil)
	_ Pin = (*CDevPin)(nil)
)
