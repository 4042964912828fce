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

// Package display shows boot and tap messages to the person at the reader.
// All backends are fire-and-forget: drawing problems are logged, never returned.
package display

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ZaparooProject/go-mfrc522"
)

// Backend names accepted in Config.
const (
	BackendNone        = "none"
	BackendConsole     = "console"
	BackendFramebuffer = "framebuffer"
)

// Line widths of the original two line panel.
const (
	Line1Width = 21
	Line2Width = 17
)

var (
	// ErrUnknownBackend is returned by New for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown display backend")
	// ErrScreenNotCompiled is returned when screen support was not compiled in.
	ErrScreenNotCompiled = errors.New("screen support not compiled in (build with -tags=screen)")
)

// Display is a two line status panel.
type Display interface {
	ShowMessage(line1, line2 string)
	ShowEvent(name string, entry bool)
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Backend  string  `yaml:"backend"`
	Device   string  `yaml:"device"`
	FontPath string  `yaml:"font_path"`
	FontSize float64 `yaml:"font_size"`
}

// DefaultConfig returns a disabled display.
func DefaultConfig() Config {
	return Config{
		Backend:  BackendNone,
		Device:   "/dev/fb0",
		FontPath: "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
		FontSize: 48,
	}
}

// New creates the backend named by cfg.Backend.
func New(cfg Config, logger mfrc522.Logger) (Display, error) {
	if logger == nil {
		logger = mfrc522.DefaultLogger
	}
	switch strings.ToLower(cfg.Backend) {
	case "", BackendNone:
		return Noop{}, nil
	case BackendConsole:
		return NewConsole(logger), nil
	case BackendFramebuffer:
		return newFramebuffer(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// EventLines returns the two lines shown for a dispatched tap.
func EventLines(name string, entry bool) (line1, line2 string) {
	if entry {
		return truncate("ENTRY: "+name, Line1Width), "Welcome :D"
	}
	return truncate("EXIT: "+name, Line1Width), "Bye Bye :("
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width])
}

// Noop discards everything.
type Noop struct{}

func (Noop) ShowMessage(string, string) {}
func (Noop) ShowEvent(string, bool)     {}
func (Noop) Close() error               { return nil }

// Console writes messages to a logger.
type Console struct {
	logger mfrc522.Logger
}

// NewConsole creates a console display.
func NewConsole(logger mfrc522.Logger) *Console {
	return &Console{logger: logger}
}

// ShowMessage implements Display.
func (c *Console) ShowMessage(line1, line2 string) {
	c.logger.Infof("[display] %s | %s", line1, line2)
}

// ShowEvent implements Display.
func (c *Console) ShowEvent(name string, entry bool) {
	c.ShowMessage(EventLines(name, entry))
}

// Close implements Display.
func (*Console) Close() error { return nil }
