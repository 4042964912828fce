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

package mfrc522

import "log"

// Logger is the logging surface used by the polling and attendance layers.
type Logger interface {
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
	Debugf(format string, v ...any)
}

// DefaultLogger writes through the standard library logger. Debug lines are
// only emitted while SetDebugEnabled(true) is in effect.
var DefaultLogger Logger = &defaultLogger{}

type defaultLogger struct{}

func (*defaultLogger) Infof(format string, v ...any) {
	log.Printf("INFO: "+format, v...)
}

func (*defaultLogger) Warnf(format string, v ...any) {
	log.Printf("WARN: "+format, v...)
}

func (*defaultLogger) Errorf(format string, v ...any) {
	log.Printf("ERROR: "+format, v...)
}

func (*defaultLogger) Debugf(format string, v ...any) {
	if DebugEnabled() {
		log.Printf("DEBUG: "+format, v...)
	}
}

// SilentLogger discards everything.
type SilentLogger struct{}

func (SilentLogger) Infof(string, ...any)  {}
func (SilentLogger) Warnf(string, ...any)  {}
func (SilentLogger) Errorf(string, ...any) {}
func (SilentLogger) Debugf(string, ...any) {}
