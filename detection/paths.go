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
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	// /dev/spidev0.1, spidev0.1, SPI0.1 (periph alias)
	spiPathRe = regexp.MustCompile(`(?i)^(?:/dev/)?spi(?:dev)?(\d+)\.(\d+)$`)
	// /dev/i2c-1, i2c-1, I2C1 (periph alias), optionally :<address>
	i2cPathRe = regexp.MustCompile(`(?i)^(?:/dev/)?i2c-?(\d+)(?::(\w+))?$`)
	// COM3, \\.\COM3
	comPathRe = regexp.MustCompile(`(?i)^(?:\\\\\.\\)?(com\d+)$`)
)

// CanonicalPath maps the spellings of one reader location to a single key:
// "spi:B.C" for SPI ports, "i2c:N" for an I2C bus, "i2c:N@0xAA" for a chip
// on it and "com:N" for Windows serial ports. Other paths are cleaned but
// otherwise kept, since Unix device names are case-sensitive.
func CanonicalPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}

	if m := spiPathRe.FindStringSubmatch(path); m != nil {
		return "spi:" + m[1] + "." + m[2]
	}
	if m := i2cPathRe.FindStringSubmatch(path); m != nil {
		if m[2] == "" {
			return "i2c:" + m[1]
		}
		addr, err := strconv.ParseUint(m[2], 0, 7)
		if err != nil {
			return "i2c:" + m[1] + "@" + strings.ToLower(m[2])
		}
		return fmt.Sprintf("i2c:%s@0x%02X", m[1], addr)
	}
	if m := comPathRe.FindStringSubmatch(path); m != nil {
		return "com:" + strings.TrimPrefix(strings.ToLower(m[1]), "com")
	}
	return filepath.Clean(path)
}

// IsPathIgnored reports whether devicePath matches an entry of ignorePaths.
// An I2C bus entry ignores every address on that bus.
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	device := CanonicalPath(devicePath)
	if device == "" {
		return false
	}

	for _, ignorePath := range ignorePaths {
		ignore := CanonicalPath(ignorePath)
		if ignore == "" {
			continue
		}
		if device == ignore {
			return true
		}
		if strings.HasPrefix(ignore, "i2c:") && strings.HasPrefix(device, ignore+"@") {
			return true
		}
	}
	return false
}
