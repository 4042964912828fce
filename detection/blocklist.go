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

import "strings"

// DefaultBlocklist returns USB serial devices that are never an MFRC522
// bridge and should not be written to during Safe detection.
// Format: VID:PID in hexadecimal (case-insensitive).
func DefaultBlocklist() []string {
	return []string{
		"2341:0043", // Arduino Uno, resets on open
		"1915:520F", // Nordic dongle, bootloader on unexpected bytes
	}
}

// KnownBridges maps USB-UART bridge VID:PID pairs commonly sold on MFRC522
// serial modules to a description.
var KnownBridges = map[string]string{
	"1A86:7523": "CH340",
	"10C4:EA60": "CP210x",
	"0403:6001": "FT232R",
	"067B:2303": "PL2303",
}

// IsBlocked reports whether vidpid is in blocklist. Both sides go through
// FormatVIDPID, so case and missing leading zeros do not matter.
func IsBlocked(vidpid string, blocklist []string) bool {
	vid, pid, ok := strings.Cut(vidpid, ":")
	if !ok {
		return false
	}
	want := FormatVIDPID(vid, pid)
	for _, blocked := range blocklist {
		bvid, bpid, ok := strings.Cut(blocked, ":")
		if ok && FormatVIDPID(bvid, bpid) == want {
			return true
		}
	}
	return false
}

// FormatVIDPID renders a USB vendor and product id as "VVVV:PPPP" in upper
// case hex, the form used by DefaultBlocklist and KnownBridges. Enumerators
// differ in case and some drop leading zeros ("403" for FTDI).
func FormatVIDPID(vid, pid string) string {
	return padID(vid) + ":" + padID(pid)
}

func padID(id string) string {
	id = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(strings.ToLower(id)), "0x"))
	if len(id) < 4 {
		id = strings.Repeat("0", 4-len(id)) + id
	}
	return id
}
