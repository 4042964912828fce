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

package testing

// Test card serials, four bytes without BCC.
var (
	TestUID       = []byte{0x04, 0xA1, 0xB2, 0xC3}
	TestUIDString = "04A1B2C3"

	TestUID2       = []byte{0xDE, 0xAD, 0xBE, 0xEF}
	TestUID2String = "DEADBEEF"
)

// Chip version register values.
const (
	VersionMFRC522v1 = 0x91
	VersionMFRC522v2 = 0x92
	VersionClone     = 0x88
)

// DirectoryProfileJSON builds a directory lookup body.
func DirectoryProfileJSON(name, next string) string {
	body := "{"
	sep := ""
	if name != "" {
		body += `"name":"` + name + `"`
		sep = ","
	}
	if next != "" {
		body += sep + `"next_event_type":"` + next + `"`
	}
	return body + "}"
}
