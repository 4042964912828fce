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

/*
Package mfrc522 provides a pure Go driver for the NXP MFRC522 contactless
reader IC and its FM17522 clones.

The driver talks to the chip one register at a time through a Transport.
Register level SPI, I2C and UART transports live under transport/.

Features:
  - Multiple transport support: SPI, I2C, UART
  - Hardware reset line handling (see package pins)
  - ISO/IEC 14443-3 type A request, cascade level 1 anticollision and HALT
  - Chip CRC_A coprocessor access
  - Wall-clock deadlines on every chip wait
  - Retry logic with configurable backoff

Basic Usage:

	import (
	    "github.com/ZaparooProject/go-mfrc522"
	    "github.com/ZaparooProject/go-mfrc522/transport/spi"
	)

	transport, err := spi.New("/dev/spidev0.0")
	if err != nil {
	    log.Fatal(err)
	}

	device, err := mfrc522.New(transport)
	if err != nil {
	    log.Fatal(err)
	}
	defer device.Close()

	if err := device.Init(); err != nil {
	    log.Fatal(err)
	}

	uid, err := device.ReadUID()
	switch {
	case mfrc522.IsMiss(err):
	    // nothing in the field
	case err != nil:
	    log.Printf("read failed at %s: %v", mfrc522.FailedStep(err), err)
	default:
	    fmt.Println(uid)
	}

Error Handling:

A cycle without a card returns ErrNoCard. A card whose serial fails the BCC
check returns ErrChecksumMismatch, which is not a miss. Bus failures are
*TransportError values:

	if errors.Is(err, mfrc522.ErrTimeout) {
	    // the chip did not finish in time
	}

Initialization failures are permanent for a Device; ReadUID on such a device
returns ErrNotInitialized wrapping the original cause.

Thread Safety:

Device operations are not thread-safe. One goroutine should own a Device.
*/
package mfrc522
