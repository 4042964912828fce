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

import "fmt"

// Register is a 6-bit MFRC522 register address.
type Register byte

// Register map (MFRC522 datasheet, section 9).
const (
	RegCommand    Register = 0x01
	RegComIEn     Register = 0x02
	RegComIrq     Register = 0x04
	RegDivIrq     Register = 0x05
	RegError      Register = 0x06
	RegStatus1    Register = 0x07
	RegFIFOData   Register = 0x09
	RegFIFOLevel  Register = 0x0A
	RegControl    Register = 0x0C
	RegBitFraming Register = 0x0D
	RegMode       Register = 0x11
	RegTxControl  Register = 0x14
	RegTxASK      Register = 0x15
	RegCRCResultH Register = 0x21
	RegCRCResultL Register = 0x22
	RegRFCfg      Register = 0x26
	RegTMode      Register = 0x2A
	RegTPrescaler Register = 0x2B
	RegTReloadH   Register = 0x2C
	RegTReloadL   Register = 0x2D
	RegVersion    Register = 0x37
)

// Command is a value written to RegCommand.
type Command byte

const (
	CmdIdle       Command = 0x00
	CmdCalcCRC    Command = 0x03
	CmdTransceive Command = 0x0C
	CmdSoftReset  Command = 0x0F
)

// ISO14443A card commands.
const (
	piccReqIdl      = 0x26
	piccAnticollCL1 = 0x93
	piccAnticollNVB = 0x20
	piccHalt        = 0x50
)

// Register bits used by the driver.
const (
	irqSet         = 0x80 // ComIrq Set1 / DivIrq Set2, written as 0 to clear
	comIrqAll      = 0x7F
	comIEnAll      = 0x77 | 0x80
	fifoFlush      = 0x80 // FIFOLevel FlushBuffer
	startSend      = 0x80 // BitFraming StartSend
	divIrqCRC      = 0x04 // DivIrq CRCIRq
	comIrqTimer    = 0x01 // ComIrq TimerIRq
	comIrqRxIdle   = 0x30 // ComIrq RxIRq | IdleIRq
	errorMask      = 0x1B // BufferOvfl | CollErr | ParityErr | ProtocolErr
	rxLastBitsMask = 0x07
	antennaBits    = 0x03 // TxControl Tx1RFEn | Tx2RFEn
)

// Initialization values programmed by Init.
const (
	tModeAuto       = 0x8D
	tPrescalerValue = 0x3E
	tReloadLow      = 30
	tReloadHigh     = 0
	txASK100        = 0x40
	modeCRCPreset   = 0x3D
	rfCfgGain       = 0x60
)

// MaxFrameLen bounds the number of bytes drained from the FIFO per exchange.
// Longer responses are truncated.
const MaxFrameLen = 18

// Register transport framing for SPI.
const (
	addrMask = 0x7E
	readBit  = 0x80
)

// SPIAddress returns the first byte of an SPI exchange for reg.
func SPIAddress(reg Register, read bool) byte {
	addr := (byte(reg) << 1) & addrMask
	if read {
		addr |= readBit
	}
	return addr
}

// Known values of the version register.
const (
	VersionMFRC522v1 = 0x91
	VersionMFRC522v2 = 0x92
	VersionFM17522   = 0x88
)

// VersionName describes a version register value.
func VersionName(version byte) string {
	switch version {
	case VersionMFRC522v1:
		return "MFRC522 v1.0"
	case VersionMFRC522v2:
		return "MFRC522 v2.0"
	case VersionFM17522:
		return "FM17522 (clone)"
	case 0x00, 0xFF:
		return "no chip"
	default:
		return fmt.Sprintf("unknown chip 0x%02X", version)
	}
}
