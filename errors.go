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

import (
	"errors"
	"fmt"
)

// Transport errors
var (
	ErrTransportClosed  = errors.New("transport closed")
	ErrTransportRead    = errors.New("transport read failed")
	ErrTransportWrite   = errors.New("transport write failed")
	ErrTransportTimeout = errors.New("transport timeout")
	ErrEchoMismatch     = errors.New("register echo mismatch")
)

// Protocol errors
var (
	ErrTimeout          = errors.New("operation timeout")
	ErrNoCard           = errors.New("no card in field")
	ErrChecksumMismatch = errors.New("uid checksum mismatch")
	ErrProtocol         = errors.New("chip reported protocol error")
	ErrInvalidVersion   = errors.New("invalid chip version")
	ErrNotInitialized   = errors.New("device not initialized")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// ErrorType classifies a transport failure.
type ErrorType int

const (
	ErrorTypePermanent ErrorType = iota
	ErrorTypeTransient
	ErrorTypeTimeout
)

func (e ErrorType) String() string {
	switch e {
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypeTimeout:
		return "timeout"
	default:
		return "permanent"
	}
}

// TransportError wraps a bus level failure with the operation and port it happened on.
type TransportError struct {
	Err       error
	Op        string
	Port      string
	Type      ErrorType
	Retryable bool
}

func (e *TransportError) Error() string {
	if e.Port == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s on %s: %v", e.Op, e.Port, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a TransportError, deriving Retryable from the type.
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType != ErrorTypePermanent,
	}
}

// NewClosedError reports an access to a transport that is not open.
func NewClosedError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTransportClosed, ErrorTypePermanent)
}

// NewTimeoutError reports a bus timeout.
func NewTimeoutError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTransportTimeout, ErrorTypeTimeout)
}

// ProtocolError carries the chip's error register when a transceive fails.
type ProtocolError struct {
	ErrorReg byte
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%v: error register 0x%02X", ErrProtocol, e.ErrorReg)
}

func (*ProtocolError) Unwrap() error {
	return ErrProtocol
}

// IsRetryable reports whether err is worth retrying at the transport level.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}

	switch {
	case errors.Is(err, ErrTransportTimeout),
		errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrEchoMismatch):
		return true
	default:
		return false
	}
}

// GetErrorType classifies err for TransportError construction.
func GetErrorType(err error) ErrorType {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Type
	}
	switch {
	case errors.Is(err, ErrTransportTimeout), errors.Is(err, ErrTimeout):
		return ErrorTypeTimeout
	case IsRetryable(err):
		return ErrorTypeTransient
	default:
		return ErrorTypePermanent
	}
}

// IsMiss reports whether err is an ordinary "no tag this cycle" outcome as
// opposed to a bus or chip fault.
func IsMiss(err error) bool {
	return errors.Is(err, ErrNoCard)
}
