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

// Package gateway holds the event delivery backends of the attendance
// terminal. Each backend implements attendance.Gateway.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/ZaparooProject/go-mfrc522/attendance"
)

// Multi delivers every event to all of its gateways.
type Multi struct {
	gateways []attendance.Gateway
}

// NewMulti fans out to gateways, skipping nil ones.
func NewMulti(gateways ...attendance.Gateway) *Multi {
	m := &Multi{}
	for _, g := range gateways {
		if g != nil {
			m.gateways = append(m.gateways, g)
		}
	}
	return m
}

// Len returns the number of backends.
func (m *Multi) Len() int {
	return len(m.gateways)
}

// Send implements attendance.Gateway. Every backend is tried; the event
// counts as delivered only if all of them accepted it. Multi keeps no record
// of which backends succeeded; use outbox.OpenTargets for per-backend retry.
func (m *Multi) Send(ctx context.Context, event attendance.Event) error {
	var errs []error
	for i, g := range m.gateways {
		if err := g.Send(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("gateway %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
