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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/config"
	"github.com/ZaparooProject/go-mfrc522/display"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the attendance terminal",
	Long: `Initializes the reader and polls for cards until interrupted. Each tap
is debounced, resolved against the directory, sent to the gateway and shown
on the display.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runTerminal(ctx, cfg, mfrc522.DefaultLogger)
	},
}

// runTerminal brings the display up first so reader failures can be shown.
func runTerminal(ctx context.Context, cfg config.Config, logger mfrc522.Logger) error {
	disp, err := display.New(cfg.Display, logger)
	if err != nil {
		logger.Warnf("display unavailable, continuing without: %v", err)
		disp = display.Noop{}
	}
	defer func() { _ = disp.Close() }()

	disp.ShowMessage("RFID System", "Booting...")

	r, err := openReader(ctx, cfg, logger)
	if err != nil {
		disp.ShowMessage("RFID Error", "Reader init failed")
		return err
	}
	defer func() { _ = r.Close() }()

	ready := r.device.InitError() == nil
	if ready {
		logger.Infof("reader ready: %s (0x%02X) over %s",
			mfrc522.VersionName(r.device.Version()), r.device.Version(), r.device.Transport().Type())
	} else {
		disp.ShowMessage("RFID Error", "Reader init failed")
		logger.Errorf("failed to init MFRC522, polling anyway: %v", r.device.InitError())
	}

	a, err := newApp(ctx, cfg, r.device, disp, logger)
	if err != nil {
		disp.ShowMessage("RFID Error", "Gateway setup failed")
		return fmt.Errorf("setup: %w", err)
	}
	defer a.Close()

	if ready {
		disp.ShowMessage("Ready", "Tap your card")
	}
	logger.Infof("terminal %s polling", cfg.DeviceID)
	return a.Run(ctx)
}
