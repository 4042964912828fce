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
	"fmt"
	"time"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/polling"
	"github.com/spf13/cobra"
)

var probeWait time.Duration

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Initialize the reader and report its version",
	Long: `Resets and configures the reader, prints the version register and,
with --wait, waits for one card and prints its identifier.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		r, err := openReader(cmd.Context(), cfg, mfrc522.DefaultLogger)
		if err != nil {
			return err
		}
		defer func() { _ = r.Close() }()
		if err := r.device.InitError(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		version := r.device.Version()
		_, _ = fmt.Fprintf(out, "Reader: %s (version 0x%02X) over %s\n",
			mfrc522.VersionName(version), version, r.device.Transport().Type())

		if probeWait <= 0 {
			return nil
		}
		uid, err := waitForCard(r.device, probeWait, 100*time.Millisecond)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "Card: %s\n", uid)
		return nil
	},
}

func init() {
	probeCmd.Flags().DurationVar(&probeWait, "wait", 0, "wait this long for a card (0 skips the read)")
}

// waitForCard polls device until a card answers or timeout elapses. Misses are
// retried; any other failure ends the wait.
func waitForCard(device polling.Reader, timeout, interval time.Duration) (mfrc522.UID, error) {
	deadline := time.Now().Add(timeout)
	for {
		uid, err := device.ReadUID()
		if err == nil {
			return uid, nil
		}
		if !mfrc522.IsMiss(err) {
			return mfrc522.UID{}, err
		}
		if time.Now().After(deadline) {
			return mfrc522.UID{}, fmt.Errorf("timeout: no card within %s", timeout)
		}
		time.Sleep(interval)
	}
}
