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
	"sort"
	"strings"

	"github.com/ZaparooProject/go-mfrc522/detection"
	"github.com/spf13/cobra"
)

var (
	detectSafe   bool
	detectIgnore []string
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "List buses an MFRC522 may be attached to",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts := detection.DefaultOptions()
		opts.IgnorePaths = detectIgnore
		if detectSafe {
			opts.Mode = detection.Safe
		}

		devices, err := detection.DetectAll(cmd.Context(), opts)
		if err != nil {
			return err
		}
		printDevices(cmd, devices)
		return nil
	},
}

func init() {
	detectCmd.Flags().BoolVar(&detectSafe, "safe", false, "read the version register of each candidate")
	detectCmd.Flags().StringSliceVar(&detectIgnore, "ignore", nil, "device paths to skip")
}

func printDevices(cmd *cobra.Command, devices []detection.DeviceInfo) {
	out := cmd.OutOrStdout()
	for _, dev := range devices {
		_, _ = fmt.Fprintf(out, "%-5s %-22s %-6s %s", dev.Transport, dev.Path, dev.Confidence, dev.Name)
		if len(dev.Metadata) > 0 {
			keys := make([]string, 0, len(dev.Metadata))
			for k := range dev.Metadata {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			parts := make([]string, 0, len(keys))
			for _, k := range keys {
				parts = append(parts, k+"="+dev.Metadata[k])
			}
			_, _ = fmt.Fprintf(out, " [%s]", strings.Join(parts, " "))
		}
		_, _ = fmt.Fprintln(out)
	}
}
