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

// Command attendanced runs an MFRC522 attendance terminal: it polls the reader,
// debounces taps, resolves card holders and reports entry/exit events.
package main

import (
	"fmt"
	"os"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/config"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "attendanced",
	Short: "MFRC522 attendance terminal",
	Long: `Polls an MFRC522 reader and reports each card tap as an entry or exit
event to the attendance gateway.

Examples:
  attendanced run --config /etc/attendanced.yaml
  attendanced probe --config /etc/attendanced.yaml
  attendanced detect --safe`,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		if verbose {
			mfrc522.SetDebugEnabled(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional .env file with ATTENDANCE_* overrides")

	rootCmd.AddCommand(runCmd, probeCmd, detectCmd)
}

// loadConfig loads the configuration named by the persistent flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return config.Config{}, err
	}
	if cfg.Verbose {
		mfrc522.SetDebugEnabled(true)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
