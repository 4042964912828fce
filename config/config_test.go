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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZaparooProject/go-mfrc522/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
device_id: gate-a
reader:
  bus: i2c
  port: /dev/i2c-1
  address: 0x29
  reset:
    driver: gpiocdev
    chip: gpiochip0
    offset: 25
polling:
  miss_interval: 200ms
attendance:
  debounce_window: 3s
http:
  gateway_url: https://gw.example.com
  device_token: from-file
mqtt:
  host: broker.local
  qos: 1
outbox:
  enabled: true
  path: /tmp/outbox.db
display:
  backend: console
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func missingEnv(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, "spi", cfg.Reader.Bus)
	assert.Equal(t, 25*time.Millisecond, cfg.Reader.CRCTimeout)
	assert.Equal(t, 50*time.Millisecond, cfg.Reader.TransceiveTimeout)
	assert.Equal(t, 2000*time.Millisecond, cfg.Attendance.DebounceWindow)
	assert.Equal(t, attendance.DefaultCapacity, cfg.Attendance.CacheSize)
	assert.False(t, cfg.Outbox.Enabled)

	// Only the device id is missing.
	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "device_id")
	cfg.DeviceID = "gate-a"
	require.NoError(t, cfg.Validate())
}

//nolint:paralleltest // Load reads the process environment
func TestLoad_File(t *testing.T) {
	path := writeFile(t, "attendance.yaml", sampleYAML)

	cfg, err := Load(path, missingEnv(t))
	require.NoError(t, err)

	assert.Equal(t, "gate-a", cfg.DeviceID)
	assert.Equal(t, "i2c", cfg.Reader.Bus)
	assert.Equal(t, uint16(0x29), cfg.Reader.Address)
	assert.Equal(t, "gpiochip0", cfg.Reader.Reset.Chip)
	assert.Equal(t, 25, cfg.Reader.Reset.Offset)
	assert.Equal(t, 200*time.Millisecond, cfg.Polling.MissInterval)
	assert.Equal(t, time.Second, cfg.Polling.HitInterval, "unset keys keep defaults")
	assert.Equal(t, 3*time.Second, cfg.Attendance.DebounceWindow)
	assert.Equal(t, "https://gw.example.com", cfg.HTTP.GatewayURL)
	assert.Equal(t, 5*time.Second, cfg.HTTP.SendTimeout)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)
	assert.True(t, cfg.Outbox.Enabled)
	assert.Equal(t, "console", cfg.Display.Backend)
	require.NoError(t, cfg.Validate())
}

//nolint:paralleltest // Load reads the process environment
func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), missingEnv(t))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeFile(t, "bad.yaml", "reader: [oops"), missingEnv(t))
	require.Error(t, err)

	_, err = Load(writeFile(t, "typo.yaml", "reder:\n  bus: spi\n"), missingEnv(t))
	require.Error(t, err, "unknown keys are rejected")
}

//nolint:paralleltest // uses t.Setenv
func TestLoad_EnvOverrides(t *testing.T) {
	envFile := writeFile(t, "test.env", "ATTENDANCE_DEVICE_TOKEN=from-dotenv\n")
	t.Setenv(EnvDeviceID, "gate-b")
	t.Setenv(EnvGatewayURL, "https://override.example.com")
	t.Setenv(EnvMQTTHost, "  ")

	cfg, err := Load(writeFile(t, "attendance.yaml", sampleYAML), envFile)
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Unsetenv(EnvDeviceToken) })

	assert.Equal(t, "gate-b", cfg.DeviceID)
	assert.Equal(t, "https://override.example.com", cfg.HTTP.GatewayURL)
	assert.Equal(t, "from-dotenv", cfg.HTTP.DeviceToken)
	assert.Equal(t, "broker.local", cfg.MQTT.Host, "blank variables are ignored")
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		EnvDirectoryURL: " https://dir.example.com ",
		EnvDeviceToken:  "secret",
	}
	cfg := Default()
	cfg.ApplyEnv(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	assert.Equal(t, "https://dir.example.com", cfg.HTTP.DirectoryURL)
	assert.Equal(t, "secret", cfg.HTTP.DeviceToken)
	assert.Empty(t, cfg.DeviceID)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mutate  func(*Config)
		name    string
		wantMsg string
	}{
		{name: "Bad_Bus", mutate: func(c *Config) { c.Reader.Bus = "usb" }, wantMsg: "reader.bus"},
		{name: "Zero_Miss", mutate: func(c *Config) { c.Polling.MissInterval = 0 }, wantMsg: "polling.miss_interval"},
		{
			name:    "Negative_Debounce",
			mutate:  func(c *Config) { c.Attendance.DebounceWindow = -time.Second },
			wantMsg: "attendance.debounce_window",
		},
		{name: "Empty_Cache", mutate: func(c *Config) { c.Attendance.CacheSize = 0 }, wantMsg: "cache_size"},
		{
			name: "Outbox_Without_Path",
			mutate: func(c *Config) {
				c.Outbox.Enabled = true
				c.Outbox.Path = ""
			},
			wantMsg: "outbox.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			cfg.DeviceID = "gate-a"
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestConversions(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Polling.ReportEvery = 5
	pc := cfg.PollingConfig()
	assert.Equal(t, 5, pc.ReportEvery)
	assert.Equal(t, cfg.Polling.MissInterval, pc.MissInterval)

	assert.Len(t, cfg.DeviceOptions(), 2)
	cfg.Reader.Retry = true
	assert.Len(t, cfg.DeviceOptions(), 3)
}
