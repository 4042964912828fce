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

// Package config loads the attendance terminal configuration.
//
// Values come from three layers, later ones winning: built-in defaults, a
// YAML file, and ATTENDANCE_* environment variables (optionally seeded from a
// .env file).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/attendance"
	"github.com/ZaparooProject/go-mfrc522/display"
	"github.com/ZaparooProject/go-mfrc522/gateway/httpapi"
	"github.com/ZaparooProject/go-mfrc522/gateway/mqtt"
	"github.com/ZaparooProject/go-mfrc522/outbox"
	"github.com/ZaparooProject/go-mfrc522/pins"
	"github.com/ZaparooProject/go-mfrc522/polling"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the file.
const (
	EnvDeviceID     = "ATTENDANCE_DEVICE_ID"
	EnvDeviceToken  = "ATTENDANCE_DEVICE_TOKEN"
	EnvGatewayURL   = "ATTENDANCE_GATEWAY_URL"
	EnvDirectoryURL = "ATTENDANCE_DIRECTORY_URL"
	EnvMQTTHost     = "ATTENDANCE_MQTT_HOST"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// ReaderConfig selects the bus the MFRC522 is wired to.
type ReaderConfig struct {
	// Bus is one of spi, i2c or uart
	Bus string `yaml:"bus"`
	// Port is the bus device; empty means pick the best detected candidate
	Port              string        `yaml:"port"`
	Reset             pins.Config   `yaml:"reset"`
	SpeedHz           int64         `yaml:"speed_hz"`
	BaudRate          int           `yaml:"baud_rate"`
	CRCTimeout        time.Duration `yaml:"crc_timeout"`
	TransceiveTimeout time.Duration `yaml:"transceive_timeout"`
	Address           uint16        `yaml:"address"`
	Retry             bool          `yaml:"retry"`
}

// PollingConfig sets the acquisition loop cadence.
type PollingConfig struct {
	MissInterval  time.Duration `yaml:"miss_interval"`
	HitInterval   time.Duration `yaml:"hit_interval"`
	ReportEvery   int           `yaml:"report_every"`
	RemovalMisses int           `yaml:"removal_misses"`
}

// AttendanceConfig tunes the dispatch pipeline.
type AttendanceConfig struct {
	DebounceWindow time.Duration `yaml:"debounce_window"`
	CacheSize      int           `yaml:"cache_size"`
}

// Config is the complete terminal configuration.
type Config struct {
	DeviceID   string           `yaml:"device_id"`
	Display    display.Config   `yaml:"display"`
	MQTT       mqtt.Config      `yaml:"mqtt"`
	Outbox     outbox.Config    `yaml:"outbox"`
	HTTP       httpapi.Config   `yaml:"http"`
	Reader     ReaderConfig     `yaml:"reader"`
	Polling    PollingConfig    `yaml:"polling"`
	Attendance AttendanceConfig `yaml:"attendance"`
	Verbose    bool             `yaml:"verbose"`
}

// Default returns a configuration for an SPI wired reader with no gateway.
func Default() Config {
	pollingDefaults := polling.DefaultConfig()
	deviceDefaults := mfrc522.DefaultDeviceConfig()
	return Config{
		Reader: ReaderConfig{
			Bus:               string(mfrc522.TransportSPI),
			SpeedHz:           5_000_000,
			BaudRate:          9600,
			Address:           0x28,
			CRCTimeout:        deviceDefaults.CRCTimeout,
			TransceiveTimeout: deviceDefaults.TransceiveTimeout,
		},
		Polling: PollingConfig{
			MissInterval:  pollingDefaults.MissInterval,
			HitInterval:   pollingDefaults.HitInterval,
			ReportEvery:   pollingDefaults.ReportEvery,
			RemovalMisses: pollingDefaults.RemovalMisses,
		},
		Attendance: AttendanceConfig{
			DebounceWindow: attendance.DefaultDebounceWindow,
			CacheSize:      attendance.DefaultCapacity,
		},
		HTTP:    httpapi.DefaultConfig(),
		Outbox:  outbox.DefaultConfig(),
		Display: display.DefaultConfig(),
	}
}

// Load reads path over the defaults, then loads envFile into the process
// environment if it exists, then applies ATTENDANCE_* overrides. An empty
// path skips the file layer; an empty envFile means ".env".
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return Config{}, err
		}
	}

	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	f, err := os.Open(path) //nolint:gosec // operator supplied path
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from lookup; unset or blank variables are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(EnvDeviceID, &c.DeviceID)
	set(EnvDeviceToken, &c.HTTP.DeviceToken)
	set(EnvGatewayURL, &c.HTTP.GatewayURL)
	set(EnvDirectoryURL, &c.HTTP.DirectoryURL)
	set(EnvMQTTHost, &c.MQTT.Host)
}

// Validate checks the fields the terminal cannot run without.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.DeviceID) == "" {
		errs = append(errs, fmt.Errorf("%w: device_id is required", ErrInvalid))
	}

	switch mfrc522.TransportType(c.Reader.Bus) {
	case mfrc522.TransportSPI, mfrc522.TransportI2C, mfrc522.TransportUART:
	default:
		errs = append(errs, fmt.Errorf("%w: reader.bus %q is not spi, i2c or uart", ErrInvalid, c.Reader.Bus))
	}

	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"reader.crc_timeout", c.Reader.CRCTimeout},
		{"reader.transceive_timeout", c.Reader.TransceiveTimeout},
		{"polling.miss_interval", c.Polling.MissInterval},
		{"polling.hit_interval", c.Polling.HitInterval},
		{"attendance.debounce_window", c.Attendance.DebounceWindow},
	} {
		if d.value <= 0 {
			errs = append(errs, fmt.Errorf("%w: %s must be positive", ErrInvalid, d.name))
		}
	}

	if c.Attendance.CacheSize < 1 {
		errs = append(errs, fmt.Errorf("%w: attendance.cache_size must be at least 1", ErrInvalid))
	}
	if c.Outbox.Enabled && c.Outbox.Path == "" {
		errs = append(errs, fmt.Errorf("%w: outbox.path is required when the outbox is enabled", ErrInvalid))
	}

	return errors.Join(errs...)
}

// PollingConfig converts the loop settings.
func (c *Config) PollingConfig() *polling.Config {
	return &polling.Config{
		MissInterval:  c.Polling.MissInterval,
		HitInterval:   c.Polling.HitInterval,
		ReportEvery:   c.Polling.ReportEvery,
		RemovalMisses: c.Polling.RemovalMisses,
	}
}

// DeviceOptions converts the reader settings into driver options.
func (c *Config) DeviceOptions() []mfrc522.Option {
	opts := []mfrc522.Option{
		mfrc522.WithCRCTimeout(c.Reader.CRCTimeout),
		mfrc522.WithTransceiveTimeout(c.Reader.TransceiveTimeout),
	}
	if c.Reader.Retry {
		opts = append(opts, mfrc522.WithRetryConfig(mfrc522.DefaultRetryConfig()))
	}
	return opts
}
