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

// Package httpapi talks to the attendance HTTP backend: event submission
// and the student directory.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ZaparooProject/go-mfrc522/attendance"
)

const (
	eventsPath    = "/api/events"
	directoryPath = "/students/by-rfid/"

	// DeviceTokenHeader carries the device credential on event submission.
	DeviceTokenHeader = "X-Device-Token"

	maxBodyBytes = 64 << 10
)

// ErrNoBaseURL is returned when a request needs a URL that was not configured.
var ErrNoBaseURL = errors.New("base url not configured")

// Config holds the backend endpoints.
type Config struct {
	GatewayURL    string        `yaml:"gateway_url"`
	DirectoryURL  string        `yaml:"directory_url"`
	DeviceToken   string        `yaml:"device_token"`
	SendTimeout   time.Duration `yaml:"send_timeout"`
	LookupTimeout time.Duration `yaml:"lookup_timeout"`
}

// DefaultConfig returns the standard request timeouts with no endpoints set.
func DefaultConfig() Config {
	return Config{
		SendTimeout:   5 * time.Second,
		LookupTimeout: 3 * time.Second,
	}
}

// StatusError is returned when the backend answers with an unexpected status.
type StatusError struct {
	Method     string
	URL        string
	Body       string
	StatusCode int
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Client implements attendance.Gateway and attendance.Directory over HTTP.
type Client struct {
	http   *http.Client
	config Config
}

// New creates a client. A nil httpClient uses a fresh http.Client.
func New(config Config, httpClient *http.Client) *Client {
	def := DefaultConfig()
	if config.SendTimeout <= 0 {
		config.SendTimeout = def.SendTimeout
	}
	if config.LookupTimeout <= 0 {
		config.LookupTimeout = def.LookupTimeout
	}
	config.GatewayURL = strings.TrimRight(config.GatewayURL, "/")
	config.DirectoryURL = strings.TrimRight(config.DirectoryURL, "/")
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{http: httpClient, config: config}
}

// Send implements attendance.Gateway. Only 201 Created and 202 Accepted
// count as delivered.
func (c *Client) Send(ctx context.Context, event attendance.Event) error {
	if c.config.GatewayURL == "" {
		return fmt.Errorf("send event: %w", ErrNoBaseURL)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.SendTimeout)
	defer cancel()

	target := c.config.GatewayURL + eventsPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build event request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(DeviceTokenHeader, c.config.DeviceToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		return statusError(req, resp)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	return nil
}

// Lookup implements attendance.Directory. Anything but 200 OK with a JSON
// body is an error.
func (c *Client) Lookup(ctx context.Context, uid string) (attendance.Profile, error) {
	var profile attendance.Profile
	if c.config.DirectoryURL == "" {
		return profile, fmt.Errorf("lookup %s: %w", uid, ErrNoBaseURL)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.LookupTimeout)
	defer cancel()

	target := c.config.DirectoryURL + directoryPath + url.PathEscape(uid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return profile, fmt.Errorf("build lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return profile, fmt.Errorf("lookup %s: %w", uid, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return profile, statusError(req, resp)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&profile); err != nil {
		return attendance.Profile{}, fmt.Errorf("decode profile for %s: %w", uid, err)
	}
	return profile, nil
}

func statusError(req *http.Request, resp *http.Response) *StatusError {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	return &StatusError{
		Method:     req.Method,
		URL:        req.URL.String(),
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(snippet)),
	}
}

var (
	_ attendance.Gateway   = (*Client)(nil)
	_ attendance.Directory = (*Client)(nil)
)
