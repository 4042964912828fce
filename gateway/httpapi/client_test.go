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

package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ZaparooProject/go-mfrc522/attendance"
	testutil "github.com/ZaparooProject/go-mfrc522/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Send(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "Created", status: http.StatusCreated},
		{name: "Accepted", status: http.StatusAccepted},
		{name: "OK_Is_Failure", status: http.StatusOK, wantErr: true},
		{name: "Unauthorized", status: http.StatusUnauthorized, wantErr: true},
		{name: "Server_Error", status: http.StatusInternalServerError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got attendance.Event
			var header http.Header
			var path, method string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				path, method, header = r.URL.Path, r.Method, r.Header.Clone()
				_ = json.NewDecoder(r.Body).Decode(&got)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"status":"x"}`))
			}))
			defer srv.Close()

			client := New(Config{GatewayURL: srv.URL + "/", DeviceToken: "secret"}, srv.Client())
			event := attendance.Event{
				EventID:  "01234567-89ab-cdef-dead-beef00000000",
				DeviceID: "gate-01",
				RFIDUID:  "04A1B2C3",
				TS:       "2025-09-01T08:00:00.000Z",
			}
			err := client.Send(context.Background(), event)

			assert.Equal(t, "/api/events", path)
			assert.Equal(t, http.MethodPost, method)
			assert.Equal(t, "secret", header.Get(DeviceTokenHeader))
			assert.Equal(t, "application/json", header.Get("Content-Type"))
			assert.Equal(t, event, got)

			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Contains(t, se.Error(), `{"status":"x"}`)
		})
	}
}

func TestClient_SendWireFormat(t *testing.T) {
	t.Parallel()

	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := New(Config{GatewayURL: srv.URL}, srv.Client())
	require.NoError(t, client.Send(context.Background(), attendance.Event{EventID: "e", DeviceID: "d", RFIDUID: "u", TS: "t"}))
	assert.Equal(t, map[string]any{"event_id": "e", "device_id": "d", "rfid_uid": "u", "ts": "t"}, raw)
}

func TestClient_SendTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client := New(Config{GatewayURL: srv.URL}, nil)
	err := client.Send(context.Background(), attendance.Event{})
	require.Error(t, err)
	var se *StatusError
	assert.False(t, errors.As(err, &se))
}

func TestClient_NoURL(t *testing.T) {
	t.Parallel()

	client := New(Config{}, nil)
	require.ErrorIs(t, client.Send(context.Background(), attendance.Event{}), ErrNoBaseURL)
	_, err := client.Lookup(context.Background(), "04A1B2C3")
	require.ErrorIs(t, err, ErrNoBaseURL)
}

func TestClient_Lookup(t *testing.T) {
	t.Parallel()

	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(testutil.DirectoryProfileJSON("Ada Lovelace", "exit")))
	}))
	defer srv.Close()

	client := New(Config{DirectoryURL: srv.URL}, srv.Client())
	profile, err := client.Lookup(context.Background(), testutil.TestUIDString)
	require.NoError(t, err)
	assert.Equal(t, "/students/by-rfid/04A1B2C3", path)
	assert.Equal(t, attendance.Profile{Name: "Ada Lovelace", NextEventType: "exit"}, profile)
}

func TestClient_LookupPartialProfile(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(testutil.DirectoryProfileJSON("", "")))
	}))
	defer srv.Close()

	profile, err := New(Config{DirectoryURL: srv.URL}, srv.Client()).Lookup(context.Background(), "X")
	require.NoError(t, err)
	assert.Equal(t, attendance.Profile{}, profile)
}

func TestClient_LookupFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantSE  bool
		wantErr bool
	}{
		{name: "Not_Found", status: http.StatusNotFound, body: `{"error":"unknown"}`, wantSE: true, wantErr: true},
		{name: "Created_Is_Not_OK", status: http.StatusCreated, body: `{}`, wantSE: true, wantErr: true},
		{name: "Bad_JSON", status: http.StatusOK, body: `not json`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(Config{DirectoryURL: srv.URL}, srv.Client()).Lookup(context.Background(), "X")
			require.Error(t, err)
			var se *StatusError
			assert.Equal(t, tt.wantSE, errors.As(err, &se))
		})
	}
}

func TestClient_LookupTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := New(Config{DirectoryURL: srv.URL, LookupTimeout: 20 * time.Millisecond}, srv.Client())
	start := time.Now()
	_, err := client.Lookup(context.Background(), "X")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	client := New(Config{GatewayURL: "http://gw/", DirectoryURL: "http://dir//"}, nil)
	assert.Equal(t, "http://gw", client.config.GatewayURL)
	assert.Equal(t, "http://dir", client.config.DirectoryURL)
	assert.Equal(t, 3*time.Second, client.config.LookupTimeout)
	assert.Equal(t, 5*time.Second, client.config.SendTimeout)
}
