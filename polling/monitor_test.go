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

package polling

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ZaparooProject/go-mfrc522"
	testutil "github.com/ZaparooProject/go-mfrc522/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureLogger struct {
	mu    sync.Mutex
	warns []string
	debug []string
	errs  []string
}

func (c *captureLogger) Infof(string, ...any) {}

func (c *captureLogger) Warnf(format string, v ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warns = append(c.warns, fmt.Sprintf(format, v...))
}

func (c *captureLogger) Errorf(format string, v ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, fmt.Sprintf(format, v...))
}

func (c *captureLogger) Debugf(format string, v ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.debug = append(c.debug, fmt.Sprintf(format, v...))
}

func (c *captureLogger) warnings() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.warns...)
}

// createMockDeviceWithTransport creates an initialized device on a mock chip
func createMockDeviceWithTransport(t *testing.T) (*mfrc522.Device, *mfrc522.MockTransport) {
	t.Helper()
	mock := mfrc522.NewMockTransport()
	device, err := mfrc522.New(mock, mfrc522.WithSettleTime(0, 0))
	require.NoError(t, err)
	require.NoError(t, device.Init())
	return device, mock
}

// scriptedReader replays a fixed sequence of results
type scriptedReader struct {
	results []error
	uid     mfrc522.UID
	calls   int
}

func (s *scriptedReader) ReadUID() (mfrc522.UID, error) {
	i := s.calls
	s.calls++
	if i >= len(s.results) || s.results[i] != nil {
		if i >= len(s.results) {
			return mfrc522.UID{}, &mfrc522.StepError{Step: mfrc522.StepRequest, Err: mfrc522.ErrNoCard}
		}
		return mfrc522.UID{}, s.results[i]
	}
	return s.uid, nil
}

func TestNewLoop(t *testing.T) {
	t.Parallel()

	t.Run("WithDefaultConfig", func(t *testing.T) {
		t.Parallel()
		loop := NewLoop(&scriptedReader{}, nil, nil, nil)
		assert.Equal(t, 125*time.Millisecond, loop.config.MissInterval)
		assert.Equal(t, time.Second, loop.config.HitInterval)
		assert.Equal(t, 20, loop.config.ReportEvery)
		assert.Equal(t, mfrc522.DefaultLogger, loop.logger)
	})

	t.Run("WithCustomConfig", func(t *testing.T) {
		t.Parallel()
		config := &Config{MissInterval: 5 * time.Millisecond, HitInterval: 10 * time.Millisecond}
		loop := NewLoop(&scriptedReader{}, config, nil, mfrc522.SilentLogger{})
		assert.Equal(t, 5*time.Millisecond, loop.config.MissInterval)
		assert.Equal(t, 20, loop.config.ReportEvery, "zero ReportEvery falls back to default")
		assert.Equal(t, 0, config.ReportEvery, "caller config must not be modified")
	})
}

func TestLoop_PollOnceReadsCard(t *testing.T) {
	t.Parallel()

	device, mock := createMockDeviceWithTransport(t)
	mock.SetCard(testutil.NewVirtualCard(testutil.TestUID))

	var got []string
	loop := NewLoop(device, nil, func(_ context.Context, uid string) error {
		got = append(got, uid)
		return nil
	}, mfrc522.SilentLogger{})

	require.NoError(t, loop.PollOnce(context.Background()))
	assert.Equal(t, []string{testutil.TestUIDString}, got)

	state := loop.State()
	assert.True(t, state.Present)
	assert.Equal(t, testutil.TestUIDString, state.LastUID)
	assert.Equal(t, StateTagDetected, state.DetectionState)

	metrics := loop.Metrics()
	assert.Equal(t, int64(1), metrics.PollCycles)
	assert.Equal(t, int64(1), metrics.CardsRead)
	assert.NotZero(t, metrics.LastCardReadUnixNano)
}

func TestLoop_PollOnceNoCard(t *testing.T) {
	t.Parallel()

	device, _ := createMockDeviceWithTransport(t)
	called := false
	loop := NewLoop(device, nil, func(context.Context, string) error {
		called = true
		return nil
	}, mfrc522.SilentLogger{})

	err := loop.PollOnce(context.Background())
	require.ErrorIs(t, err, ErrNoTagInPoll)
	assert.False(t, called)
	assert.Equal(t, int64(1), loop.Metrics().RequestFailures)
	assert.Zero(t, loop.Metrics().AnticollFailures)
}

func TestLoop_ChecksumFailureIsDistinct(t *testing.T) {
	t.Parallel()

	device, mock := createMockDeviceWithTransport(t)
	mock.SetCard(testutil.NewCorruptCard(testutil.TestUID))
	logger := &captureLogger{}
	loop := NewLoop(device, nil, nil, logger)

	err := loop.PollOnce(context.Background())
	require.ErrorIs(t, err, mfrc522.ErrChecksumMismatch)
	assert.NotErrorIs(t, err, ErrNoTagInPoll)

	metrics := loop.Metrics()
	assert.Equal(t, int64(1), metrics.AnticollFailures)
	assert.Equal(t, int64(1), metrics.ChecksumFailures)
	assert.Zero(t, metrics.RequestFailures)
	require.Len(t, logger.warnings(), 1)
	assert.Contains(t, logger.warnings()[0], "checksum mismatch")
}

func TestLoop_FailureReportCadence(t *testing.T) {
	t.Parallel()

	anticoll := &mfrc522.StepError{Step: mfrc522.StepAnticollision, Err: mfrc522.ErrNoCard}
	results := make([]error, 45)
	for i := range results {
		results[i] = anticoll
	}
	logger := &captureLogger{}
	loop := NewLoop(&scriptedReader{results: results}, nil, nil, logger)

	for range results {
		_ = loop.PollOnce(context.Background())
	}

	// Reported on failure 1, 21 and 41.
	warns := logger.warnings()
	require.Len(t, warns, 3)
	assert.Contains(t, warns[0], "#1:")
	assert.Contains(t, warns[1], "#21:")
	assert.Contains(t, warns[2], "#41:")
	assert.Equal(t, int64(45), loop.Metrics().AnticollFailures)
}

func TestLoop_HandlerErrorIsLogged(t *testing.T) {
	t.Parallel()

	reader := &scriptedReader{results: []error{nil}, uid: mfrc522.UID{0xDE, 0xAD, 0xBE, 0xEF, 0x22}}
	logger := &captureLogger{}
	loop := NewLoop(reader, nil, func(context.Context, string) error {
		return errors.New("gateway down")
	}, logger)

	require.NoError(t, loop.PollOnce(context.Background()))
	assert.Equal(t, int64(1), loop.Metrics().HandlerErrors)
	require.Len(t, logger.errs, 1)
	assert.Contains(t, logger.errs[0], "DEADBEEF")
}

func TestLoop_NotInitializedKeepsPolling(t *testing.T) {
	t.Parallel()

	mock := mfrc522.NewMockTransport()
	mock.SetVersion(0x00)
	device, err := mfrc522.New(mock, mfrc522.WithSettleTime(0, 0))
	require.NoError(t, err)
	require.Error(t, device.Init())

	loop := NewLoop(device, &Config{MissInterval: time.Millisecond}, nil, mfrc522.SilentLogger{})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err = loop.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, loop.Metrics().RequestFailures, int64(1))
	assert.Zero(t, loop.Metrics().CardsRead)
}

func TestLoop_RunCadence(t *testing.T) {
	t.Parallel()

	device, mock := createMockDeviceWithTransport(t)
	card := testutil.NewVirtualCard(testutil.TestUID2)
	mock.SetCard(card)

	var mu sync.Mutex
	var uids []string
	config := &Config{MissInterval: time.Millisecond, HitInterval: time.Hour}
	loop := NewLoop(device, config, func(_ context.Context, uid string) error {
		mu.Lock()
		defer mu.Unlock()
		uids = append(uids, uid)
		return nil
	}, mfrc522.SilentLogger{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, loop.Run(ctx), context.DeadlineExceeded)

	// One read, then the hit interval keeps the loop asleep.
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{testutil.TestUID2String}, uids)
	assert.Equal(t, int64(1), loop.Metrics().PollCycles)
}

func TestLoop_RemovalAfterMisses(t *testing.T) {
	t.Parallel()

	reader := &scriptedReader{results: []error{nil}, uid: mfrc522.UID{1, 2, 3, 4, 4}}
	loop := NewLoop(reader, &Config{RemovalMisses: 2}, nil, mfrc522.SilentLogger{})

	require.NoError(t, loop.PollOnce(context.Background()))
	assert.True(t, loop.State().Present)

	_ = loop.PollOnce(context.Background())
	assert.True(t, loop.State().Present)

	_ = loop.PollOnce(context.Background())
	state := loop.State()
	assert.False(t, state.Present)
	assert.Equal(t, StateIdle, state.DetectionState)
	assert.Equal(t, "01020304", state.LastUID)
}

func TestLoop_Close(t *testing.T) {
	t.Parallel()

	device, mock := createMockDeviceWithTransport(t)
	loop := NewLoop(device, nil, nil, mfrc522.SilentLogger{})
	require.NoError(t, loop.Close())
	assert.False(t, mock.IsConnected())

	assert.NoError(t, NewLoop(&scriptedReader{}, nil, nil, nil).Close())
}
