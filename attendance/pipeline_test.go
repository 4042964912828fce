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

package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ZaparooProject/go-mfrc522"
	testutil "github.com/ZaparooProject/go-mfrc522/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type recordingGateway struct {
	err    error
	events []Event
}

func (g *recordingGateway) Send(_ context.Context, event Event) error {
	g.events = append(g.events, event)
	return g.err
}

type stubDirectory struct {
	profiles map[string]Profile
	err      error
	calls    []string
}

func (d *stubDirectory) Lookup(_ context.Context, uid string) (Profile, error) {
	d.calls = append(d.calls, uid)
	if d.err != nil {
		return Profile{}, d.err
	}
	return d.profiles[uid], nil
}

type shownEvent struct {
	name  string
	entry bool
}

type recordingDisplay struct {
	shown []shownEvent
}

func (d *recordingDisplay) ShowEvent(name string, entry bool) {
	d.shown = append(d.shown, shownEvent{name: name, entry: entry})
}

type fixture struct {
	clock     *fakeClock
	gateway   *recordingGateway
	directory *stubDirectory
	display   *recordingDisplay
	pipeline  *Pipeline
}

func newFixture() *fixture {
	f := &fixture{
		clock:     newFakeClock(),
		gateway:   &recordingGateway{},
		directory: &stubDirectory{profiles: map[string]Profile{}},
		display:   &recordingDisplay{},
	}
	dispatcher := NewDispatcher("gate-01", f.gateway, WithClock(f.clock.Now))
	f.pipeline = NewPipeline(nil, dispatcher, f.directory, f.display, mfrc522.SilentLogger{})
	return f
}

func TestPipeline_EndToEnd(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	uid := testutil.TestUIDString

	// First sighting: new entry, direction entry, event delivered.
	res, err := f.pipeline.Handle(ctx, uid)
	require.NoError(t, err)
	assert.False(t, res.Suppressed)
	assert.Equal(t, DirectionEntry, res.Direction)
	require.Len(t, f.gateway.events, 1)
	assert.Equal(t, "04A1B2C3", f.gateway.events[0].RFIDUID)
	assert.Equal(t, "gate-01", f.gateway.events[0].DeviceID)
	assert.Equal(t, "2025-09-01T08:00:00.000Z", f.gateway.events[0].TS)
	entry := f.pipeline.Cache().LookupOrCreate(uid)
	assert.Equal(t, DirectionExit, entry.Next)

	// Seen again within 500 ms: suppressed, direction untouched.
	f.clock.Advance(500 * time.Millisecond)
	res, err = f.pipeline.Handle(ctx, uid)
	require.NoError(t, err)
	assert.True(t, res.Suppressed)
	assert.Len(t, f.gateway.events, 1)
	assert.Equal(t, DirectionExit, entry.Next)
	assert.Len(t, f.display.shown, 1)

	// 2100 ms after the first dispatch: delivered as exit.
	f.clock.Advance(1600 * time.Millisecond)
	res, err = f.pipeline.Handle(ctx, uid)
	require.NoError(t, err)
	assert.False(t, res.Suppressed)
	assert.Equal(t, DirectionExit, res.Direction)
	require.Len(t, f.gateway.events, 2)
	assert.Equal(t, []shownEvent{{name: uid, entry: true}, {name: uid, entry: false}}, f.display.shown)
	assert.Equal(t, DirectionEntry, entry.Next)
}

func TestPipeline_StrictAlternation(t *testing.T) {
	t.Parallel()

	f := newFixture()
	want := []Direction{DirectionEntry, DirectionExit, DirectionEntry, DirectionExit, DirectionEntry, DirectionExit}
	var got []Direction
	for range want {
		res, err := f.pipeline.Handle(context.Background(), "CAFEF00D")
		require.NoError(t, err)
		got = append(got, res.Direction)
		f.clock.Advance(DefaultDebounceWindow)
	}
	assert.Equal(t, want, got)
}

func TestPipeline_DebounceIsGlobal(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	_, err := f.pipeline.Handle(ctx, "AAAAAAAA")
	require.NoError(t, err)
	f.clock.Advance(1999 * time.Millisecond)
	res, err := f.pipeline.Handle(ctx, "BBBBBBBB")
	require.NoError(t, err)
	assert.True(t, res.Suppressed)

	// The suppressed card never reached the cache or the directory.
	assert.Equal(t, []string{"AAAAAAAA"}, f.directory.calls)
	assert.Equal(t, 1, f.pipeline.Cache().Len())

	f.clock.Advance(time.Millisecond)
	res, err = f.pipeline.Handle(ctx, "BBBBBBBB")
	require.NoError(t, err)
	assert.False(t, res.Suppressed)
	assert.Len(t, f.gateway.events, 2)
}

func TestPipeline_Enrichment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		profile   Profile
		err       error
		name      string
		wantName  string
		wantEntry bool
	}{
		{
			name:      "Name_And_Exit",
			profile:   Profile{Name: "Ada Lovelace", NextEventType: "EXIT"},
			wantName:  "Ada Lovelace",
			wantEntry: false,
		},
		{
			name:      "Name_Only",
			profile:   Profile{Name: "Grace Hopper"},
			wantName:  "Grace Hopper",
			wantEntry: true,
		},
		{
			name:      "Empty_Profile",
			profile:   Profile{},
			wantName:  testutil.TestUIDString,
			wantEntry: true,
		},
		{
			name:      "Unknown_Direction",
			profile:   Profile{Name: "Alan", NextEventType: "checkout"},
			wantName:  "Alan",
			wantEntry: true,
		},
		{
			name:      "Lookup_Fails",
			profile:   Profile{Name: "ignored", NextEventType: "exit"},
			err:       errors.New("directory unreachable"),
			wantName:  testutil.TestUIDString,
			wantEntry: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture()
			f.directory.profiles[testutil.TestUIDString] = tt.profile
			f.directory.err = tt.err

			res, err := f.pipeline.Handle(context.Background(), testutil.TestUIDString)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, res.Name)
			assert.Equal(t, tt.wantEntry, res.Direction.IsEntry())
			require.Len(t, f.gateway.events, 1, "enrichment must never block dispatch")
			assert.Equal(t, []shownEvent{{name: tt.wantName, entry: tt.wantEntry}}, f.display.shown)
		})
	}
}

func TestPipeline_LookupOnlyWhileNameEmpty(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.directory.profiles["11223344"] = Profile{Name: "Linus"}
	for i := 0; i < 3; i++ {
		_, err := f.pipeline.Handle(context.Background(), "11223344")
		require.NoError(t, err)
		f.clock.Advance(3 * time.Second)
	}
	assert.Equal(t, []string{"11223344"}, f.directory.calls)
}

func TestPipeline_DeliveryFailureStillToggles(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.gateway.err = errors.New("503 service unavailable")

	res, err := f.pipeline.Handle(context.Background(), "0A0B0C0D")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.NotEmpty(t, res.Event.EventID)
	assert.Equal(t, DirectionExit, f.pipeline.Cache().LookupOrCreate("0A0B0C0D").Next)
	assert.Len(t, f.display.shown, 1)

	// OnCard surfaces the same error for the polling loop to log.
	f.clock.Advance(DefaultDebounceWindow)
	require.Error(t, f.pipeline.OnCard(context.Background(), "0A0B0C0D"))
}

func TestPipeline_NilCollaborators(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	p := NewPipeline(nil, NewDispatcher("dev", nil, WithClock(clock.Now)), nil, nil, nil)

	res, err := p.Handle(context.Background(), "DEADBEEF")
	require.NoError(t, err)
	assert.Equal(t, "DEADBEEF", res.Name)
	assert.Equal(t, DirectionEntry, res.Direction)
	assert.Equal(t, "DEADBEEF", res.Event.RFIDUID)
}

func TestPipeline_AllNilCollaborators(t *testing.T) {
	t.Parallel()

	p := NewPipeline(nil, nil, nil, nil, nil)

	res, err := p.Handle(context.Background(), "04A1B2C3")
	require.NoError(t, err)
	assert.False(t, res.Suppressed)
	assert.Equal(t, "04A1B2C3", res.Name)
	assert.Equal(t, "04A1B2C3", res.Event.RFIDUID)
	assert.Empty(t, res.Event.DeviceID)
	assert.Equal(t, DirectionExit, p.Cache().LookupOrCreate("04A1B2C3").Next)

	res, err = p.Handle(context.Background(), "04A1B2C3")
	require.NoError(t, err)
	assert.True(t, res.Suppressed, "second tap lands inside the debounce window")
}

func TestResult_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "suppressed", Result{Suppressed: true}.String())
	r := Result{Name: "Ada", Direction: DirectionExit, Event: Event{EventID: "id-1"}}
	assert.Equal(t, "exit Ada (id-1)", r.String())
}
