// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/pkg/constants"
)

func TestWatchdogConfigDefaults(t *testing.T) {
	c := WatchdogConfig{}.withDefaults()
	assert.Equal(t, constants.DefaultWatchdogPollInterval, c.PollInterval)
	assert.Equal(t, constants.DefaultNoParticipantsGrace, c.NoParticipantsGrace)
	assert.Equal(t, constants.DefaultNoTranscriptGrace, c.NoTranscriptGrace)

	c = WatchdogConfig{PollInterval: time.Second, NoParticipantsGrace: 2 * time.Second, NoTranscriptGrace: 3 * time.Second}.withDefaults()
	assert.Equal(t, time.Second, c.PollInterval)
	assert.Equal(t, 2*time.Second, c.NoParticipantsGrace)
	assert.Equal(t, 3*time.Second, c.NoTranscriptGrace)
}

func TestWatchdogCheckNoParticipants(t *testing.T) {
	s := NewSession("bot1", "acme", "https://meet", "scooby", nil)
	w := &Watchdog{
		config: WatchdogConfig{
			NoParticipantsGrace: 10 * time.Millisecond,
			NoTranscriptGrace:   time.Hour,
			BotName:             "scooby",
		},
		session: s,
	}

	// Fresh session is inside the grace window.
	_, ok := w.check()
	assert.False(t, ok)

	s.lastActivity.Store(time.Now().Add(-time.Minute).UnixNano())
	reason, ok := w.check()
	require.True(t, ok)
	assert.Equal(t, "no active participants", reason)

	// A live participant holds off the reap even past the grace.
	s.Roster().Upsert(models.Participant{ID: "p1", Name: "Alice"})
	_, ok = w.check()
	assert.False(t, ok)

	// The bot alone does not count as a participant.
	s.Roster().MarkLeft("p1")
	s.Roster().Upsert(models.Participant{ID: "p2", Name: "Scooby"})
	_, ok = w.check()
	assert.True(t, ok)
}

func TestWatchdogCheckNoTranscript(t *testing.T) {
	s := NewSession("bot1", "acme", "https://meet", "scooby", nil)
	s.Roster().Upsert(models.Participant{ID: "p1", Name: "Alice"})
	w := &Watchdog{
		config: WatchdogConfig{
			NoParticipantsGrace: time.Hour,
			NoTranscriptGrace:   10 * time.Millisecond,
			BotName:             "scooby",
		},
		session: s,
	}

	s.lastTranscript.Store(time.Now().Add(-time.Minute).UnixNano())
	reason, ok := w.check()
	require.True(t, ok)
	assert.Equal(t, "no transcript activity", reason)

	s.RecordTranscript()
	_, ok = w.check()
	assert.False(t, ok)
}

func TestWatchdogExitsOnTerminalSession(t *testing.T) {
	s := NewSession("bot1", "acme", "https://meet", "scooby", nil)
	require.True(t, s.ClaimTeardown(models.SessionStateEnded))

	// A watchdog left behind by a teardown that never saw it attached must
	// not reap the session and must not poll it forever.
	w := StartWatchdog(context.Background(), s, WatchdogConfig{
		PollInterval:        5 * time.Millisecond,
		NoParticipantsGrace: time.Nanosecond,
		NoTranscriptGrace:   time.Nanosecond,
	}, func(context.Context, *Session, string) {
		t.Error("unexpected reap")
	})

	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("watchdog kept polling a terminal session")
	}
}

func TestWatchdogReapsOnce(t *testing.T) {
	s := NewSession("bot1", "acme", "https://meet", "scooby", nil)
	s.lastActivity.Store(time.Now().Add(-time.Minute).UnixNano())
	s.lastTranscript.Store(time.Now().Add(-time.Minute).UnixNano())

	reaped := make(chan string, 4)
	w := StartWatchdog(context.Background(), s, WatchdogConfig{
		PollInterval:        5 * time.Millisecond,
		NoParticipantsGrace: 10 * time.Millisecond,
		NoTranscriptGrace:   time.Hour,
	}, func(_ context.Context, _ *Session, reason string) {
		reaped <- reason
	})

	select {
	case reason := <-reaped:
		assert.Equal(t, "no active participants", reason)
	case <-time.After(2 * time.Second):
		t.Fatal("watchdog did not reap")
	}

	// The loop exits after the first reap.
	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("watchdog did not stop after reaping")
	}
	assert.Len(t, reaped, 0)
}

func TestWatchdogStop(t *testing.T) {
	s := NewSession("bot1", "acme", "https://meet", "scooby", nil)
	w := StartWatchdog(context.Background(), s, WatchdogConfig{
		PollInterval: time.Hour,
	}, func(context.Context, *Session, string) {
		t.Error("unexpected reap")
	})

	w.Stop()
	w.Stop()

	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("watchdog did not stop")
	}
}
