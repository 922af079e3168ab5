// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/domain/models"
)

func TestNewSession(t *testing.T) {
	s := NewSession("bot1", "acme", "https://meet", "scooby", nil)

	assert.Equal(t, models.SessionStateCreated, s.State())
	assert.False(t, s.TranscriptsEnabled)
	assert.NotNil(t, s.Roster())
	assert.NotNil(t, s.Dedup())
	assert.Nil(t, s.Sink())
	assert.WithinDuration(t, time.Now().UTC(), s.CreatedAt, time.Second)
}

func TestSessionAdvance(t *testing.T) {
	s := NewSession("bot1", "acme", "https://meet", "scooby", nil)

	assert.True(t, s.Advance(models.SessionStateJoining))
	assert.True(t, s.Advance(models.SessionStateInCall))
	assert.Equal(t, models.SessionStateInCall, s.State())

	// Terminal targets go through ClaimTeardown instead.
	assert.False(t, s.Advance(models.SessionStateEnded))
	assert.Equal(t, models.SessionStateInCall, s.State())

	require.True(t, s.ClaimTeardown(models.SessionStateEnded))

	// No transitions out of a terminal state.
	assert.False(t, s.Advance(models.SessionStateInCall))
	assert.Equal(t, models.SessionStateEnded, s.State())
}

func TestSessionClaimTeardown(t *testing.T) {
	s := NewSession("bot1", "acme", "https://meet", "scooby", nil)

	assert.False(t, s.ClaimTeardown(models.SessionStateInCall))

	assert.True(t, s.ClaimTeardown(models.SessionStateFatal))
	assert.False(t, s.ClaimTeardown(models.SessionStateEnded))
	assert.Equal(t, models.SessionStateFatal, s.State())
}

func TestSessionClaimTeardownConcurrent(t *testing.T) {
	s := NewSession("bot1", "acme", "https://meet", "scooby", nil)

	const claimers = 32
	var wg sync.WaitGroup
	wins := make(chan models.SessionState, claimers)

	for i := 0; i < claimers; i++ {
		target := models.SessionStateEnded
		if i%2 == 0 {
			target = models.SessionStateReaped
		}
		wg.Add(1)
		go func(target models.SessionState) {
			defer wg.Done()
			if s.ClaimTeardown(target) {
				wins <- target
			}
		}(target)
	}
	wg.Wait()
	close(wins)

	var winners []models.SessionState
	for w := range wins {
		winners = append(winners, w)
	}
	require.Len(t, winners, 1)
	assert.Equal(t, winners[0], s.State())
}

func TestSessionInactivityClocks(t *testing.T) {
	s := NewSession("bot1", "acme", "https://meet", "scooby", nil)

	// Backdate both clocks, then confirm the resets are independent.
	past := time.Now().Add(-time.Minute).UnixNano()
	s.lastActivity.Store(past)
	s.lastTranscript.Store(past)

	s.RecordActivity()
	assert.Less(t, s.SinceActivity(), time.Second)
	assert.GreaterOrEqual(t, s.SinceTranscript(), 50*time.Second)

	s.RecordTranscript()
	assert.Less(t, s.SinceTranscript(), time.Second)
}

func TestSessionSnapshot(t *testing.T) {
	s := NewSession("bot1", "acme", "https://meet", "scooby", nil)
	s.Roster().Upsert(models.Participant{ID: "p1", Name: "Alice"})
	s.Roster().Upsert(models.Participant{ID: "p2", Name: "Scooby"})
	s.Advance(models.SessionStateInCall)

	snap := s.Snapshot()
	assert.Equal(t, "bot1", snap.BotID)
	assert.Equal(t, "acme", snap.OrgName)
	assert.Equal(t, "https://meet", snap.MeetingURL)
	assert.Equal(t, "in_call", snap.State)
	// The bot in the roster is not reported as a participant.
	assert.Equal(t, 1, snap.ParticipantCount)
	assert.False(t, snap.TranscriptsEnabled)
}
