// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/domain/models"
)

func TestParticipantRosterUpsert(t *testing.T) {
	r := NewParticipantRoster()

	r.Upsert(models.Participant{ID: "p1", Name: "Alice", Platform: "zoom"})
	r.Upsert(models.Participant{ID: "p2", Name: "Bob"})

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "Alice", list[0].Name)
	assert.Equal(t, "Bob", list[1].Name)
	assert.Equal(t, models.ParticipantStatusJoined, list[0].Status)

	// Repeat join updates in place without duplicating.
	r.Upsert(models.Participant{ID: "p1", Name: "Alice", IsHost: true})
	list = r.List()
	require.Len(t, list, 2)
	assert.True(t, list[0].IsHost)
}

func TestParticipantRosterIgnoresInvalid(t *testing.T) {
	r := NewParticipantRoster()

	r.Upsert(models.Participant{ID: "", Name: "Ghost"})
	r.Upsert(models.Participant{ID: "p1", Name: ""})

	assert.Empty(t, r.List())
}

func TestParticipantRosterMarkLeft(t *testing.T) {
	r := NewParticipantRoster()
	r.Upsert(models.Participant{ID: "p1", Name: "Alice"})

	assert.True(t, r.MarkLeft("p1"))
	assert.False(t, r.MarkLeft("unknown"))

	// Left participants stay in the roster.
	p, ok := r.Get("p1")
	require.True(t, ok)
	assert.Equal(t, models.ParticipantStatusLeft, p.Status)
	assert.Len(t, r.List(), 1)

	// Rejoin flips the status back.
	r.Upsert(models.Participant{ID: "p1", Name: "Alice"})
	p, _ = r.Get("p1")
	assert.Equal(t, models.ParticipantStatusJoined, p.Status)
}

func TestParticipantRosterActiveCount(t *testing.T) {
	r := NewParticipantRoster()
	r.Upsert(models.Participant{ID: "p1", Name: "Alice"})
	r.Upsert(models.Participant{ID: "p2", Name: "Bob"})
	r.Upsert(models.Participant{ID: "p3", Name: "Scooby"})

	// The bot itself does not count as an active participant.
	assert.Equal(t, 2, r.ActiveCount("scooby"))
	assert.Equal(t, 3, r.ActiveCount(""))

	r.MarkLeft("p1")
	assert.Equal(t, 1, r.ActiveCount("scooby"))

	r.MarkLeft("p2")
	assert.Equal(t, 0, r.ActiveCount("scooby"))
}

func TestParticipantRosterReset(t *testing.T) {
	r := NewParticipantRoster()
	r.Upsert(models.Participant{ID: "p1", Name: "Alice"})

	r.Reset()
	assert.Empty(t, r.List())
	_, ok := r.Get("p1")
	assert.False(t, ok)
}
