// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"strings"
	"sync"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/domain/models"
)

// ParticipantRoster is the per-session set of meeting participants.
// Participants are added on their first join event, updated in place on
// repeat joins, and flipped to left on leave events. They are never removed:
// the roster keeps the session's participant history until the session is
// torn down.
type ParticipantRoster struct {
	mu           sync.RWMutex
	order        []string
	participants map[string]*models.Participant
}

// NewParticipantRoster creates an empty roster.
func NewParticipantRoster() *ParticipantRoster {
	return &ParticipantRoster{
		participants: make(map[string]*models.Participant),
	}
}

// Upsert adds the participant or updates the existing record in place,
// setting the status to joined either way.
func (r *ParticipantRoster) Upsert(p models.Participant) {
	if p.ID == "" || p.Name == "" {
		return
	}
	p.Status = models.ParticipantStatusJoined

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.participants[p.ID]; !ok {
		r.order = append(r.order, p.ID)
	}
	stored := p
	r.participants[p.ID] = &stored
}

// Get returns a copy of the participant record.
func (r *ParticipantRoster) Get(id string) (models.Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.participants[id]
	if !ok {
		return models.Participant{}, false
	}
	return *p, true
}

// MarkLeft flips the participant's status to left. Unknown IDs are a no-op.
func (r *ParticipantRoster) MarkLeft(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[id]
	if !ok {
		return false
	}
	p.Status = models.ParticipantStatusLeft
	return true
}

// List returns the participants in join order.
func (r *ParticipantRoster) List() []models.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Participant, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.participants[id])
	}
	return out
}

// ActiveCount counts participants that are still joined, excluding the bot
// itself (matched by name, case-insensitive). This is the count the
// inactivity watchdog watches.
func (r *ParticipantRoster) ActiveCount(botName string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, p := range r.participants {
		if p.Status != models.ParticipantStatusJoined {
			continue
		}
		if botName != "" && strings.EqualFold(p.Name, botName) {
			continue
		}
		count++
	}
	return count
}

// Reset drops all participants. Called only from the teardown body.
func (r *ParticipantRoster) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.order = nil
	r.participants = make(map[string]*models.Participant)
}
