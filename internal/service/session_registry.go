// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"fmt"
	"sync"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/domain"
)

// SessionRegistry tracks live sessions with two indexes: one per tenant and
// one per bot id. A tenant holds at most one live session at a time.
type SessionRegistry struct {
	mu       sync.Mutex
	byTenant map[string]*Session
	byBot    map[string]*Session
}

// NewSessionRegistry returns an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		byTenant: make(map[string]*Session),
		byBot:    make(map[string]*Session),
	}
}

// Register adds a session, enforcing the one-live-session-per-tenant rule.
// It returns a conflict error without mutating anything when the tenant
// already has a live session.
func (r *SessionRegistry) Register(session *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byTenant[session.OrgName]; ok {
		return domain.NewConflictError(
			fmt.Sprintf("organization %s already has an active session with bot %s", session.OrgName, existing.BotID))
	}
	r.byTenant[session.OrgName] = session
	r.byBot[session.BotID] = session
	return nil
}

// GetByBot returns the session for a bot id.
func (r *SessionRegistry) GetByBot(botID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byBot[botID]
	return s, ok
}

// GetByTenant returns the live session for a tenant.
func (r *SessionRegistry) GetByTenant(orgName string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byTenant[orgName]
	return s, ok
}

// Remove drops the session for a bot id from both indexes. The tenant index
// is only cleared when it still points at the same session, so a tenant that
// already started a new session is unaffected. Removing an unknown bot id is
// a no-op.
func (r *SessionRegistry) Remove(botID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byBot[botID]
	if !ok {
		return
	}
	delete(r.byBot, botID)
	if current, ok := r.byTenant[s.OrgName]; ok && current == s {
		delete(r.byTenant, s.OrgName)
	}
}

// List returns all live sessions in no particular order.
func (r *SessionRegistry) List() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessions := make([]*Session, 0, len(r.byBot))
	for _, s := range r.byBot {
		sessions = append(sessions, s)
	}
	return sessions
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byBot)
}
