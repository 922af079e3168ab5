// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"sync/atomic"
	"time"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/domain/models"
)

// Session is the runtime state of one live bot. State transitions and the
// inactivity clocks are lock-free; the roster and dedup set carry their own
// locks so webhook handling never serializes on a session-wide mutex.
type Session struct {
	BotID              string
	OrgName            string
	MeetingURL         string
	CreatedAt          time.Time
	TranscriptsEnabled bool

	// botName excludes the bot from reported participant counts.
	botName string

	state          atomic.Int32
	lastActivity   atomic.Int64
	lastTranscript atomic.Int64

	roster *ParticipantRoster
	dedup  *SegmentDeduplicator
	sink   *TranscriptSink

	// watchdog is attached after the session is registered, so a webhook
	// racing the registration may stop it concurrently with the attach.
	watchdog atomic.Pointer[Watchdog]
}

// NewSession constructs a session in the created state with both inactivity
// clocks started at now.
func NewSession(botID, orgName, meetingURL, botName string, sink *TranscriptSink) *Session {
	s := &Session{
		BotID:              botID,
		OrgName:            orgName,
		MeetingURL:         meetingURL,
		CreatedAt:          time.Now().UTC(),
		TranscriptsEnabled: sink != nil,
		botName:            botName,
		roster:             NewParticipantRoster(),
		dedup:              NewSegmentDeduplicator(),
		sink:               sink,
	}
	s.state.Store(int32(models.SessionStateCreated))
	now := time.Now().UnixNano()
	s.lastActivity.Store(now)
	s.lastTranscript.Store(now)
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() models.SessionState {
	return models.SessionState(s.state.Load())
}

// Advance moves the session to a non-terminal target state. It returns false
// when the target is terminal (use ClaimTeardown for those) or when the
// session already reached a terminal state.
func (s *Session) Advance(target models.SessionState) bool {
	if target.IsTerminal() {
		return false
	}
	for {
		current := s.state.Load()
		if models.SessionState(current).IsTerminal() {
			return false
		}
		if s.state.CompareAndSwap(current, int32(target)) {
			return true
		}
	}
}

// ClaimTeardown atomically moves the session into the given terminal state.
// Exactly one caller wins; everyone else sees false because the state is
// already terminal. The winner owns the teardown work.
func (s *Session) ClaimTeardown(target models.SessionState) bool {
	if !target.IsTerminal() {
		return false
	}
	for {
		current := s.state.Load()
		if models.SessionState(current).IsTerminal() {
			return false
		}
		if s.state.CompareAndSwap(current, int32(target)) {
			return true
		}
	}
}

// RecordActivity resets the general activity clock.
func (s *Session) RecordActivity() {
	s.lastActivity.Store(time.Now().UnixNano())
}

// RecordTranscript resets the transcript clock.
func (s *Session) RecordTranscript() {
	s.lastTranscript.Store(time.Now().UnixNano())
}

// SinceActivity returns the time elapsed since the last recorded activity.
func (s *Session) SinceActivity() time.Duration {
	return time.Duration(time.Now().UnixNano() - s.lastActivity.Load())
}

// SinceTranscript returns the time elapsed since the last transcript event.
func (s *Session) SinceTranscript() time.Duration {
	return time.Duration(time.Now().UnixNano() - s.lastTranscript.Load())
}

// Roster returns the participant roster for the session.
func (s *Session) Roster() *ParticipantRoster {
	return s.roster
}

// Dedup returns the transcript segment dedup set.
func (s *Session) Dedup() *SegmentDeduplicator {
	return s.dedup
}

// Sink returns the transcript sink, nil when transcripts are disabled.
func (s *Session) Sink() *TranscriptSink {
	return s.sink
}

// SetWatchdog attaches the inactivity watchdog started for this session.
func (s *Session) SetWatchdog(w *Watchdog) {
	s.watchdog.Store(w)
}

// StopWatchdog stops the attached watchdog, if any. A watchdog attached
// after the session reached a terminal state stops itself on its next poll.
func (s *Session) StopWatchdog() {
	if w := s.watchdog.Load(); w != nil {
		w.Stop()
	}
}

// Snapshot returns the data view of the session.
func (s *Session) Snapshot() models.Session {
	return models.Session{
		BotID:              s.BotID,
		OrgName:            s.OrgName,
		MeetingURL:         s.MeetingURL,
		State:              s.State().String(),
		TranscriptsEnabled: s.TranscriptsEnabled,
		CreatedAt:          s.CreatedAt,
		ParticipantCount:   s.roster.ActiveCount(s.botName),
	}
}
