// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"fmt"
	"time"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/pkg/constants"
)

// SessionState is the lifecycle state of a bot session. States only ever
// advance; once a terminal state is reached no further transition is
// permitted.
type SessionState int32

const (
	// SessionStateCreated is the initial state after the provider accepted
	// the bot creation request.
	SessionStateCreated SessionState = iota
	// SessionStateJoining means the bot is joining the call.
	SessionStateJoining
	// SessionStateInCall means the bot joined the call.
	SessionStateInCall
	// SessionStateRecording means the bot joined the call and is recording.
	SessionStateRecording
	// SessionStateEnded is a terminal state: the call ended.
	SessionStateEnded
	// SessionStateDone is a terminal state: the bot finished successfully.
	SessionStateDone
	// SessionStateFatal is a terminal state: the bot hit a fatal error.
	SessionStateFatal
	// SessionStateReaped is a terminal state: the inactivity watchdog
	// reclaimed the session.
	SessionStateReaped
)

// String returns the snake_case name of the state.
func (s SessionState) String() string {
	switch s {
	case SessionStateCreated:
		return "created"
	case SessionStateJoining:
		return "joining"
	case SessionStateInCall:
		return "in_call"
	case SessionStateRecording:
		return "recording"
	case SessionStateEnded:
		return "ended"
	case SessionStateDone:
		return "done"
	case SessionStateFatal:
		return "fatal"
	case SessionStateReaped:
		return "reaped"
	default:
		return fmt.Sprintf("unknown(%d)", int32(s))
	}
}

// IsTerminal reports whether no further transition is permitted from s.
func (s SessionState) IsTerminal() bool {
	switch s {
	case SessionStateEnded, SessionStateDone, SessionStateFatal, SessionStateReaped:
		return true
	}
	return false
}

// StateFromBotStatus maps a provider bot status value to the session state
// it drives. The second return value is false for status values that do not
// drive a transition.
func StateFromBotStatus(status string) (SessionState, bool) {
	switch status {
	case constants.BotStatusJoiningCall:
		return SessionStateJoining, true
	case constants.BotStatusInCall:
		return SessionStateInCall, true
	case constants.BotStatusInCallRecording:
		return SessionStateRecording, true
	case constants.BotStatusCallEnded:
		return SessionStateEnded, true
	case constants.BotStatusDone:
		return SessionStateDone, true
	case constants.BotStatusFatal:
		return SessionStateFatal, true
	}
	return 0, false
}

// Session is the data snapshot of a live bot session, used for API responses
// and indexer messages. The runtime session object lives in the service
// layer.
type Session struct {
	BotID              string    `json:"bot_id"`
	OrgName            string    `json:"org_name"`
	MeetingURL         string    `json:"meeting_url"`
	State              string    `json:"state"`
	TranscriptsEnabled bool      `json:"transcripts_enabled"`
	CreatedAt          time.Time `json:"created_at"`
	ParticipantCount   int       `json:"participant_count,omitempty"`
}

// Tags generates a set of tags for the session for search indexing.
func (s *Session) Tags() []string {
	var tags []string

	if s == nil {
		return nil
	}

	if s.BotID != "" {
		tags = append(tags, s.BotID, fmt.Sprintf("bot_id:%s", s.BotID))
	}

	if s.OrgName != "" {
		tags = append(tags, fmt.Sprintf("org_name:%s", s.OrgName))
	}

	if s.State != "" {
		tags = append(tags, fmt.Sprintf("state:%s", s.State))
	}

	return tags
}
