// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

// ParticipantStatus is the roster status of a meeting participant.
type ParticipantStatus string

const (
	// ParticipantStatusJoined means the participant is currently in the call.
	ParticipantStatusJoined ParticipantStatus = "joined"
	// ParticipantStatusLeft means the participant left the call. Left
	// participants stay in the roster for the session's lifetime.
	ParticipantStatusLeft ParticipantStatus = "left"
)

// Participant is one meeting participant as reported by the bot provider.
type Participant struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	IsHost    bool              `json:"is_host"`
	Platform  string            `json:"platform"`
	ExtraData map[string]any    `json:"extra_data,omitempty"`
	Status    ParticipantStatus `json:"status"`
}
