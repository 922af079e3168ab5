// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

// NATS subjects that the meetbot service sends messages about.
const (
	// IndexMeetbotSessionSubject is the subject for the bot session indexing.
	// The subject is of the form: lfx.index.meetbot_session
	IndexMeetbotSessionSubject = "lfx.index.meetbot_session"
)

// MessageAction is a type for the action of a session message.
type MessageAction string

// MessageAction constants for the action of a session message.
const (
	// ActionCreated is the action for a resource creation message.
	ActionCreated MessageAction = "created"
	// ActionUpdated is the action for a resource update message.
	ActionUpdated MessageAction = "updated"
	// ActionDeleted is the action for a resource deletion message.
	ActionDeleted MessageAction = "deleted"
)

// SessionIndexerMessage is a NATS message schema for sending messages about
// bot session lifecycle changes.
type SessionIndexerMessage struct {
	Action  MessageAction     `json:"action"`
	Headers map[string]string `json:"headers"`
	Data    any               `json:"data"`
	// Tags is a list of tags to be set on the indexed resource for search.
	Tags []string `json:"tags"`
}
