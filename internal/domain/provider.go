// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import "context"

// CreateBotRequest carries everything the provider needs to put a bot into
// a meeting.
type CreateBotRequest struct {
	MeetingURL string
	BotName    string
	// RealtimeWebhookURL receives transcript and participant events.
	RealtimeWebhookURL string
	// RealtimeEvents is the event subscription list for the realtime webhook.
	RealtimeEvents []string
	// OutputMediaURL is the webpage rendered as the bot's camera, optional.
	OutputMediaURL string
}

// ChatMessageRequest is a chat message sent into the meeting through the bot.
type ChatMessageRequest struct {
	Message string
	// To scopes delivery, e.g. "everyone" or a participant id.
	To string
	Pin bool
}

// BotProvider defines the interface for the external meeting-bot provider.
// Implementations must surface timeout, non-2xx and network failures as
// distinct error types.
type BotProvider interface {
	// CreateBot asks the provider to join a meeting and returns the
	// provider-assigned bot ID.
	CreateBot(ctx context.Context, request CreateBotRequest) (string, error)

	// RemoveBot makes the bot leave its call.
	RemoveBot(ctx context.Context, botID string) error

	// SendChatMessage posts a chat message into the bot's meeting.
	SendChatMessage(ctx context.Context, botID string, request ChatMessageRequest) error
}
