// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"strings"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/pkg/constants"
)

// ServiceConfig carries the session-layer settings shared by all sessions.
type ServiceConfig struct {
	// BotName is the display name the bot joins meetings with.
	BotName string
	// TriggerWord invokes the conversation engine when it appears in a
	// transcript fragment. Defaults to the bot name.
	TriggerWord string
	// TranscriptsDir is where per-session transcript files accumulate.
	// Empty disables transcript capture for every session.
	TranscriptsDir string
	// WebhookBaseURL is the externally reachable base URL of this service,
	// used to build the realtime webhook endpoint handed to the provider.
	WebhookBaseURL string
	// OutputMediaURL is the webpage the provider renders as the bot's
	// camera, optional.
	OutputMediaURL string
	Watchdog       WatchdogConfig
}

// triggerWord returns the lowercase trigger word, falling back to the bot
// name.
func (c ServiceConfig) triggerWord() string {
	if c.TriggerWord != "" {
		return strings.ToLower(c.TriggerWord)
	}
	return strings.ToLower(c.BotName)
}

// realtimeWebhookURL builds the realtime event endpoint the provider pushes
// to.
func (c ServiceConfig) realtimeWebhookURL() string {
	if c.WebhookBaseURL == "" {
		return ""
	}
	return strings.TrimRight(c.WebhookBaseURL, "/") + "/webhooks/recall/realtime"
}

// realtimeEvents is the provider event subscription list for the realtime
// endpoint.
func realtimeEvents() []string {
	return []string{
		constants.BotEventTranscriptData,
		constants.BotEventParticipantJoin,
		constants.BotEventParticipantLeave,
	}
}
