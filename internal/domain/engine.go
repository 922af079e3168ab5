// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/domain/models"
)

// ConversationEngine is the narrow surface the session layer needs from the
// conversational AI engine. The engine itself (prompting, retrieval tools,
// audio synthesis) is an external collaborator.
type ConversationEngine interface {
	// SetParticipants replaces the engine's view of who is in the meeting.
	SetParticipants(participants []models.Participant)

	// SetBotID tells the engine which bot identity it is speaking through.
	SetBotID(botID string)

	// AppendHistory appends transcript text to the engine's running chat
	// history without invoking it.
	AppendHistory(speaker, text string)

	// Invoke sends transcript text to the engine for a spoken response.
	// Responses are delivered out of band (e.g. audio frames broadcast to
	// the tenant's subscribers).
	Invoke(ctx context.Context, orgName, text string) error

	// ClearContext drops the bot identity, participants and chat history.
	ClearContext()
}
