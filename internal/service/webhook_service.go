// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/pkg/constants"
)

// WebhookService routes normalized provider events to the session they
// concern. Events may arrive out of order or duplicated; routing never
// fails, it only logs and drops what it cannot apply.
type WebhookService struct {
	sessions *SessionService
}

// NewWebhookService creates the event router on top of the session
// orchestrator.
func NewWebhookService(sessions *SessionService) *WebhookService {
	return &WebhookService{sessions: sessions}
}

// HandleEvent applies one canonical webhook event. Unrecognized payloads
// and events for unknown bots are logged and dropped without touching any
// session.
func (s *WebhookService) HandleEvent(ctx context.Context, event models.CanonicalEvent) {
	if event.Type == models.EventTypeUnrecognized {
		slog.WarnContext(ctx, "unrecognized webhook payload", "raw", string(event.Raw))
		return
	}

	session, ok := s.sessions.Registry().GetByBot(event.BotID())
	if !ok {
		// Late deliveries for torn-down sessions land here; this is routine.
		slog.DebugContext(ctx, "webhook event for unknown bot",
			"event_type", string(event.Type), "bot_id", event.BotID())
		return
	}

	switch event.Type {
	case models.EventTypeStatusChanged:
		s.handleStatusChange(ctx, session, event.StatusChanged)
	case models.EventTypeTranscript:
		s.handleTranscript(ctx, session, event.Transcript)
	case models.EventTypeParticipantJoined:
		s.handleParticipantJoined(ctx, session, event.ParticipantJoined)
	case models.EventTypeParticipantLeft:
		s.handleParticipantLeft(ctx, session, event.ParticipantLeft)
	}
}

func (s *WebhookService) handleStatusChange(ctx context.Context, session *Session, event *models.StatusChangedEvent) {
	state, ok := models.StateFromBotStatus(event.Status)
	if !ok {
		slog.WarnContext(ctx, "ignoring unrecognized bot status",
			"bot_id", event.BotID, "status", event.Status)
		return
	}

	session.RecordActivity()
	line := statusTranscriptLine(session.BotID, state, event.SubCode)

	if state.IsTerminal() {
		if !s.sessions.Teardown(ctx, session, state, line) {
			slog.DebugContext(ctx, "teardown already claimed", "bot_id", session.BotID)
		}
		return
	}

	if !session.Advance(state) {
		slog.DebugContext(ctx, "status change after terminal state ignored",
			"bot_id", session.BotID, "status", event.Status)
		return
	}

	session.Sink().Append(ctx, constants.TranscriptSpeakerBotStatus, line)
	s.sessions.BroadcastStatus(ctx, session)

	if state == models.SessionStateRecording {
		s.announceRecording(ctx, session)
	}
}

// announceRecording posts a chat message into the meeting once recording
// starts, telling participants how to address the bot. Best effort.
func (s *WebhookService) announceRecording(ctx context.Context, session *Session) {
	config := s.sessions.Config()
	message := fmt.Sprintf("%s is recording this meeting. Say %q to ask me something.",
		config.BotName, config.triggerWord())
	err := s.sessions.provider.SendChatMessage(ctx, session.BotID, domain.ChatMessageRequest{
		Message: message,
		Pin:     true,
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to send recording announcement",
			logging.ErrKey, err, "bot_id", session.BotID)
	}
}

func (s *WebhookService) handleTranscript(ctx context.Context, session *Session, event *models.TranscriptEvent) {
	session.RecordActivity()
	session.RecordTranscript()

	start, end := event.Bounds()
	if session.Dedup().IsDuplicate(start, end, event.Speaker) {
		return
	}

	text := event.Text()
	if strings.TrimSpace(text) == "" {
		return
	}

	session.Sink().Append(ctx, event.Speaker, text)

	if strings.Contains(strings.ToLower(text), s.sessions.Config().triggerWord()) {
		if err := s.sessions.engine.Invoke(ctx, session.OrgName, text); err != nil {
			slog.ErrorContext(ctx, "conversation engine invocation failed",
				logging.ErrKey, err, "bot_id", session.BotID)
		}
		return
	}
	s.sessions.engine.AppendHistory(event.Speaker, text)
}

func (s *WebhookService) handleParticipantJoined(ctx context.Context, session *Session, event *models.ParticipantJoinedEvent) {
	session.RecordActivity()

	session.Roster().Upsert(event.Participant)
	s.sessions.engine.SetParticipants(session.Roster().List())

	session.Sink().Append(ctx, constants.TranscriptSpeakerParticipant,
		fmt.Sprintf("JOINED : %s (%s)", event.Participant.Name, event.Participant.ID))

	slog.InfoContext(ctx, "participant joined",
		"bot_id", session.BotID,
		"participant_id", event.Participant.ID,
		"participant_name", event.Participant.Name,
	)
}

func (s *WebhookService) handleParticipantLeft(ctx context.Context, session *Session, event *models.ParticipantLeftEvent) {
	session.RecordActivity()

	// The bot's own leave event must not zero the active count early; the
	// terminal status webhook or the watchdog ends the session.
	if !strings.EqualFold(event.ParticipantName, s.sessions.Config().BotName) {
		session.Roster().MarkLeft(event.ParticipantID)
		s.sessions.engine.SetParticipants(session.Roster().List())
	}

	session.Sink().Append(ctx, constants.TranscriptSpeakerParticipant,
		fmt.Sprintf("LEFT: %s (%s)", event.ParticipantName, event.ParticipantID))

	slog.InfoContext(ctx, "participant left",
		"bot_id", session.BotID,
		"participant_id", event.ParticipantID,
		"participant_name", event.ParticipantName,
	)
}

// statusTranscriptLine renders the bot lifecycle line recorded in the
// transcript for a status transition.
func statusTranscriptLine(botID string, state models.SessionState, subCode string) string {
	switch state {
	case models.SessionStateJoining:
		return fmt.Sprintf("Bot [id : %s] is joining the meeting", botID)
	case models.SessionStateInCall:
		return fmt.Sprintf("Bot [id : %s] joined the meeting", botID)
	case models.SessionStateRecording:
		return fmt.Sprintf("Bot [id : %s] started recording", botID)
	case models.SessionStateEnded:
		return "Call ended"
	case models.SessionStateDone:
		return fmt.Sprintf("Bot [id : %s] finished successfully", botID)
	case models.SessionStateFatal:
		if subCode == "" {
			subCode = "unknown reason"
		}
		return fmt.Sprintf("Bot fatal error: %s", subCode)
	}
	return ""
}
