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
	"github.com/linuxfoundation/lfx-v2-meetbot-service/pkg/concurrent"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/pkg/constants"
)

// SessionService orchestrates the session lifecycle: starting a bot for a
// tenant, and running the teardown body exactly once whichever trigger
// (terminal webhook, watchdog reap) wins the claim.
type SessionService struct {
	// lifecycle is the service-wide context. Watchdogs and the teardown
	// work they trigger run on it; a session must outlive the HTTP request
	// that started it.
	lifecycle   context.Context
	config      ServiceConfig
	registry    *SessionRegistry
	provider    domain.BotProvider
	intake      domain.TranscriptIntake
	engine      domain.ConversationEngine
	indexer     domain.SessionIndexSender
	broadcaster domain.TenantBroadcaster
}

// NewSessionService creates the session orchestrator. ctx is the service
// lifecycle context, cancelled only on shutdown. intake, engine, indexer
// and broadcaster may be nil-valued implementations but not nil
// interfaces; pass no-op implementations when a collaborator is disabled.
func NewSessionService(
	ctx context.Context,
	config ServiceConfig,
	registry *SessionRegistry,
	provider domain.BotProvider,
	intake domain.TranscriptIntake,
	engine domain.ConversationEngine,
	indexer domain.SessionIndexSender,
	broadcaster domain.TenantBroadcaster,
) *SessionService {
	return &SessionService{
		lifecycle:   ctx,
		config:      config,
		registry:    registry,
		provider:    provider,
		intake:      intake,
		engine:      engine,
		indexer:     indexer,
		broadcaster: broadcaster,
	}
}

// Registry exposes the underlying registry for event routing and
// diagnostics.
func (s *SessionService) Registry() *SessionRegistry {
	return s.registry
}

// Config returns the shared session-layer configuration.
func (s *SessionService) Config() ServiceConfig {
	return s.config
}

// ServiceReady checks if the service is ready to take inbound requests.
func (s *SessionService) ServiceReady() bool {
	return s.registry != nil &&
		s.provider != nil &&
		s.indexer != nil &&
		s.broadcaster != nil
}

// StartSession creates a provider bot for the tenant's meeting and registers
// the session. It returns a validation error on missing inputs, a conflict
// error when the tenant already has a live session, and an unavailable or
// internal error when the provider call fails.
func (s *SessionService) StartSession(ctx context.Context, orgName, meetingURL string, saveTranscript bool) (*Session, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}

	if strings.TrimSpace(orgName) == "" {
		return nil, domain.NewValidationError("org_name is required")
	}
	if strings.TrimSpace(meetingURL) == "" {
		return nil, domain.NewValidationError("meeting_url is required")
	}

	// Cheap early check; the registry re-checks atomically on Register.
	if existing, ok := s.registry.GetByTenant(orgName); ok {
		return nil, domain.NewConflictError(
			fmt.Sprintf("organization %s already has an active session with bot %s", orgName, existing.BotID))
	}

	botID, err := s.provider.CreateBot(ctx, domain.CreateBotRequest{
		MeetingURL:         meetingURL,
		BotName:            s.config.BotName,
		RealtimeWebhookURL: s.config.realtimeWebhookURL(),
		RealtimeEvents:     realtimeEvents(),
		OutputMediaURL:     s.config.OutputMediaURL,
	})
	if err != nil {
		slog.ErrorContext(ctx, "provider bot creation failed", logging.ErrKey, err, "org_name", orgName)
		return nil, err
	}

	var sink *TranscriptSink
	if saveTranscript {
		sink = NewTranscriptSink(s.config.TranscriptsDir, botID, meetingURL, orgName, s.intake)
	}
	session := NewSession(botID, orgName, meetingURL, s.config.BotName, sink)

	if err := s.registry.Register(session); err != nil {
		// Lost the registration race; the bot we just created is an orphan.
		if removeErr := s.provider.RemoveBot(ctx, botID); removeErr != nil {
			slog.ErrorContext(ctx, "failed to remove orphaned bot", logging.ErrKey, removeErr, "bot_id", botID)
		}
		return nil, err
	}

	s.engine.SetBotID(botID)

	watchdog := StartWatchdog(s.lifecycle, session, s.config.Watchdog, s.reapSession)
	session.SetWatchdog(watchdog)

	if err := s.indexer.SendIndexSession(ctx, models.ActionCreated, session.Snapshot()); err != nil {
		slog.ErrorContext(ctx, "failed to send session index message", logging.ErrKey, err, "bot_id", botID)
	}

	slog.InfoContext(ctx, "session started",
		"bot_id", botID,
		"org_name", orgName,
		"meeting_url", meetingURL,
		"transcripts_enabled", session.TranscriptsEnabled,
	)

	s.BroadcastStatus(ctx, session)

	return session, nil
}

// Teardown runs the session cleanup body after winning the teardown claim
// for the given terminal state. It returns false without side effects when
// another caller already claimed teardown. finalLine, when non-empty, is
// appended to the transcript as a closing bot-status line before ingestion.
func (s *SessionService) Teardown(ctx context.Context, session *Session, target models.SessionState, finalLine string) bool {
	if !session.ClaimTeardown(target) {
		return false
	}

	session.StopWatchdog()

	if finalLine != "" {
		session.Sink().Append(ctx, constants.TranscriptSpeakerBotStatus, finalLine)
	}

	pool := concurrent.NewWorkerPool(3)
	errs := pool.RunAll(ctx,
		func() error {
			return s.provider.RemoveBot(ctx, session.BotID)
		},
		func() error {
			result := session.Sink().FinalizeAndIngest(ctx)
			if result != nil && !result.Skipped && !result.Success {
				slog.WarnContext(ctx, "transcript ingestion incomplete",
					"bot_id", session.BotID, "step", result.Step)
			}
			return nil
		},
		func() error {
			return s.indexer.SendDeleteIndexSession(ctx, session.BotID)
		},
	)
	for _, err := range errs {
		slog.ErrorContext(ctx, "session teardown step failed", logging.ErrKey, err, "bot_id", session.BotID)
	}

	session.Roster().Reset()
	s.engine.SetParticipants(nil)
	s.engine.ClearContext()

	s.BroadcastStatus(ctx, session)

	s.registry.Remove(session.BotID)

	slog.InfoContext(ctx, "session torn down",
		"bot_id", session.BotID,
		"org_name", session.OrgName,
		"state", target.String(),
	)
	return true
}

// reapSession is the watchdog callback. It re-resolves the bot id through
// the registry so a watchdog that outlived its session exits without side
// effects.
func (s *SessionService) reapSession(ctx context.Context, session *Session, reason string) {
	current, ok := s.registry.GetByBot(session.BotID)
	if !ok || current != session {
		return
	}
	s.Teardown(ctx, session, models.SessionStateReaped,
		fmt.Sprintf("Call ended by inactivity watchdog: %s", reason))
}

// ListSessions returns snapshots of every live session for diagnostics.
func (s *SessionService) ListSessions() []models.Session {
	live := s.registry.List()
	snapshots := make([]models.Session, 0, len(live))
	for _, session := range live {
		snapshots = append(snapshots, session.Snapshot())
	}
	return snapshots
}

// BroadcastStatus pushes the session's current status frame to the tenant's
// subscribers.
func (s *SessionService) BroadcastStatus(ctx context.Context, session *Session) {
	s.broadcaster.Broadcast(ctx, session.OrgName, map[string]any{
		"type":     "status",
		"bot_id":   session.BotID,
		"status":   session.State().String(),
		"bot_type": s.config.BotName,
	})
}
