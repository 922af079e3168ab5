// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package gemini adapts the Gemini live API to the conversation engine
// interface. Each invocation opens one live session, streams the spoken
// response as base64 audio frames to the tenant's subscribers, and closes.
package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/logging"
)

const (
	// DefaultModel is the live model used when none is configured.
	DefaultModel = "gemini-2.0-flash-live-001"

	// historyLimit caps how many transcript lines are replayed into the
	// prompt on each invocation.
	historyLimit = 50
)

// Config holds the configuration for the engine.
type Config struct {
	APIKey string
	// Optional: override the live model.
	Model string
	// BotName is used in the prompt so the model knows its own identity.
	BotName string
}

// Engine implements the conversation engine on the Gemini live API. It
// keeps a running view of the meeting (bot identity, participants, recent
// transcript lines) that is folded into each invocation's prompt.
type Engine struct {
	client      *genai.Client
	config      Config
	broadcaster domain.TenantBroadcaster

	mu           sync.Mutex
	botID        string
	participants []models.Participant
	history      []string
}

// Ensure that Engine implements domain.ConversationEngine
var _ domain.ConversationEngine = (*Engine)(nil)

// NewEngine creates the Gemini-backed conversation engine. When no API key
// is configured the engine is disabled: Invoke logs and returns nil so the
// session flow is unaffected.
func NewEngine(ctx context.Context, config Config, broadcaster domain.TenantBroadcaster) (*Engine, error) {
	if config.Model == "" {
		config.Model = DefaultModel
	}

	engine := &Engine{
		config:      config,
		broadcaster: broadcaster,
	}
	if config.APIKey == "" {
		slog.InfoContext(ctx, "conversation engine disabled: no API key configured")
		return engine, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	engine.client = client
	return engine, nil
}

// SetBotID tells the engine which bot identity it is speaking through.
func (e *Engine) SetBotID(botID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.botID = botID
}

// SetParticipants replaces the engine's view of who is in the meeting.
func (e *Engine) SetParticipants(participants []models.Participant) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.participants = participants
}

// AppendHistory appends a transcript line to the running chat history.
func (e *Engine) AppendHistory(speaker, text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = append(e.history, fmt.Sprintf("%s: %s", speaker, text))
	if len(e.history) > historyLimit {
		e.history = e.history[len(e.history)-historyLimit:]
	}
}

// ClearContext drops the bot identity, participants and chat history.
func (e *Engine) ClearContext() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.botID = ""
	e.participants = nil
	e.history = nil
}

// Invoke sends the transcript text to the live model and streams the spoken
// response to the tenant's subscribers as base64 audio frames.
func (e *Engine) Invoke(ctx context.Context, orgName, text string) error {
	if e.client == nil {
		slog.DebugContext(ctx, "conversation engine disabled, dropping invocation", "org_name", orgName)
		return nil
	}

	prompt := e.buildPrompt(text)

	session, err := e.client.Live.Connect(ctx, e.config.Model, &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio},
		Temperature:        genai.Ptr[float32](0),
	})
	if err != nil {
		return fmt.Errorf("failed to connect live session: %w", err)
	}
	defer session.Close()

	err = session.SendClientContent(genai.LiveClientContentInput{
		Turns:        []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		TurnComplete: genai.Ptr(true),
	})
	if err != nil {
		return fmt.Errorf("failed to send client content: %w", err)
	}

	for {
		message, err := session.Receive()
		if err != nil {
			// The server closes the stream when the turn is delivered.
			slog.DebugContext(ctx, "live session receive ended", logging.ErrKey, err)
			return nil
		}
		if message.ServerContent == nil {
			continue
		}

		if message.ServerContent.ModelTurn != nil {
			for _, part := range message.ServerContent.ModelTurn.Parts {
				if part.InlineData == nil || len(part.InlineData.Data) == 0 {
					continue
				}
				e.broadcaster.Broadcast(ctx, orgName, map[string]any{
					"type":     "audio",
					"data":     base64.StdEncoding.EncodeToString(part.InlineData.Data),
					"bot_type": e.config.BotName,
				})
			}
		}

		if message.ServerContent.TurnComplete {
			return nil
		}
	}
}

// buildPrompt folds the meeting context and recent transcript history
// around the text that triggered the invocation.
func (e *Engine) buildPrompt(text string) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a meeting assistant bot", e.config.BotName)
	if e.botID != "" {
		fmt.Fprintf(&b, " (bot id %s)", e.botID)
	}
	b.WriteString(" attending a live meeting. Answer briefly and conversationally.\n")

	if len(e.participants) > 0 {
		b.WriteString("Participants in the meeting:\n")
		for _, p := range e.participants {
			fmt.Fprintf(&b, "- %s\n", p.Name)
		}
	}

	if len(e.history) > 0 {
		b.WriteString("Recent conversation:\n")
		for _, line := range e.history {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	fmt.Fprintf(&b, "A participant just said: %s\n", text)
	return b.String()
}
