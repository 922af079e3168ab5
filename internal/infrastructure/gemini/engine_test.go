// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package gemini

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/domain/models"
)

func newDisabledEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(context.Background(), Config{BotName: "scooby"}, &domain.MockTenantBroadcaster{})
	require.NoError(t, err)
	return engine
}

func TestNewEngineWithoutKeyIsDisabled(t *testing.T) {
	engine := newDisabledEngine(t)
	assert.Nil(t, engine.client)
	assert.Equal(t, DefaultModel, engine.config.Model)

	// A disabled engine drops invocations without error.
	assert.NoError(t, engine.Invoke(context.Background(), "acme", "hey scooby"))
}

func TestEngineContext(t *testing.T) {
	engine := newDisabledEngine(t)

	engine.SetBotID("bot1")
	engine.SetParticipants([]models.Participant{
		{ID: "p1", Name: "Alice"},
		{ID: "p2", Name: "Bob"},
	})
	engine.AppendHistory("Alice", "good morning")
	engine.AppendHistory("Bob", "hello everyone")

	prompt := engine.buildPrompt("what did I miss")
	assert.Contains(t, prompt, "You are scooby")
	assert.Contains(t, prompt, "bot id bot1")
	assert.Contains(t, prompt, "- Alice")
	assert.Contains(t, prompt, "- Bob")
	assert.Contains(t, prompt, "Alice: good morning")
	assert.Contains(t, prompt, "Bob: hello everyone")
	assert.Contains(t, prompt, "A participant just said: what did I miss")

	engine.ClearContext()
	prompt = engine.buildPrompt("anyone there")
	assert.NotContains(t, prompt, "bot id")
	assert.NotContains(t, prompt, "Alice")
}

func TestEngineHistoryLimit(t *testing.T) {
	engine := newDisabledEngine(t)

	for i := 0; i < historyLimit+25; i++ {
		engine.AppendHistory("Alice", strings.Repeat("x", 3))
	}

	engine.mu.Lock()
	defer engine.mu.Unlock()
	assert.Len(t, engine.history, historyLimit)
}
