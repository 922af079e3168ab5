// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package recallapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/domain"
)

func newTestClient(serverURL string) *Client {
	return NewClient(Config{
		APIKey:         "test-key",
		BaseURL:        serverURL,
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	})
}

func TestCreateBot(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/bot/", r.URL.Path)
		assert.Equal(t, "Token test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"bot-abc"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	botID, err := client.CreateBot(context.Background(), domain.CreateBotRequest{
		MeetingURL:         "https://zoom.us/j/123",
		BotName:            "scooby",
		RealtimeWebhookURL: "https://meetbot.example.org/webhooks/recall/realtime",
		RealtimeEvents:     []string{"transcript.data"},
		OutputMediaURL:     "https://meetbot.example.org/camera",
	})
	require.NoError(t, err)
	assert.Equal(t, "bot-abc", botID)

	assert.Equal(t, "https://zoom.us/j/123", captured["meeting_url"])
	assert.Equal(t, "scooby", captured["bot_name"])

	recording, ok := captured["recording_config"].(map[string]any)
	require.True(t, ok)
	endpoints, ok := recording["realtime_endpoints"].([]any)
	require.True(t, ok)
	require.Len(t, endpoints, 1)
	endpoint := endpoints[0].(map[string]any)
	assert.Equal(t, "webhook", endpoint["type"])
	assert.Equal(t, "https://meetbot.example.org/webhooks/recall/realtime", endpoint["url"])

	media, ok := captured["output_media"].(map[string]any)
	require.True(t, ok)
	camera := media["camera"].(map[string]any)
	assert.Equal(t, "webpage", camera["kind"])
}

func TestCreateBotMissingID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).CreateBot(context.Background(), domain.CreateBotRequest{
		MeetingURL: "https://meet", BotName: "scooby",
	})
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeInternal, domain.GetErrorType(err))
}

func TestCreateBotClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"invalid meeting url"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).CreateBot(context.Background(), domain.CreateBotRequest{
		MeetingURL: "not-a-url", BotName: "scooby",
	})
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeInternal, domain.GetErrorType(err))
	assert.ErrorContains(t, err, "invalid meeting url")
	assert.Equal(t, int32(1), calls.Load())
}

func TestCreateBotRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"id":"bot-abc"}`))
	}))
	defer server.Close()

	botID, err := newTestClient(server.URL).CreateBot(context.Background(), domain.CreateBotRequest{
		MeetingURL: "https://meet", BotName: "scooby",
	})
	require.NoError(t, err)
	assert.Equal(t, "bot-abc", botID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCreateBotExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).CreateBot(context.Background(), domain.CreateBotRequest{
		MeetingURL: "https://meet", BotName: "scooby",
	})
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))
	// MaxRetries 2 means 3 attempts total.
	assert.Equal(t, int32(3), calls.Load())
}

func TestCreateBotNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	_, err := newTestClient(server.URL).CreateBot(context.Background(), domain.CreateBotRequest{
		MeetingURL: "https://meet", BotName: "scooby",
	})
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))
}

func TestRemoveBot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/bot/bot-abc/leave_call/", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := newTestClient(server.URL).RemoveBot(context.Background(), "bot-abc")
	assert.NoError(t, err)
}

func TestRemoveBotAlreadyGone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	err := newTestClient(server.URL).RemoveBot(context.Background(), "bot-abc")
	assert.NoError(t, err)
}

func TestSendChatMessage(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/bot/bot-abc/send_chat_message/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := newTestClient(server.URL).SendChatMessage(context.Background(), "bot-abc", domain.ChatMessageRequest{
		Message: "hello",
		To:      "everyone",
		Pin:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", captured["message"])
	assert.Equal(t, "everyone", captured["to"])
	assert.Equal(t, true, captured["pin"])
}
