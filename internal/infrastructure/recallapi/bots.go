// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package recallapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/domain"
)

// createBotPayload is the Recall bot creation request body.
type createBotPayload struct {
	MeetingURL      string            `json:"meeting_url"`
	BotName         string            `json:"bot_name"`
	RecordingConfig *recordingConfig  `json:"recording_config,omitempty"`
	OutputMedia     *outputMedia      `json:"output_media,omitempty"`
	Variant         map[string]string `json:"variant,omitempty"`
}

type recordingConfig struct {
	Transcript        *transcriptConfig  `json:"transcript,omitempty"`
	RealtimeEndpoints []realtimeEndpoint `json:"realtime_endpoints,omitempty"`
}

type transcriptConfig struct {
	Provider transcriptProvider `json:"provider"`
}

// transcriptProvider selects the platform's own caption stream.
type transcriptProvider struct {
	MeetingCaptions struct{} `json:"meeting_captions"`
}

type realtimeEndpoint struct {
	Type   string   `json:"type"`
	URL    string   `json:"url"`
	Events []string `json:"events"`
}

type outputMedia struct {
	Camera outputCamera `json:"camera"`
}

type outputCamera struct {
	Kind   string            `json:"kind"`
	Config map[string]string `json:"config"`
}

type createBotResponse struct {
	ID string `json:"id"`
}

type chatMessagePayload struct {
	Message string `json:"message"`
	To      string `json:"to,omitempty"`
	Pin     bool   `json:"pin,omitempty"`
}

// Ensure that Client implements domain.BotProvider
var _ domain.BotProvider = (*Client)(nil)

// CreateBot asks Recall to put a bot into the meeting and returns the
// provider-assigned bot id.
func (c *Client) CreateBot(ctx context.Context, request domain.CreateBotRequest) (string, error) {
	payload := createBotPayload{
		MeetingURL: request.MeetingURL,
		BotName:    request.BotName,
		RecordingConfig: &recordingConfig{
			Transcript: &transcriptConfig{},
		},
		Variant: map[string]string{
			"zoom":            "web_4_core",
			"google_meet":     "web_4_core",
			"microsoft_teams": "web_4_core",
		},
	}
	if request.RealtimeWebhookURL != "" {
		payload.RecordingConfig.RealtimeEndpoints = []realtimeEndpoint{{
			Type:   "webhook",
			URL:    request.RealtimeWebhookURL,
			Events: request.RealtimeEvents,
		}}
	}
	if request.OutputMediaURL != "" {
		payload.OutputMedia = &outputMedia{
			Camera: outputCamera{
				Kind:   "webpage",
				Config: map[string]string{"url": request.OutputMediaURL},
			},
		}
	}

	status, body, err := c.doRequest(ctx, http.MethodPost, "/api/v1/bot/", payload)
	if err != nil {
		return "", classifyTransportError("create bot", err)
	}
	if status < 200 || status >= 300 {
		return "", classifyStatusError("create bot", status, body)
	}

	var resp createBotResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", domain.NewInternalError("failed to decode create bot response", err)
	}
	if resp.ID == "" {
		return "", domain.NewInternalError("create bot response missing bot id")
	}
	return resp.ID, nil
}

// RemoveBot makes the bot leave its call. A 404 is treated as success: the
// bot is already gone.
func (c *Client) RemoveBot(ctx context.Context, botID string) error {
	path := fmt.Sprintf("/api/v1/bot/%s/leave_call/", botID)
	status, body, err := c.doRequest(ctx, http.MethodPost, path, nil)
	if err != nil {
		return classifyTransportError("remove bot", err)
	}
	if status == http.StatusNotFound {
		return nil
	}
	if status < 200 || status >= 300 {
		return classifyStatusError("remove bot", status, body)
	}
	return nil
}

// SendChatMessage posts a chat message into the bot's meeting.
func (c *Client) SendChatMessage(ctx context.Context, botID string, request domain.ChatMessageRequest) error {
	path := fmt.Sprintf("/api/v1/bot/%s/send_chat_message/", botID)
	payload := chatMessagePayload{
		Message: request.Message,
		To:      request.To,
		Pin:     request.Pin,
	}
	status, body, err := c.doRequest(ctx, http.MethodPost, path, payload)
	if err != nil {
		return classifyTransportError("send chat message", err)
	}
	if status < 200 || status >= 300 {
		return classifyStatusError("send chat message", status, body)
	}
	return nil
}

// classifyTransportError maps network-level failures to domain errors,
// distinguishing timeouts from other connectivity problems.
func classifyTransportError(operation string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.NewUnavailableError(fmt.Sprintf("%s request timed out", operation), err)
	}
	return domain.NewUnavailableError(fmt.Sprintf("%s request failed", operation), err)
}

// classifyStatusError maps non-2xx responses to domain errors.
func classifyStatusError(operation string, status int, body []byte) error {
	apiErr := parseErrorResponse(status, body)
	switch {
	case status == http.StatusNotFound:
		return domain.NewNotFoundError(fmt.Sprintf("%s: bot not found", operation), apiErr)
	case status >= 500 || status == http.StatusTooManyRequests:
		return domain.NewUnavailableError(fmt.Sprintf("%s rejected by provider", operation), apiErr)
	default:
		return domain.NewInternalError(fmt.Sprintf("%s rejected by provider", operation), apiErr)
	}
}
