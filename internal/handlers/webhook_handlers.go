// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/middleware"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/service"
)

// WebhookHandler serves the provider webhook endpoints. Both endpoints
// always acknowledge with 200 regardless of processing outcome: the
// provider retries on non-2xx, and a replayed event cannot be applied more
// safely than a dropped one.
type WebhookHandler struct {
	webhooks *service.WebhookService
}

// NewWebhookHandler creates the provider webhook handler.
func NewWebhookHandler(webhooks *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks}
}

// HandleStatusWebhook handles POST /webhooks/recall/status.
func (h *WebhookHandler) HandleStatusWebhook(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r)
}

// HandleRealtimeWebhook handles POST /webhooks/recall/realtime.
func (h *WebhookHandler) HandleRealtimeWebhook(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r)
}

func (h *WebhookHandler) handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw, ok := middleware.GetRawBodyFromContext(ctx)
	if !ok {
		var err error
		raw, err = io.ReadAll(r.Body)
		if err != nil {
			slog.ErrorContext(ctx, "failed to read webhook body", logging.ErrKey, err)
			h.acknowledge(w)
			return
		}
	}

	event := models.ParseWebhookEvent(raw)
	h.webhooks.HandleEvent(ctx, event)

	h.acknowledge(w)
}

func (h *WebhookHandler) acknowledge(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
