// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/service"
)

// SessionHandler serves the session management endpoints.
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler creates the session endpoints handler.
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// startSessionRequest is the body of POST /sessions.
type startSessionRequest struct {
	MeetingURL     string `json:"meeting_url"`
	OrgName        string `json:"org_name"`
	SaveTranscript bool   `json:"save_transcript"`
}

// startSessionResponse is the body of a successful POST /sessions.
type startSessionResponse struct {
	BotID string `json:"bot_id"`
}

// StartSession handles POST /sessions: it creates a provider bot for the
// tenant's meeting. Replies 201 with the bot id, 409 when the tenant
// already has a live session, 502 when the provider is unreachable.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDomainError(w, domain.NewValidationError("invalid request body", err))
		return
	}

	session, err := h.sessions.StartSession(ctx, req.OrgName, req.MeetingURL, req.SaveTranscript)
	if err != nil {
		slog.ErrorContext(ctx, "failed to start session", logging.ErrKey, err, "org_name", req.OrgName)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, startSessionResponse{BotID: session.BotID})
}

// ListSessions handles GET /sessions: a diagnostics listing of every live
// session.
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sessions.ListSessions())
}

// Livez handles GET /livez.
func (h *SessionHandler) Livez(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Readyz handles GET /readyz. The service is ready once every collaborator
// the session lifecycle depends on is wired.
func (h *SessionHandler) Readyz(w http.ResponseWriter, _ *http.Request) {
	if !h.sessions.ServiceReady() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("service unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
