// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/hub"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/logging"
)

// WebSocketHandler serves GET /ws: it upgrades the connection and
// subscribes it to the tenant's broadcast channel.
type WebSocketHandler struct {
	hub      *hub.ConnectionHub
	botName  string
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates the websocket attach handler.
func NewWebSocketHandler(connectionHub *hub.ConnectionHub, botName string) *WebSocketHandler {
	return &WebSocketHandler{
		hub:     connectionHub,
		botName: botName,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from tenant-owned origins.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Attach upgrades the request and pumps broadcast frames to the client
// until it disconnects.
func (h *WebSocketHandler) Attach(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orgName := r.URL.Query().Get("org_name")
	if orgName == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "org_name query parameter is required"})
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.ErrorContext(ctx, "websocket upgrade failed", logging.ErrKey, err)
		return
	}

	connID := "ws_" + uuid.New().String()
	sink := hub.NewWebSocketSink(conn)
	h.hub.Subscribe(orgName, connID, sink)

	slog.InfoContext(ctx, "websocket subscriber attached",
		"org_name", orgName,
		"conn_id", connID,
	)

	// Initial frame confirming the subscription.
	if err := sink.Send(map[string]any{
		"type":      "status",
		"connected": true,
		"bot_type":  h.botName,
	}); err != nil {
		h.hub.Unsubscribe(orgName, connID)
		return
	}

	// Drain inbound frames to observe the close; all traffic is outbound.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.hub.Unsubscribe(orgName, connID)
	slog.InfoContext(ctx, "websocket subscriber detached",
		"org_name", orgName,
		"conn_id", connID,
	)
}
