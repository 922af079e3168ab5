// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package hub fans realtime frames out to the live connections of each
// tenant.
package hub

import (
	"context"
	"log/slog"
	"sync"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/logging"
)

// MessageSink is one subscriber connection. Send must be safe for
// concurrent use with Close.
type MessageSink interface {
	Send(message any) error
	Close() error
}

// ConnectionHub implements domain.TenantBroadcaster over an in-memory index
// of subscriber sinks keyed by tenant. A sink whose Send fails is
// unsubscribed after the broadcast completes; a dead consumer degrades to
// removal, never to blocking the broadcast.
type ConnectionHub struct {
	mu      sync.Mutex
	tenants map[string]map[string]MessageSink
}

// NewConnectionHub creates a new ConnectionHub.
func NewConnectionHub() *ConnectionHub {
	return &ConnectionHub{
		tenants: make(map[string]map[string]MessageSink),
	}
}

// Subscribe registers a sink for the tenant under connID. Subscribing an
// existing connID replaces (and closes) the previous sink.
func (h *ConnectionHub) Subscribe(tenant, connID string, sink MessageSink) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sinks, ok := h.tenants[tenant]
	if !ok {
		sinks = make(map[string]MessageSink)
		h.tenants[tenant] = sinks
	}
	if prev, ok := sinks[connID]; ok {
		_ = prev.Close()
	}
	sinks[connID] = sink

	slog.Debug("subscribed connection", "tenant", tenant, "connection_id", connID, "total", len(sinks))
}

// Unsubscribe removes and closes the sink registered under connID. It is a
// no-op for unknown IDs. Tenants with no remaining subscribers are pruned
// from the index.
func (h *ConnectionHub) Unsubscribe(tenant, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(tenant, connID)
}

func (h *ConnectionHub) removeLocked(tenant, connID string) {
	sinks, ok := h.tenants[tenant]
	if !ok {
		return
	}
	sink, ok := sinks[connID]
	if !ok {
		return
	}
	_ = sink.Close()
	delete(sinks, connID)
	if len(sinks) == 0 {
		delete(h.tenants, tenant)
	}

	slog.Debug("unsubscribed connection", "tenant", tenant, "connection_id", connID, "remaining", len(sinks))
}

// SubscriberCount returns the number of live subscribers for the tenant.
func (h *ConnectionHub) SubscriberCount(tenant string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.tenants[tenant])
}

// Broadcast sends the message to all of the tenant's subscribers. Failed
// sinks are collected during the send loop and unsubscribed afterwards.
func (h *ConnectionHub) Broadcast(ctx context.Context, tenant string, message any) {
	h.mu.Lock()
	snapshot := make(map[string]MessageSink, len(h.tenants[tenant]))
	for connID, sink := range h.tenants[tenant] {
		snapshot[connID] = sink
	}
	h.mu.Unlock()

	if len(snapshot) == 0 {
		return
	}

	var broken []string
	for connID, sink := range snapshot {
		if err := sink.Send(message); err != nil {
			slog.WarnContext(ctx, "broadcast send failed, pruning subscriber",
				logging.ErrKey, err, "tenant", tenant, "connection_id", connID)
			broken = append(broken, connID)
		}
	}

	if len(broken) == 0 {
		return
	}

	h.mu.Lock()
	for _, connID := range broken {
		h.removeLocked(tenant, connID)
	}
	h.mu.Unlock()
}
