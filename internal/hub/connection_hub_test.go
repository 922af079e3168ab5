// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package hub

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// recordingSink captures everything sent to it.
type recordingSink struct {
	mu       sync.Mutex
	messages []any
	sendErr  error
	closed   bool
}

func (s *recordingSink) Send(message any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.messages = append(s.messages, message)
	return nil
}

func (s *recordingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func TestConnectionHubBroadcast(t *testing.T) {
	ctx := context.Background()
	h := NewConnectionHub()

	one := &recordingSink{}
	two := &recordingSink{}
	h.Subscribe("acme", "c1", one)
	h.Subscribe("acme", "c2", two)
	assert.Equal(t, 2, h.SubscriberCount("acme"))

	h.Broadcast(ctx, "acme", map[string]any{"type": "status"})
	assert.Equal(t, 1, one.count())
	assert.Equal(t, 1, two.count())
}

func TestConnectionHubBroadcastIsolatesTenants(t *testing.T) {
	ctx := context.Background()
	h := NewConnectionHub()

	acme := &recordingSink{}
	globex := &recordingSink{}
	h.Subscribe("acme", "c1", acme)
	h.Subscribe("globex", "c1", globex)

	h.Broadcast(ctx, "acme", "hello")
	assert.Equal(t, 1, acme.count())
	assert.Equal(t, 0, globex.count())
}

func TestConnectionHubPrunesBrokenSinks(t *testing.T) {
	ctx := context.Background()
	h := NewConnectionHub()

	healthy := &recordingSink{}
	broken := &recordingSink{sendErr: errors.New("connection reset")}
	h.Subscribe("acme", "ok", healthy)
	h.Subscribe("acme", "dead", broken)

	h.Broadcast(ctx, "acme", "first")
	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, 1, h.SubscriberCount("acme"))
	assert.True(t, broken.closed)

	// Second broadcast only reaches the survivor.
	h.Broadcast(ctx, "acme", "second")
	assert.Equal(t, 2, healthy.count())
	assert.Equal(t, 0, broken.count())
}

func TestConnectionHubUnsubscribe(t *testing.T) {
	h := NewConnectionHub()

	sink := &recordingSink{}
	h.Subscribe("acme", "c1", sink)
	h.Unsubscribe("acme", "c1")

	assert.True(t, sink.closed)
	assert.Equal(t, 0, h.SubscriberCount("acme"))

	// Tenant entry is pruned on last unsubscribe.
	h.mu.Lock()
	_, exists := h.tenants["acme"]
	h.mu.Unlock()
	assert.False(t, exists)

	// Unknown IDs are a no-op.
	h.Unsubscribe("acme", "c1")
	h.Unsubscribe("nobody", "c9")
}

func TestConnectionHubResubscribeReplacesSink(t *testing.T) {
	h := NewConnectionHub()

	first := &recordingSink{}
	second := &recordingSink{}
	h.Subscribe("acme", "c1", first)
	h.Subscribe("acme", "c1", second)

	assert.True(t, first.closed)
	assert.Equal(t, 1, h.SubscriberCount("acme"))

	h.Broadcast(context.Background(), "acme", "msg")
	assert.Equal(t, 0, first.count())
	assert.Equal(t, 1, second.count())
}

func TestConnectionHubBroadcastNoSubscribers(t *testing.T) {
	h := NewConnectionHub()
	// Must not panic or create tenant entries.
	h.Broadcast(context.Background(), "ghost", "msg")
	assert.Equal(t, 0, h.SubscriberCount("ghost"))
}
