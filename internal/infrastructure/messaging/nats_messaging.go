// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/logging"
)

// INatsConn is a NATS connection interface needed for the [MessageBuilder].
type INatsConn interface {
	IsConnected() bool
	Publish(subj string, data []byte) error
}

// MessageBuilder builds session indexer messages and sends them to the NATS
// server. Sends are best effort: the session lifecycle never blocks on, or
// fails because of, an indexing publish.
type MessageBuilder struct {
	NatsConn INatsConn
}

// Ensure that MessageBuilder implements domain.SessionIndexSender
var _ domain.SessionIndexSender = (*MessageBuilder)(nil)

// NewMessageBuilder creates a new MessageBuilder.
func NewMessageBuilder(natsConn INatsConn) *MessageBuilder {
	return &MessageBuilder{
		NatsConn: natsConn,
	}
}

// sendMessage sends the message to the NATS server.
func (m *MessageBuilder) sendMessage(ctx context.Context, subject string, data []byte) error {
	err := m.NatsConn.Publish(subject, data)
	if err != nil {
		slog.ErrorContext(ctx, "error sending message to NATS", logging.ErrKey, err, "subject", subject)
		return err
	}
	slog.DebugContext(ctx, "sent message to NATS", "subject", subject)
	return nil
}

// sendIndexerMessage sends an indexer message to the NATS server.
func (m *MessageBuilder) sendIndexerMessage(ctx context.Context, subject string, action models.MessageAction, data any, tags []string) error {
	message := models.SessionIndexerMessage{
		Action:  action,
		Headers: map[string]string{},
		Data:    data,
		Tags:    tags,
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message into JSON", logging.ErrKey, err, "subject", subject)
		return err
	}

	slog.DebugContext(ctx, "constructed indexer message",
		"subject", subject,
		"action", action,
		"tags_count", len(tags),
	)

	return m.sendMessage(ctx, subject, messageBytes)
}

// SendIndexSession sends the message to the NATS server for session indexing.
func (m *MessageBuilder) SendIndexSession(ctx context.Context, action models.MessageAction, data models.Session) error {
	return m.sendIndexerMessage(ctx, models.IndexMeetbotSessionSubject, action, data, data.Tags())
}

// SendDeleteIndexSession sends the message to the NATS server to remove a
// session from the index. The payload is just the bot id being deleted.
func (m *MessageBuilder) SendDeleteIndexSession(ctx context.Context, botID string) error {
	return m.sendIndexerMessage(ctx, models.IndexMeetbotSessionSubject, models.ActionDeleted, botID, nil)
}
