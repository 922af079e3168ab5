// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/domain/models"
)

// SessionIndexSender handles indexing messages for bot sessions. Sends are
// best effort: failures are logged by the implementation and must never
// block the session lifecycle.
type SessionIndexSender interface {
	SendIndexSession(ctx context.Context, action models.MessageAction, data models.Session) error
	SendDeleteIndexSession(ctx context.Context, botID string) error
}
