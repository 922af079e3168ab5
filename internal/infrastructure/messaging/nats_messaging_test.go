// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/domain/models"
)

// mockNatsConn is a mock implementation of the INatsConn interface.
type mockNatsConn struct {
	mock.Mock
}

func (m *mockNatsConn) IsConnected() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *mockNatsConn) Publish(subj string, data []byte) error {
	args := m.Called(subj, data)
	return args.Error(0)
}

func TestSendIndexSession(t *testing.T) {
	conn := &mockNatsConn{}
	builder := NewMessageBuilder(conn)

	var published []byte
	conn.On("Publish", models.IndexMeetbotSessionSubject, mock.Anything).
		Return(nil).Once().Run(func(args mock.Arguments) {
		published = args.Get(1).([]byte)
	})

	session := models.Session{
		BotID:      "bot1",
		OrgName:    "acme",
		MeetingURL: "https://meet/1",
		State:      "created",
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, builder.SendIndexSession(context.Background(), models.ActionCreated, session))

	var message models.SessionIndexerMessage
	require.NoError(t, json.Unmarshal(published, &message))
	assert.Equal(t, models.ActionCreated, message.Action)
	assert.Contains(t, message.Tags, "bot1")
	assert.Contains(t, message.Tags, "org_name:acme")
	assert.Contains(t, message.Tags, "state:created")

	data, ok := message.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "bot1", data["bot_id"])
	assert.Equal(t, "acme", data["org_name"])

	conn.AssertExpectations(t)
}

func TestSendDeleteIndexSession(t *testing.T) {
	conn := &mockNatsConn{}
	builder := NewMessageBuilder(conn)

	var published []byte
	conn.On("Publish", models.IndexMeetbotSessionSubject, mock.Anything).
		Return(nil).Once().Run(func(args mock.Arguments) {
		published = args.Get(1).([]byte)
	})

	require.NoError(t, builder.SendDeleteIndexSession(context.Background(), "bot1"))

	var message models.SessionIndexerMessage
	require.NoError(t, json.Unmarshal(published, &message))
	assert.Equal(t, models.ActionDeleted, message.Action)
	assert.Equal(t, "bot1", message.Data)
	assert.Empty(t, message.Tags)

	conn.AssertExpectations(t)
}

func TestSendIndexSessionPublishError(t *testing.T) {
	conn := &mockNatsConn{}
	builder := NewMessageBuilder(conn)

	conn.On("Publish", models.IndexMeetbotSessionSubject, mock.Anything).
		Return(errors.New("nats unavailable")).Once()

	err := builder.SendIndexSession(context.Background(), models.ActionUpdated, models.Session{BotID: "bot1"})
	assert.Error(t, err)
	conn.AssertExpectations(t)
}
