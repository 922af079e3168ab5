// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/domain/models"
)

// MockBotProvider implements BotProvider for testing
type MockBotProvider struct {
	mock.Mock
}

func (m *MockBotProvider) CreateBot(ctx context.Context, request CreateBotRequest) (string, error) {
	args := m.Called(ctx, request)
	return args.String(0), args.Error(1)
}

func (m *MockBotProvider) RemoveBot(ctx context.Context, botID string) error {
	args := m.Called(ctx, botID)
	return args.Error(0)
}

func (m *MockBotProvider) SendChatMessage(ctx context.Context, botID string, request ChatMessageRequest) error {
	args := m.Called(ctx, botID, request)
	return args.Error(0)
}

// MockTranscriptIntake implements TranscriptIntake for testing
type MockTranscriptIntake struct {
	mock.Mock
}

func (m *MockTranscriptIntake) IngestTranscript(ctx context.Context, orgName, path string) (*models.IngestionResult, error) {
	args := m.Called(ctx, orgName, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IngestionResult), args.Error(1)
}

// MockConversationEngine implements ConversationEngine for testing
type MockConversationEngine struct {
	mock.Mock
}

func (m *MockConversationEngine) SetParticipants(participants []models.Participant) {
	m.Called(participants)
}

func (m *MockConversationEngine) SetBotID(botID string) {
	m.Called(botID)
}

func (m *MockConversationEngine) AppendHistory(speaker, text string) {
	m.Called(speaker, text)
}

func (m *MockConversationEngine) Invoke(ctx context.Context, orgName, text string) error {
	args := m.Called(ctx, orgName, text)
	return args.Error(0)
}

func (m *MockConversationEngine) ClearContext() {
	m.Called()
}

// MockTenantBroadcaster implements TenantBroadcaster for testing
type MockTenantBroadcaster struct {
	mock.Mock
}

func (m *MockTenantBroadcaster) Broadcast(ctx context.Context, tenant string, message any) {
	m.Called(ctx, tenant, message)
}

// MockSessionIndexSender implements SessionIndexSender for testing
type MockSessionIndexSender struct {
	mock.Mock
}

func (m *MockSessionIndexSender) SendIndexSession(ctx context.Context, action models.MessageAction, data models.Session) error {
	args := m.Called(ctx, action, data)
	return args.Error(0)
}

func (m *MockSessionIndexSender) SendDeleteIndexSession(ctx context.Context, botID string) error {
	args := m.Called(ctx, botID)
	return args.Error(0)
}
