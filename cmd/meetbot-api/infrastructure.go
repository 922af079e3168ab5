// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/infrastructure/gemini"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/infrastructure/intake"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/infrastructure/recallapi"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/logging"
)

// setupNATS connects to the NATS server and registers a drain on shutdown.
func setupNATS(ctx context.Context, env environment, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	natsConn, err := nats.Connect(
		env.NatsURL,
		nats.DrainTimeout(nats.DefaultDrainTimeout),
		nats.ConnectHandler(func(_ *nats.Conn) {
			slog.InfoContext(ctx, "NATS connection established", "nats_url", env.NatsURL)
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			slog.ErrorContext(ctx, "NATS error", logging.ErrKey, err)
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			slog.InfoContext(ctx, "NATS connection closed")
		}),
	)
	if err != nil {
		return nil, err
	}

	// Drain the connection on shutdown so in-flight publishes are delivered.
	gracefulCloseWG.Add(1)
	go func() {
		defer gracefulCloseWG.Done()
		<-done
		slog.InfoContext(ctx, "draining NATS connection")
		if err := natsConn.Drain(); err != nil {
			slog.ErrorContext(ctx, "error draining NATS connection", logging.ErrKey, err)
		}
	}()

	return natsConn, nil
}

// setupProvider configures the Recall bot provider client.
func setupProvider(env environment) domain.BotProvider {
	return recallapi.NewClient(recallapi.Config{
		APIKey:  env.RecallAPIKey,
		BaseURL: env.RecallBaseURL,
	})
}

// setupIntake configures the transcript ingestion client.
func setupIntake(env environment) domain.TranscriptIntake {
	return intake.NewClient(intake.Config{
		BaseURL: env.IntakeBaseURL,
	})
}

// setupEngine configures the conversation engine.
func setupEngine(ctx context.Context, env environment, broadcaster domain.TenantBroadcaster) (domain.ConversationEngine, error) {
	return gemini.NewEngine(ctx, gemini.Config{
		APIKey:  env.GeminiAPIKey,
		Model:   env.GeminiModel,
		BotName: env.BotName,
	}, broadcaster)
}
