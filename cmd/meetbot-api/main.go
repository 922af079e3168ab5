// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package main is the meetbot service API that orchestrates meeting bot
// sessions, receives Recall webhooks, and streams session events to
// per-tenant websocket clients.
package main

import (
	"context"
	_ "expvar"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/handlers"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/hub"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/infrastructure/messaging"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/service"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/pkg/constants"
)

func main() {
	env, err := parseEnv()
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error parsing environment")
		os.Exit(1)
	}
	flags := parseFlags(env.Port)

	logging.InitStructureLogConfig()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	// Setup NATS connection
	natsConn, err := setupNATS(ctx, env, &gracefulCloseWG, done)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up NATS")
		return
	}

	// The connection hub fans session events out to websocket clients and
	// doubles as the broadcaster the conversation engine speaks through.
	connectionHub := hub.NewConnectionHub()

	engine, err := setupEngine(ctx, env, connectionHub)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up conversation engine")
		return
	}

	// Initialize services
	serviceConfig := service.ServiceConfig{
		BotName:        env.BotName,
		TriggerWord:    env.BotTriggerWord,
		TranscriptsDir: env.TranscriptsDir,
		WebhookBaseURL: env.WebhookBaseURL,
		OutputMediaURL: env.OutputMediaURL,
		Watchdog: service.WatchdogConfig{
			PollInterval:        env.watchdogPollInterval(),
			NoParticipantsGrace: env.noParticipantsGrace(),
			NoTranscriptGrace:   env.noTranscriptGrace(),
			BotName:             env.BotName,
		},
	}
	messageBuilder := messaging.NewMessageBuilder(natsConn)
	sessionService := service.NewSessionService(
		ctx,
		serviceConfig,
		service.NewSessionRegistry(),
		setupProvider(env),
		setupIntake(env),
		engine,
		messageBuilder,
		connectionHub,
	)
	webhookService := service.NewWebhookService(sessionService)

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(sessionService)
	webhookHandler := handlers.NewWebhookHandler(webhookService)
	wsHandler := handlers.NewWebSocketHandler(connectionHub, env.BotName)

	httpServer := setupHTTPServer(flags, sessionHandler, webhookHandler, wsHandler, &gracefulCloseWG)

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, &gracefulCloseWG, done, cancel)
}

// gracefulShutdown stops the HTTP server, unblocks the NATS drain
// goroutine, and waits for background work to finish.
func gracefulShutdown(httpServer *http.Server, gracefulCloseWG *sync.WaitGroup, done chan os.Signal, cancel context.CancelFunc) {
	slog.Info("shutting down meetbot service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.ShutdownDeadline)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.With(logging.ErrKey, err).Error("error shutting down http server")
	}
	// The listener goroutine added itself to the wait group when the server
	// started and only Shutdown completing settles its work.
	gracefulCloseWG.Done()

	// The NATS drain goroutine waits on the signal channel; the signal that
	// got us here was consumed above, so close the channel to release it.
	signal.Stop(done)
	close(done)

	cancel()
	gracefulCloseWG.Wait()

	slog.Info("meetbot service stopped")
}
