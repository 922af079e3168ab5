// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/handlers"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/middleware"
)

// setupHTTPServer configures and starts the HTTP server
func setupHTTPServer(
	flags flags,
	sessionHandler *handlers.SessionHandler,
	webhookHandler *handlers.WebhookHandler,
	wsHandler *handlers.WebSocketHandler,
	gracefulCloseWG *sync.WaitGroup,
) *http.Server {
	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RequestLoggerMiddleware())
	router.Use(middleware.WebhookBodyCaptureMiddleware())

	router.Post("/sessions", sessionHandler.StartSession)
	router.Get("/sessions", sessionHandler.ListSessions)
	router.Get("/ws", wsHandler.Attach)
	router.Post("/webhooks/recall/status", webhookHandler.HandleStatusWebhook)
	router.Post("/webhooks/recall/realtime", webhookHandler.HandleRealtimeWebhook)
	router.Get("/livez", sessionHandler.Livez)
	router.Get("/readyz", sessionHandler.Readyz)

	// Set up http listener in a goroutine using provided command line parameters.
	var addr string
	if flags.Bind == "*" {
		addr = ":" + flags.Port
	} else {
		addr = flags.Bind + ":" + flags.Port
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	gracefulCloseWG.Add(1)
	go func() {
		slog.With("addr", addr).Debug("starting http server, listening on port " + flags.Port)
		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			slog.With(logging.ErrKey, err).Error("http listener error")
			os.Exit(1)
		}
		// Because ErrServerClosed is *immediately* returned when Shutdown is
		// called, not when when Shutdown completes, this must not yet decrement
		// the wait group.
	}()

	return httpServer
}
