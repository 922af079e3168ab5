// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/logging"
)

// flags are the command line flags for the meetbot service.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the meetbot service.
type environment struct {
	Port string `env:"PORT" envDefault:"8080"`

	RecallAPIKey   string `env:"RECALL_API_KEY,required"`
	RecallBaseURL  string `env:"RECALL_BASE_URL" envDefault:"https://us-west-2.recall.ai"`
	WebhookBaseURL string `env:"WEBHOOK_BASE_URL,required"`

	BotName        string `env:"BOT_NAME" envDefault:"scooby"`
	BotTriggerWord string `env:"BOT_TRIGGER_WORD"`
	OutputMediaURL string `env:"BOT_OUTPUT_MEDIA_URL"`

	IntakeBaseURL  string `env:"INTAKE_BASE_URL" envDefault:"https://dev.pulse-api.getpulseinsights.ai"`
	TranscriptsDir string `env:"TRANSCRIPTS_DIR" envDefault:"transcripts"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash-live-001"`

	NatsURL string `env:"NATS_URL" envDefault:"nats://lfx-platform-nats.lfx.svc.cluster.local:4222"`

	WatchdogPollSeconds        int `env:"WATCHDOG_POLL_SECONDS" envDefault:"10"`
	NoParticipantsGraceSeconds int `env:"NO_PARTICIPANTS_GRACE_SECONDS" envDefault:"120"`
	NoTranscriptGraceSeconds   int `env:"NO_TRANSCRIPT_GRACE_SECONDS" envDefault:"300"`
}

// parseFlags parses command line flags for the meetbot service
func parseFlags(defaultPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", defaultPort, "listen port")
	var bind = flag.String("bind", "*", "interface to bind on")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug: *debug,
		Port:  *port,
		Bind:  *bind,
	}
}

// parseEnv parses environment variables for the meetbot service
func parseEnv() (environment, error) {
	var e environment
	if err := env.Parse(&e); err != nil {
		return environment{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return e, nil
}

// watchdogPollInterval returns the configured watchdog poll interval.
func (e environment) watchdogPollInterval() time.Duration {
	return time.Duration(e.WatchdogPollSeconds) * time.Second
}

// noParticipantsGrace returns the configured no-participants grace period.
func (e environment) noParticipantsGrace() time.Duration {
	return time.Duration(e.NoParticipantsGraceSeconds) * time.Second
}

// noTranscriptGrace returns the configured no-transcript grace period.
func (e environment) noTranscriptGrace() time.Duration {
	return time.Duration(e.NoTranscriptGraceSeconds) * time.Second
}
