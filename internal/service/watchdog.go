// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/pkg/constants"
)

// ReapFunc is invoked when the watchdog decides a session is dead. The
// reason is a short human-readable cause suitable for logs and the
// transcript trailer.
type ReapFunc func(ctx context.Context, session *Session, reason string)

// WatchdogConfig controls the inactivity checks for one session.
type WatchdogConfig struct {
	PollInterval        time.Duration
	NoParticipantsGrace time.Duration
	NoTranscriptGrace   time.Duration
	BotName             string
}

// withDefaults fills unset durations with the standard values.
func (c WatchdogConfig) withDefaults() WatchdogConfig {
	if c.PollInterval <= 0 {
		c.PollInterval = constants.DefaultWatchdogPollInterval
	}
	if c.NoParticipantsGrace <= 0 {
		c.NoParticipantsGrace = constants.DefaultNoParticipantsGrace
	}
	if c.NoTranscriptGrace <= 0 {
		c.NoTranscriptGrace = constants.DefaultNoTranscriptGrace
	}
	return c
}

// Watchdog watches one session for inactivity and reaps it when either
// everyone else left the call or no transcript arrived for too long.
type Watchdog struct {
	config  WatchdogConfig
	session *Session
	reap    ReapFunc

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// StartWatchdog starts the inactivity loop for a session. Stop it with
// Stop; it also stops itself after firing the reap callback once.
func StartWatchdog(ctx context.Context, session *Session, config WatchdogConfig, reap ReapFunc) *Watchdog {
	w := &Watchdog{
		config:  config.withDefaults(),
		session: session,
		reap:    reap,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run(ctx)
	return w
}

// Stop terminates the watchdog loop. It is safe to call more than once and
// from the reap callback itself.
func (w *Watchdog) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
	})
}

// Done is closed when the watchdog loop has exited.
func (w *Watchdog) Done() <-chan struct{} {
	return w.done
}

func (w *Watchdog) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-ticker.C:
			// Another path may have torn the session down without
			// stopping this watchdog; do not keep polling a dead session.
			if w.session.State().IsTerminal() {
				return
			}
			if reason, ok := w.check(); ok {
				slog.InfoContext(ctx, "inactivity watchdog reaping session",
					"bot_id", w.session.BotID,
					"org_name", w.session.OrgName,
					"reason", reason,
				)
				w.reap(ctx, w.session, reason)
				return
			}
		}
	}
}

// check evaluates both inactivity conditions and returns the reap reason
// when one of them holds.
func (w *Watchdog) check() (string, bool) {
	if w.session.Roster().ActiveCount(w.config.BotName) == 0 &&
		w.session.SinceActivity() >= w.config.NoParticipantsGrace {
		return "no active participants", true
	}

	if w.session.SinceTranscript() >= w.config.NoTranscriptGrace {
		return "no transcript activity", true
	}

	return "", false
}
