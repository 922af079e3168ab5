// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/logging"
)

// TranscriptSink accumulates transcript lines for one session in a local
// file and hands the finished file to the intake pipeline exactly once.
// A nil sink is valid and drops everything, so callers never need to
// branch on whether transcript saving is enabled.
type TranscriptSink struct {
	mu        sync.Mutex
	path      string
	orgName   string
	intake    domain.TranscriptIntake
	finalized bool
}

// NewTranscriptSink returns a sink writing to
// <dir>/<botID>_<meetingURL>.txt with filesystem-unsafe characters
// replaced. It returns nil when dir is empty or intake is nil, which
// disables transcript saving for the session.
func NewTranscriptSink(dir, botID, meetingURL, orgName string, intake domain.TranscriptIntake) *TranscriptSink {
	if dir == "" || intake == nil {
		return nil
	}
	name := fmt.Sprintf("%s_%s.txt", sanitizeFileName(botID), sanitizeFileName(meetingURL))
	return &TranscriptSink{
		path:    filepath.Join(dir, name),
		orgName: orgName,
		intake:  intake,
	}
}

var unsafeFileChars = strings.NewReplacer(
	"<", "-", ">", "-", ":", "-", "\"", "-",
	"/", "-", "\\", "-", "|", "-", "?", "-", "*", "-",
)

func sanitizeFileName(s string) string {
	return unsafeFileChars.Replace(s)
}

// Append writes one "speaker: text" line. Errors are logged and
// swallowed so a full disk never disrupts the live session.
func (s *TranscriptSink) Append(ctx context.Context, speaker, text string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		slog.ErrorContext(ctx, "failed to create transcripts directory", logging.ErrKey, err)
		return
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		slog.ErrorContext(ctx, "failed to open transcript file", logging.ErrKey, err, "path", s.path)
		return
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s: %s\n", speaker, text); err != nil {
		slog.ErrorContext(ctx, "failed to write transcript line", logging.ErrKey, err, "path", s.path)
	}
}

// FinalizeAndIngest closes out the transcript and submits it for
// ingestion. Only the first call does any work; later calls report a
// skipped result so concurrent teardown paths cannot double-ingest.
func (s *TranscriptSink) FinalizeAndIngest(ctx context.Context) *models.IngestionResult {
	if s == nil {
		return &models.IngestionResult{Skipped: true}
	}

	s.mu.Lock()
	if s.finalized {
		s.mu.Unlock()
		return &models.IngestionResult{Skipped: true}
	}
	s.finalized = true
	s.mu.Unlock()

	if _, err := os.Stat(s.path); err != nil {
		slog.InfoContext(ctx, "no transcript file to ingest", "path", s.path)
		return &models.IngestionResult{Skipped: true}
	}

	result, err := s.intake.IngestTranscript(ctx, s.orgName, s.path)
	if err != nil {
		slog.ErrorContext(ctx, "transcript ingestion failed", logging.ErrKey, err, "path", s.path)
		if result == nil {
			result = &models.IngestionResult{}
		}
		return result
	}

	if result.Success {
		if err := os.Remove(s.path); err != nil {
			slog.WarnContext(ctx, "failed to remove ingested transcript file", logging.ErrKey, err, "path", s.path)
		}
	}
	return result
}

// Path returns the transcript file location, empty for a disabled sink.
func (s *TranscriptSink) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}
