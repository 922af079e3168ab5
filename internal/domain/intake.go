// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/domain/models"
)

// TranscriptIntake is the external transcript ingestion sink. The protocol
// is four steps (init, upload, status, finalize); any failing step aborts
// the remainder and is reported in the result's Step field. Callers never
// retry automatically.
type TranscriptIntake interface {
	// IngestTranscript runs the full intake protocol for the transcript
	// file at path on behalf of orgName.
	IngestTranscript(ctx context.Context, orgName, path string) (*models.IngestionResult, error)
}
