// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import "strings"

// TranscriptWord is a single word of a transcript fragment with timestamps
// relative to the start of the recording.
type TranscriptWord struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// TranscriptLine is one appended line of a session transcript.
type TranscriptLine struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// JoinWords concatenates transcript words into the spoken text.
func JoinWords(words []TranscriptWord) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		if w.Text == "" {
			continue
		}
		parts = append(parts, w.Text)
	}
	return strings.Join(parts, " ")
}

// IngestionResult reports the outcome of a transcript ingestion attempt.
type IngestionResult struct {
	// Skipped is true when ingestion was already attempted for the session
	// and this call did nothing.
	Skipped bool `json:"skipped"`
	// Success is true when every intake step completed.
	Success bool `json:"success"`
	// Step names the intake step that failed, empty on success.
	Step string `json:"step,omitempty"`
	// IntakeID is the intake identifier returned by the init step, when
	// the protocol got that far.
	IntakeID string `json:"intake_id,omitempty"`
}
