// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

import "time"

// Bot provider status values delivered by bot.status_change webhooks.
const (
	BotStatusJoiningCall     = "joining_call"
	BotStatusInCall          = "in_call"
	BotStatusInCallRecording = "in_call_recording"
	BotStatusCallEnded       = "call_ended"
	BotStatusDone            = "done"
	BotStatusFatal           = "fatal"
)

// Realtime webhook event types delivered by the bot provider.
const (
	BotEventStatusChange     = "bot.status_change"
	BotEventTranscriptData   = "transcript.data"
	BotEventParticipantJoin  = "participant_events.join"
	BotEventParticipantLeave = "participant_events.leave"
)

// Inactivity watchdog defaults. Each is independently configurable via the
// environment.
const (
	DefaultWatchdogPollInterval = 10 * time.Second
	DefaultNoParticipantsGrace  = 120 * time.Second
	DefaultNoTranscriptGrace    = 300 * time.Second
)

// ShutdownDeadline bounds how long graceful shutdown waits for in-flight
// requests and session teardowns.
const ShutdownDeadline = 5 * time.Second

// TranscriptSpeakerBotStatus is the speaker label used for bot lifecycle
// lines written into the transcript log.
const TranscriptSpeakerBotStatus = "BOT_STATUS"

// TranscriptSpeakerParticipant is the speaker label used for participant
// join/leave lines written into the transcript log.
const TranscriptSpeakerParticipant = "INFO : PARTICIPANT"
