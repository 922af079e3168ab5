// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"encoding/json"
	"strings"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/pkg/utils"
)

// EventType discriminates the canonical webhook event variants.
type EventType string

const (
	// EventTypeStatusChanged is a bot.status_change event.
	EventTypeStatusChanged EventType = "status_changed"
	// EventTypeTranscript is a transcript.data event.
	EventTypeTranscript EventType = "transcript"
	// EventTypeParticipantJoined is a participant_events.join event.
	EventTypeParticipantJoined EventType = "participant_joined"
	// EventTypeParticipantLeft is a participant_events.leave event.
	EventTypeParticipantLeft EventType = "participant_left"
	// EventTypeUnrecognized is any payload that could not be normalized.
	// Unrecognized events are logged and never produce a state change.
	EventTypeUnrecognized EventType = "unrecognized"
)

// StatusChangedEvent is the canonical form of a bot status change.
type StatusChangedEvent struct {
	BotID   string `json:"bot_id"`
	Status  string `json:"status"`
	SubCode string `json:"sub_code,omitempty"`
}

// TranscriptEvent is the canonical form of a transcript fragment.
type TranscriptEvent struct {
	BotID   string           `json:"bot_id"`
	Speaker string           `json:"speaker"`
	Words   []TranscriptWord `json:"words"`
}

// Text returns the spoken text of the fragment.
func (e *TranscriptEvent) Text() string {
	return JoinWords(e.Words)
}

// Bounds returns the relative start and end timestamps of the fragment.
func (e *TranscriptEvent) Bounds() (start, end float64) {
	if len(e.Words) == 0 {
		return 0, 0
	}
	return e.Words[0].Start, e.Words[len(e.Words)-1].End
}

// ParticipantJoinedEvent is the canonical form of a participant join.
type ParticipantJoinedEvent struct {
	BotID       string      `json:"bot_id"`
	Participant Participant `json:"participant"`
}

// ParticipantLeftEvent is the canonical form of a participant leave.
type ParticipantLeftEvent struct {
	BotID           string `json:"bot_id"`
	ParticipantID   string `json:"participant_id"`
	ParticipantName string `json:"participant_name"`
}

// CanonicalEvent is the tagged variant produced by webhook normalization.
// Exactly one of the event pointers matching Type is set. Raw carries the
// original payload for unrecognized events so it can be logged.
type CanonicalEvent struct {
	Type              EventType
	StatusChanged     *StatusChangedEvent
	Transcript        *TranscriptEvent
	ParticipantJoined *ParticipantJoinedEvent
	ParticipantLeft   *ParticipantLeftEvent
	Raw               json.RawMessage
}

// BotID returns the bot identity the event refers to, empty for
// unrecognized events.
func (e *CanonicalEvent) BotID() string {
	switch e.Type {
	case EventTypeStatusChanged:
		return e.StatusChanged.BotID
	case EventTypeTranscript:
		return e.Transcript.BotID
	case EventTypeParticipantJoined:
		return e.ParticipantJoined.BotID
	case EventTypeParticipantLeft:
		return e.ParticipantLeft.BotID
	}
	return ""
}

// The provider has delivered the same logical events in more than one
// payload shape over time: the discriminator has been both "type" and
// "event", and status fields have appeared both top-level and nested under
// "data". The envelope below is a superset of everything observed; the
// parser coalesces across the variants.
type webhookEnvelope struct {
	Type    string          `json:"type"`
	Event   string          `json:"event"`
	BotID   string          `json:"bot_id"`
	ID      string          `json:"id"`
	Status  json.RawMessage `json:"status"`
	SubCode string          `json:"sub_code"`
	Data    json.RawMessage `json:"data"`
}

type statusChangeData struct {
	ID      string          `json:"id"`
	BotID   string          `json:"bot_id"`
	Status  json.RawMessage `json:"status"`
	SubCode string          `json:"sub_code"`
}

// statusObject is the nested status shape: {"code": "...", "sub_code": "..."}
type statusObject struct {
	Code    string `json:"code"`
	SubCode string `json:"sub_code"`
}

type realtimeData struct {
	Bot struct {
		ID string `json:"id"`
	} `json:"bot"`
	Data realtimeInner `json:"data"`
}

type realtimeInner struct {
	Words       []rawTranscriptWord `json:"words"`
	Participant rawParticipant      `json:"participant"`
	Action      string              `json:"action"`
}

type rawTranscriptWord struct {
	Text  string            `json:"text"`
	Start relativeTimestamp `json:"start_timestamp"`
	End   relativeTimestamp `json:"end_timestamp"`
}

// relativeTimestamp accepts both a bare number of seconds and the object
// form {"relative": <seconds>, ...}.
type relativeTimestamp struct {
	Relative float64
}

func (t *relativeTimestamp) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		return nil
	}
	if strings.HasPrefix(trimmed, "{") {
		var obj struct {
			Relative float64 `json:"relative"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		t.Relative = obj.Relative
		return nil
	}
	return json.Unmarshal(data, &t.Relative)
}

type rawParticipant struct {
	ID        flexibleID     `json:"id"`
	Name      string         `json:"name"`
	IsHost    bool           `json:"is_host"`
	Platform  string         `json:"platform"`
	ExtraData map[string]any `json:"extra_data"`
}

// flexibleID accepts participant IDs delivered as JSON numbers or strings.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}

// ParseWebhookEvent normalizes a raw provider webhook payload into a
// CanonicalEvent. It never fails: payloads that cannot be normalized come
// back as EventTypeUnrecognized carrying the raw body, so the webhook
// handler can always acknowledge the delivery.
func ParseWebhookEvent(raw []byte) CanonicalEvent {
	unrecognized := CanonicalEvent{Type: EventTypeUnrecognized, Raw: raw}

	var envelope webhookEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return unrecognized
	}

	eventType := utils.CoalesceString(envelope.Type, envelope.Event)

	switch eventType {
	case constants.BotEventStatusChange:
		return parseStatusChange(raw, envelope)
	case constants.BotEventTranscriptData:
		return parseTranscript(raw, envelope)
	case constants.BotEventParticipantJoin:
		return parseParticipantJoin(raw, envelope)
	case constants.BotEventParticipantLeave:
		return parseParticipantLeave(raw, envelope)
	}

	return unrecognized
}

func parseStatusChange(raw []byte, envelope webhookEnvelope) CanonicalEvent {
	var data statusChangeData
	if len(envelope.Data) > 0 {
		// Tolerate a malformed data object as long as the essentials can
		// be recovered from the top level.
		_ = json.Unmarshal(envelope.Data, &data)
	}

	botID := utils.CoalesceString(data.ID, data.BotID, envelope.BotID, envelope.ID)
	status, subCode := decodeStatus(data.Status)
	if status == "" {
		status, subCode = decodeStatus(envelope.Status)
	}
	subCode = utils.CoalesceString(subCode, data.SubCode, envelope.SubCode)

	if botID == "" || status == "" {
		return CanonicalEvent{Type: EventTypeUnrecognized, Raw: raw}
	}

	return CanonicalEvent{
		Type: EventTypeStatusChanged,
		StatusChanged: &StatusChangedEvent{
			BotID:   botID,
			Status:  status,
			SubCode: subCode,
		},
	}
}

// decodeStatus accepts both a bare status string and the nested object form.
func decodeStatus(raw json.RawMessage) (status, subCode string) {
	if len(raw) == 0 {
		return "", ""
	}
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "{") {
		var obj statusObject
		if err := json.Unmarshal(raw, &obj); err != nil {
			return "", ""
		}
		return obj.Code, obj.SubCode
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", ""
	}
	return s, ""
}

func parseRealtimeData(envelope webhookEnvelope) (realtimeData, bool) {
	if len(envelope.Data) == 0 {
		return realtimeData{}, false
	}
	var data realtimeData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return realtimeData{}, false
	}
	if data.Bot.ID == "" {
		data.Bot.ID = utils.CoalesceString(envelope.BotID, envelope.ID)
	}
	if data.Bot.ID == "" {
		return realtimeData{}, false
	}
	return data, true
}

func parseTranscript(raw []byte, envelope webhookEnvelope) CanonicalEvent {
	data, ok := parseRealtimeData(envelope)
	if !ok || len(data.Data.Words) == 0 {
		return CanonicalEvent{Type: EventTypeUnrecognized, Raw: raw}
	}

	words := make([]TranscriptWord, 0, len(data.Data.Words))
	for _, w := range data.Data.Words {
		words = append(words, TranscriptWord{
			Text:  w.Text,
			Start: w.Start.Relative,
			End:   w.End.Relative,
		})
	}

	return CanonicalEvent{
		Type: EventTypeTranscript,
		Transcript: &TranscriptEvent{
			BotID:   data.Bot.ID,
			Speaker: data.Data.Participant.Name,
			Words:   words,
		},
	}
}

func parseParticipantJoin(raw []byte, envelope webhookEnvelope) CanonicalEvent {
	data, ok := parseRealtimeData(envelope)
	if !ok {
		return CanonicalEvent{Type: EventTypeUnrecognized, Raw: raw}
	}

	p := data.Data.Participant
	if p.ID == "" || p.Name == "" {
		return CanonicalEvent{Type: EventTypeUnrecognized, Raw: raw}
	}

	// Some payload revisions carry an explicit action; when present only
	// "join" counts.
	if data.Data.Action != "" && data.Data.Action != "join" {
		return CanonicalEvent{Type: EventTypeUnrecognized, Raw: raw}
	}

	return CanonicalEvent{
		Type: EventTypeParticipantJoined,
		ParticipantJoined: &ParticipantJoinedEvent{
			BotID: data.Bot.ID,
			Participant: Participant{
				ID:        string(p.ID),
				Name:      p.Name,
				IsHost:    p.IsHost,
				Platform:  utils.CoalesceString(p.Platform, "unknown"),
				ExtraData: p.ExtraData,
				Status:    ParticipantStatusJoined,
			},
		},
	}
}

func parseParticipantLeave(raw []byte, envelope webhookEnvelope) CanonicalEvent {
	data, ok := parseRealtimeData(envelope)
	if !ok {
		return CanonicalEvent{Type: EventTypeUnrecognized, Raw: raw}
	}

	p := data.Data.Participant
	if p.ID == "" {
		return CanonicalEvent{Type: EventTypeUnrecognized, Raw: raw}
	}

	return CanonicalEvent{
		Type: EventTypeParticipantLeft,
		ParticipantLeft: &ParticipantLeftEvent{
			BotID:           data.Bot.ID,
			ParticipantID:   string(p.ID),
			ParticipantName: p.Name,
		},
	}
}
