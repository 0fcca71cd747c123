// Package webhook receives call-ended notifications from the voice
// platform and runs the post-call processing pipeline.
package webhook

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"propertyvoice_backend/platform/phone"
)

// NormalizedCall is the canonical shape of a finished call, independent
// of which notification variant produced it.
type NormalizedCall struct {
	ExternalCallID string
	FromNumber     string
	ToNumber       string
	CallType       string
	DurationSecs   int
	Transcript     string
	RecordingURL   string
	StartedAt      time.Time
	EndedAt        time.Time
	Metadata       map[string]any
}

// shapeV1 is the platform's primary call-ended payload: caller in "from",
// duration in "call_length", agent-collected variables in "variables".
type shapeV1 struct {
	CallID                 string         `json:"call_id"`
	From                   string         `json:"from"`
	To                     string         `json:"to"`
	CallLength             any            `json:"call_length"`
	ConcatenatedTranscript string         `json:"concatenated_transcript"`
	Transcript             string         `json:"transcript"`
	RecordingURL           string         `json:"recording_url"`
	CreatedAt              string         `json:"created_at"`
	CallType               string         `json:"call_type"`
	Variables              map[string]any `json:"variables"`
}

// shapeV2 is the older outbound-style payload: the caller arrives in
// "to_number" and the agent line in "from_number".
type shapeV2 struct {
	CallID       string         `json:"call_id"`
	ToNumber     string         `json:"to_number"`
	FromNumber   string         `json:"from_number"`
	Duration     any            `json:"duration"`
	Transcript   string         `json:"transcript"`
	RecordingURL string         `json:"recording_url"`
	StartedAt    string         `json:"started_at"`
	CallType     string         `json:"call_type"`
	Metadata     map[string]any `json:"metadata"`
}

// v1Markers and v2Markers discriminate the two shapes; call_id alone is
// shared by both and cannot decide.
var v1Markers = []string{"from", "to", "call_length", "concatenated_transcript", "variables", "created_at"}
var v2Markers = []string{"to_number", "from_number", "duration", "started_at"}

// consumedFields are top-level keys claimed by the known shapes; anything
// else lands in the metadata bag untouched.
var consumedFields = map[string]bool{
	"call_id": true, "from": true, "to": true, "call_length": true,
	"concatenated_transcript": true, "recording_url": true, "created_at": true,
	"call_type": true, "transcript": true, "variables": true,
	"to_number": true, "from_number": true, "duration": true, "started_at": true,
	"metadata": true,
}

// Normalize decodes a raw notification body into the canonical call
// shape. Known shapes are tried in a fixed order; the first one whose
// marker fields appear and whose call identifier resolves non-empty
// wins. Missing fields get defaults (duration 0, empty transcript, call
// type "general") and unrecognized fields are preserved in the metadata
// bag. Normalization only fails on bodies that aren't JSON objects.
func Normalize(body []byte, now time.Time) (NormalizedCall, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return NormalizedCall{}, err
	}

	var call NormalizedCall
	switch {
	case hasAny(raw, v1Markers) && callID(raw) != "":
		call = decodeV1(body)
	case hasAny(raw, v2Markers) && callID(raw) != "":
		call = decodeV2(body)
	case callID(raw) != "":
		// No marker field decides, but the identifier resolves: decode the
		// primary shape anyway so shared fields (transcript, recording URL,
		// call type) survive a partial payload instead of being dropped.
		call = decodeV1(body)
	default:
		// Minimal-defaults shape: carry whatever identifier exists and let
		// the orchestrator decide whether the call is processable.
		call = NormalizedCall{ExternalCallID: callID(raw)}
	}

	call.FromNumber = phone.NormalizeE164(call.FromNumber)
	call.ToNumber = phone.NormalizeE164(call.ToNumber)
	call.CallType = normalizeCallType(call.CallType)
	if call.DurationSecs < 0 {
		call.DurationSecs = 0
	}
	if call.Metadata == nil {
		call.Metadata = map[string]any{}
	}

	for key, value := range raw {
		if consumedFields[key] {
			continue
		}
		var v any
		if err := json.Unmarshal(value, &v); err == nil {
			call.Metadata[key] = v
		}
	}

	if call.EndedAt.IsZero() {
		call.EndedAt = now
	}
	if call.StartedAt.IsZero() {
		call.StartedAt = call.EndedAt.Add(-time.Duration(call.DurationSecs) * time.Second)
	}

	return call, nil
}

func hasAny(raw map[string]json.RawMessage, keys []string) bool {
	for _, key := range keys {
		if _, ok := raw[key]; ok {
			return true
		}
	}
	return false
}

func callID(raw map[string]json.RawMessage) string {
	var id string
	if v, ok := raw["call_id"]; ok {
		_ = json.Unmarshal(v, &id)
	}
	return strings.TrimSpace(id)
}

func decodeV1(body []byte) NormalizedCall {
	var s shapeV1
	_ = json.Unmarshal(body, &s)

	transcript := s.ConcatenatedTranscript
	if transcript == "" {
		transcript = s.Transcript
	}

	return NormalizedCall{
		ExternalCallID: strings.TrimSpace(s.CallID),
		FromNumber:     s.From,
		ToNumber:       s.To,
		CallType:       s.CallType,
		DurationSecs:   numberToSecs(s.CallLength),
		Transcript:     transcript,
		RecordingURL:   s.RecordingURL,
		StartedAt:      parseTimestamp(s.CreatedAt),
		Metadata:       cloneBag(s.Variables),
	}
}

func decodeV2(body []byte) NormalizedCall {
	var s shapeV2
	_ = json.Unmarshal(body, &s)

	return NormalizedCall{
		ExternalCallID: strings.TrimSpace(s.CallID),
		FromNumber:     s.ToNumber,
		ToNumber:       s.FromNumber,
		CallType:       s.CallType,
		DurationSecs:   numberToSecs(s.Duration),
		Transcript:     s.Transcript,
		RecordingURL:   s.RecordingURL,
		StartedAt:      parseTimestamp(s.StartedAt),
		Metadata:       cloneBag(s.Metadata),
	}
}

var knownCallTypes = map[string]bool{
	"leasing":     true,
	"maintenance": true,
	"payment":     true,
	"general":     true,
}

func normalizeCallType(callType string) string {
	ct := strings.ToLower(strings.TrimSpace(callType))
	if knownCallTypes[ct] {
		return ct
	}
	return "general"
}

// numberToSecs tolerates durations sent as numbers or strings.
func numberToSecs(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return int(f)
		}
	}
	return 0
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func cloneBag(m map[string]any) map[string]any {
	bag := make(map[string]any, len(m))
	for k, v := range m {
		bag[k] = v
	}
	return bag
}

// metaString reads a string value from the metadata bag under the first
// matching key, tolerating numbers the platform sends for unit numbers.
func metaString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := m[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
