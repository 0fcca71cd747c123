package webhook

import (
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

func TestNormalizePrimaryShape(t *testing.T) {
	body := []byte(`{
		"call_id": "abc123",
		"from": "+16309438357",
		"to": "+16307963284",
		"call_type": "maintenance",
		"concatenated_transcript": "My sink is leaking badly",
		"call_length": 180,
		"recording_url": "https://cdn.example.com/rec/abc123.mp3",
		"created_at": "2026-03-14T14:57:00Z",
		"variables": {"unit_number": "204"}
	}`)

	call, err := Normalize(body, testNow)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if call.ExternalCallID != "abc123" {
		t.Fatalf("external call id = %q", call.ExternalCallID)
	}
	if call.FromNumber != "+16309438357" || call.ToNumber != "+16307963284" {
		t.Fatalf("numbers = %q / %q", call.FromNumber, call.ToNumber)
	}
	if call.DurationSecs != 180 {
		t.Fatalf("duration = %d, want 180", call.DurationSecs)
	}
	if call.CallType != "maintenance" {
		t.Fatalf("call type = %q", call.CallType)
	}
	if call.Transcript != "My sink is leaking badly" {
		t.Fatalf("transcript = %q", call.Transcript)
	}
	if got := metaString(call.Metadata, "unit_number"); got != "204" {
		t.Fatalf("unit_number = %q", got)
	}
	if !call.StartedAt.Equal(time.Date(2026, 3, 14, 14, 57, 0, 0, time.UTC)) {
		t.Fatalf("started at = %v", call.StartedAt)
	}
	if !call.EndedAt.Equal(testNow) {
		t.Fatalf("ended at = %v", call.EndedAt)
	}
}

func TestNormalizeShapesAgree(t *testing.T) {
	v1 := []byte(`{
		"call_id": "xyz789",
		"from": "+16309438357",
		"to": "+16307963284",
		"call_length": 95,
		"concatenated_transcript": "Hello, I have a question about rent."
	}`)
	// Same call in the outbound-style shape: caller in to_number.
	v2 := []byte(`{
		"call_id": "xyz789",
		"to_number": "+16309438357",
		"from_number": "+16307963284",
		"duration": 95,
		"transcript": "Hello, I have a question about rent."
	}`)

	a, err := Normalize(v1, testNow)
	if err != nil {
		t.Fatalf("Normalize v1: %v", err)
	}
	b, err := Normalize(v2, testNow)
	if err != nil {
		t.Fatalf("Normalize v2: %v", err)
	}

	if a.ExternalCallID != b.ExternalCallID {
		t.Fatalf("call ids differ: %q vs %q", a.ExternalCallID, b.ExternalCallID)
	}
	if a.FromNumber != b.FromNumber || a.ToNumber != b.ToNumber {
		t.Fatalf("numbers differ: %q/%q vs %q/%q", a.FromNumber, a.ToNumber, b.FromNumber, b.ToNumber)
	}
	if a.DurationSecs != b.DurationSecs {
		t.Fatalf("durations differ: %d vs %d", a.DurationSecs, b.DurationSecs)
	}
	if a.Transcript != b.Transcript {
		t.Fatalf("transcripts differ: %q vs %q", a.Transcript, b.Transcript)
	}
	if a.CallType != b.CallType {
		t.Fatalf("call types differ: %q vs %q", a.CallType, b.CallType)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	call, err := Normalize([]byte(`{"call_id": "minimal", "from": "+16309438357"}`), testNow)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if call.DurationSecs != 0 {
		t.Fatalf("duration = %d, want 0", call.DurationSecs)
	}
	if call.Transcript != "" {
		t.Fatalf("transcript = %q, want empty", call.Transcript)
	}
	if call.CallType != "general" {
		t.Fatalf("call type = %q, want general", call.CallType)
	}
	if call.Metadata == nil {
		t.Fatal("metadata bag is nil")
	}
	if !call.StartedAt.Equal(testNow) || !call.EndedAt.Equal(testNow) {
		t.Fatalf("timestamps = %v / %v", call.StartedAt, call.EndedAt)
	}
}

func TestNormalizePartialPayloadKeepsSharedFields(t *testing.T) {
	// Neither shape's marker fields are present, only fields both shapes
	// claim. The identifier resolves, so the shared fields must still
	// decode instead of vanishing.
	body := []byte(`{
		"call_id": "p1",
		"transcript": "My sink is leaking badly",
		"recording_url": "https://cdn.example.com/rec/p1.mp3",
		"call_type": "maintenance"
	}`)

	call, err := Normalize(body, testNow)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if call.ExternalCallID != "p1" {
		t.Fatalf("external call id = %q", call.ExternalCallID)
	}
	if call.Transcript != "My sink is leaking badly" {
		t.Fatalf("transcript = %q, want the payload transcript", call.Transcript)
	}
	if call.RecordingURL != "https://cdn.example.com/rec/p1.mp3" {
		t.Fatalf("recording url = %q", call.RecordingURL)
	}
	if call.CallType != "maintenance" {
		t.Fatalf("call type = %q, want maintenance", call.CallType)
	}
}

func TestNormalizePreservesUnknownFields(t *testing.T) {
	body := []byte(`{
		"call_id": "abc123",
		"from": "+16309438357",
		"corrected_duration": 42,
		"pathway_id": "pw-7",
		"variables": {"mood": "calm"}
	}`)

	call, err := Normalize(body, testNow)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if v, ok := call.Metadata["pathway_id"].(string); !ok || v != "pw-7" {
		t.Fatalf("pathway_id = %v", call.Metadata["pathway_id"])
	}
	if v, ok := call.Metadata["corrected_duration"].(float64); !ok || v != 42 {
		t.Fatalf("corrected_duration = %v", call.Metadata["corrected_duration"])
	}
	if v, ok := call.Metadata["mood"].(string); !ok || v != "calm" {
		t.Fatalf("variables not merged into metadata: %v", call.Metadata)
	}
}

func TestNormalizeMissingCallID(t *testing.T) {
	call, err := Normalize([]byte(`{"from": "+16309438357", "call_length": 10}`), testNow)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if call.ExternalCallID != "" {
		t.Fatalf("external call id = %q, want empty", call.ExternalCallID)
	}
}

func TestNormalizeRejectsNonObject(t *testing.T) {
	if _, err := Normalize([]byte(`"not an object"`), testNow); err == nil {
		t.Fatal("Normalize accepted a non-object body")
	}
	if _, err := Normalize([]byte(`{broken`), testNow); err == nil {
		t.Fatal("Normalize accepted invalid JSON")
	}
}

func TestNormalizeDurationVariants(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"integer", `{"call_id":"d1","from":"+16309438357","call_length":180}`, 180},
		{"float", `{"call_id":"d2","from":"+16309438357","call_length":179.6}`, 179},
		{"string", `{"call_id":"d3","from":"+16309438357","call_length":"180"}`, 180},
		{"negative clamps", `{"call_id":"d4","from":"+16309438357","call_length":-5}`, 0},
		{"garbage", `{"call_id":"d5","from":"+16309438357","call_length":"three minutes"}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call, err := Normalize([]byte(tt.body), testNow)
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if call.DurationSecs != tt.want {
				t.Fatalf("duration = %d, want %d", call.DurationSecs, tt.want)
			}
		})
	}
}

func TestMetaString(t *testing.T) {
	m := map[string]any{
		"unit_number": float64(204),
		"issue":       "  leak under sink  ",
		"empty":       "",
	}

	if got := metaString(m, "unit_number"); got != "204" {
		t.Fatalf("numeric value = %q", got)
	}
	if got := metaString(m, "issue_description", "issue"); got != "leak under sink" {
		t.Fatalf("fallback key = %q", got)
	}
	if got := metaString(m, "empty", "missing"); got != "" {
		t.Fatalf("empty keys = %q", got)
	}
}
