// Package summarizer turns call transcripts into structured summaries.
// The AI backend is optional: when it is disabled, unreachable or returns
// garbage, callers get a deterministic fallback instead of an error.
package summarizer

import (
	"context"
	"fmt"
	"strings"
)

// CallerInfo is what the summary extracted about the caller.
type CallerInfo struct {
	Name       string `json:"name,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
	UnitNumber string `json:"unit_number,omitempty"`
}

// Summary is the structured result of analyzing a transcript.
type Summary struct {
	CallType         string         `json:"call_type"`
	Overview         string         `json:"overview"`
	Sentiment        string         `json:"sentiment"`
	Resolved         bool           `json:"resolved"`
	CallerInfo       CallerInfo     `json:"caller_info"`
	ActionItems      []string       `json:"action_items"`
	KeyDetails       map[string]any `json:"key_details,omitempty"`
	Highlights       []string       `json:"conversation_highlights,omitempty"`
	NextSteps        []string       `json:"next_steps,omitempty"`
	RequiresCallback bool           `json:"requires_callback"`
	CallbackReason   string         `json:"callback_reason,omitempty"`

	// Fallback marks a summary synthesized without the AI backend.
	Fallback bool `json:"fallback,omitempty"`
}

// Summarizer produces a structured summary for a transcript.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (Summary, error)
}

var validCallTypes = map[string]bool{
	"leasing":     true,
	"maintenance": true,
	"payment":     true,
	"general":     true,
}

var validSentiments = map[string]bool{
	"positive": true,
	"neutral":  true,
	"negative": true,
}

// normalize clamps enumerated fields to known values so a creative model
// response never leaks an unknown call type or sentiment downstream.
func (s *Summary) normalize(defaultCallType string) {
	s.CallType = strings.ToLower(strings.TrimSpace(s.CallType))
	if !validCallTypes[s.CallType] {
		s.CallType = defaultCallType
	}
	s.Sentiment = strings.ToLower(strings.TrimSpace(s.Sentiment))
	if !validSentiments[s.Sentiment] {
		s.Sentiment = "neutral"
	}
	if s.ActionItems == nil {
		s.ActionItems = []string{}
	}
}

// Fallback builds the deterministic summary used when the transcript is
// empty or the AI backend fails: neutral sentiment, unresolved, overview
// derived from call type and duration.
func Fallback(callType string, durationSecs int) Summary {
	if !validCallTypes[callType] {
		callType = "general"
	}
	return Summary{
		CallType:    callType,
		Overview:    fmt.Sprintf("Call handled: %s, duration %ds", callType, durationSecs),
		Sentiment:   "neutral",
		Resolved:    false,
		ActionItems: []string{},
		Fallback:    true,
	}
}
