// Package calls provides the call record bounded context: persistence of
// processed calls and the read-only manager API over them.
package calls

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Call type values.
const (
	TypeLeasing     = "leasing"
	TypeMaintenance = "maintenance"
	TypePayment     = "payment"
	TypeGeneral     = "general"
)

// Sentiment values.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// CallRecord is the persisted outcome of one processed call.
// Immutable after insert except the email_sent fields and recording_key.
type CallRecord struct {
	ID             uuid.UUID
	ExternalCallID string
	FromNumber     string
	ToNumber       string
	CallType       string
	Status         string
	StartedAt      time.Time
	EndedAt        time.Time
	DurationSecs   int
	RecordingURL   *string
	RecordingKey   *string
	Transcript     string
	Summary        json.RawMessage
	Sentiment      string
	Resolved       bool
	ContactID      *uuid.UUID
	UnitID         *uuid.UUID
	EmailSent      bool
	EmailSentAt    *time.Time
	Metadata       map[string]any
	CreatedAt      time.Time
}

// CallResponse is the API representation of a call record.
type CallResponse struct {
	ID             uuid.UUID       `json:"id"`
	ExternalCallID string          `json:"externalCallId"`
	FromNumber     string          `json:"fromNumber"`
	ToNumber       string          `json:"toNumber"`
	CallType       string          `json:"callType"`
	Status         string          `json:"status"`
	StartedAt      time.Time       `json:"startedAt"`
	EndedAt        time.Time       `json:"endedAt"`
	DurationSecs   int             `json:"durationSecs"`
	RecordingURL   *string         `json:"recordingUrl,omitempty"`
	Transcript     string          `json:"transcript,omitempty"`
	Summary        json.RawMessage `json:"summary,omitempty"`
	Sentiment      string          `json:"sentiment"`
	Resolved       bool            `json:"resolved"`
	ContactID      *uuid.UUID      `json:"contactId,omitempty"`
	EmailSent      bool            `json:"emailSent"`
	EmailSentAt    *time.Time      `json:"emailSentAt,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

func toResponse(rec CallRecord) CallResponse {
	return CallResponse{
		ID:             rec.ID,
		ExternalCallID: rec.ExternalCallID,
		FromNumber:     rec.FromNumber,
		ToNumber:       rec.ToNumber,
		CallType:       rec.CallType,
		Status:         rec.Status,
		StartedAt:      rec.StartedAt,
		EndedAt:        rec.EndedAt,
		DurationSecs:   rec.DurationSecs,
		RecordingURL:   rec.RecordingURL,
		Transcript:     rec.Transcript,
		Summary:        rec.Summary,
		Sentiment:      rec.Sentiment,
		Resolved:       rec.Resolved,
		ContactID:      rec.ContactID,
		EmailSent:      rec.EmailSent,
		EmailSentAt:    rec.EmailSentAt,
		CreatedAt:      rec.CreatedAt,
	}
}
