// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"propertyvoice_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Call Domain Events
// =============================================================================

// CallProcessed is published after a call record has been persisted.
// Secondary effects (recording archival, follow-up scheduling) hang off it.
type CallProcessed struct {
	BaseEvent
	CallID         uuid.UUID `json:"callId"`
	ExternalCallID string    `json:"externalCallId"`
	CallType       string    `json:"callType"`
	CallerPhone    string    `json:"callerPhone"`
	RecordingURL   string    `json:"recordingUrl,omitempty"`
	EmergencyFlag  bool      `json:"emergencyFlag"`
}

func (e CallProcessed) EventName() string { return "calls.processed" }

// =============================================================================
// Maintenance Domain Events
// =============================================================================

// TicketCreated is published when a maintenance ticket is opened for a call.
type TicketCreated struct {
	BaseEvent
	TicketID     uuid.UUID  `json:"ticketId"`
	TicketNumber string     `json:"ticketNumber"`
	ContactID    *uuid.UUID `json:"contactId,omitempty"`
	Category     string     `json:"category"`
	Urgency      string     `json:"urgency"`
	UnitNumber   string     `json:"unitNumber,omitempty"`
	FollowUpAt   time.Time  `json:"followUpAt"`
}

func (e TicketCreated) EventName() string { return "maintenance.ticket.created" }

// =============================================================================
// Tour Domain Events
// =============================================================================

// TourScheduled is published when a prospective tenant books a tour.
type TourScheduled struct {
	BaseEvent
	TourID        uuid.UUID `json:"tourId"`
	ProspectName  string    `json:"prospectName"`
	ProspectPhone string    `json:"prospectPhone"`
	ProspectEmail string    `json:"prospectEmail,omitempty"`
	TourDate      string    `json:"tourDate"`
	TourTime      string    `json:"tourTime"`
}

func (e TourScheduled) EventName() string { return "tours.scheduled" }
