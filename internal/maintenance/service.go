package maintenance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"propertyvoice_backend/internal/events"
	"propertyvoice_backend/internal/units"
	"propertyvoice_backend/platform/apperr"
	"propertyvoice_backend/platform/logger"

	"github.com/google/uuid"
)

// FollowUpScheduler enqueues a delayed follow-up check for a ticket.
// Implemented by the asynq scheduler client; a nil scheduler disables
// follow-up scheduling (ticket creation still succeeds).
type FollowUpScheduler interface {
	ScheduleTicketFollowUp(ctx context.Context, ticketID uuid.UUID, at time.Time) error
}

// CreateTicketInput is what the voice tool (or pipeline) reports about
// a maintenance issue.
type CreateTicketInput struct {
	CallID      *uuid.UUID
	ContactID   *uuid.UUID
	UnitNumber  string
	IssueType   string
	Description string
	Urgency     string
	Metadata    map[string]any
}

// TicketResult is a created ticket together with its guidance.
type TicketResult struct {
	Ticket   Ticket
	Guidance Guidance
	Replayed bool
}

// TicketStore is the slice of the repository ticket creation needs.
type TicketStore interface {
	Insert(ctx context.Context, t Ticket) (Ticket, error)
	GetByCallID(ctx context.Context, callID uuid.UUID) (Ticket, error)
}

// UnitFinder resolves a unit number to its unit record.
type UnitFinder interface {
	GetByNumber(ctx context.Context, number string) (units.Unit, error)
}

// Service owns ticket creation: urgency classification, troubleshooting
// guidance, unit resolution, persistence and follow-up scheduling.
type Service struct {
	repo      TicketStore
	units     UnitFinder
	scheduler FollowUpScheduler
	bus       events.Bus
	log       *logger.Logger
}

func NewService(repo TicketStore, unitsRepo UnitFinder, scheduler FollowUpScheduler, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, units: unitsRepo, scheduler: scheduler, bus: bus, log: log}
}

// CreateTicket opens a work order for the reported issue. When the caller
// did not state an urgency (or stated an unknown one) it is inferred from
// the description. A second ticket for the same call returns the existing
// one instead of erroring.
func (s *Service) CreateTicket(ctx context.Context, in CreateTicketInput) (TicketResult, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return TicketResult{}, apperr.BadRequest("issue description is required").WithOp("maintenance.CreateTicket")
	}

	urgency := strings.ToLower(strings.TrimSpace(in.Urgency))
	if !ValidUrgency(urgency) {
		urgency = AnalyzeUrgency(description)
	}
	// A described emergency always wins over a caller-stated urgency.
	if AnalyzeUrgency(description) == UrgencyEmergency {
		urgency = UrgencyEmergency
	}

	guidance := Advise(in.IssueType, description, urgency)

	ticket := Ticket{
		CallID:      in.CallID,
		ContactID:   in.ContactID,
		UnitNumber:  strings.TrimSpace(in.UnitNumber),
		Category:    guidance.Category,
		Subcategory: guidance.Subcategory,
		Description: description,
		Urgency:     urgency,
		Guidance:    guidance.Steps,
		Metadata:    in.Metadata,
	}

	if ticket.UnitNumber != "" {
		unit, err := s.units.GetByNumber(ctx, ticket.UnitNumber)
		if err == nil {
			ticket.UnitID = &unit.ID
		} else if apperr.GetKind(err) != apperr.KindNotFound {
			s.log.DatabaseError("maintenance.CreateTicket", err)
		}
	}

	followUp := followUpTime(time.Now().UTC(), urgency)
	ticket.FollowUpAt = &followUp

	created, err := s.repo.Insert(ctx, ticket)
	if errors.Is(err, ErrDuplicateTicket) && in.CallID != nil {
		existing, getErr := s.repo.GetByCallID(ctx, *in.CallID)
		if getErr != nil {
			return TicketResult{}, fmt.Errorf("load existing ticket: %w", getErr)
		}
		return TicketResult{Ticket: existing, Guidance: guidance, Replayed: true}, nil
	}
	if err != nil {
		return TicketResult{}, err
	}

	s.log.Info("maintenance ticket created",
		"ticketNumber", created.TicketNumber,
		"category", created.Category,
		"urgency", created.Urgency,
	)

	if s.scheduler != nil {
		if err := s.scheduler.ScheduleTicketFollowUp(ctx, created.ID, followUp); err != nil {
			// Follow-up is best effort; the ticket itself is already safe.
			s.log.Warn("schedule ticket follow-up failed", "ticketId", created.ID, "error", err)
		}
	}

	s.bus.Publish(ctx, events.TicketCreated{
		BaseEvent:    events.NewBaseEvent(),
		TicketID:     created.ID,
		TicketNumber: created.TicketNumber,
		ContactID:    created.ContactID,
		Category:     created.Category,
		Urgency:      created.Urgency,
		UnitNumber:   created.UnitNumber,
		FollowUpAt:   followUp,
	})

	return TicketResult{Ticket: created, Guidance: guidance}, nil
}

// followUpTime computes when the ticket should be re-checked: two hours
// for emergencies, one day for urgent issues, three business days for
// routine ones.
func followUpTime(now time.Time, urgency string) time.Time {
	switch urgency {
	case UrgencyEmergency:
		return now.Add(2 * time.Hour)
	case UrgencyUrgent:
		return now.Add(24 * time.Hour)
	default:
		return addBusinessDays(now, 3)
	}
}

func addBusinessDays(t time.Time, days int) time.Time {
	for days > 0 {
		t = t.AddDate(0, 0, 1)
		if wd := t.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days--
		}
	}
	return t
}
