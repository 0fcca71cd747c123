package maintenance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"propertyvoice_backend/internal/units"
	"propertyvoice_backend/platform/apperr"
	"propertyvoice_backend/platform/events"
	"propertyvoice_backend/platform/logger"
)

type stubTicketStore struct {
	insertErr error
	existing  Ticket
	inserted  []Ticket
}

func (s *stubTicketStore) Insert(ctx context.Context, t Ticket) (Ticket, error) {
	if s.insertErr != nil {
		return Ticket{}, s.insertErr
	}
	t.ID = uuid.New()
	t.TicketNumber = fmt.Sprintf("MT-20260826-%03d", len(s.inserted)+1)
	t.Status = StatusOpen
	s.inserted = append(s.inserted, t)
	return t, nil
}

func (s *stubTicketStore) GetByCallID(ctx context.Context, callID uuid.UUID) (Ticket, error) {
	if s.existing.ID == uuid.Nil {
		return Ticket{}, apperr.NotFound("ticket not found")
	}
	return s.existing, nil
}

type stubUnitFinder struct {
	unit *units.Unit
}

func (s stubUnitFinder) GetByNumber(ctx context.Context, number string) (units.Unit, error) {
	if s.unit == nil || s.unit.UnitNumber != number {
		return units.Unit{}, apperr.NotFound("unit not found")
	}
	return *s.unit, nil
}

type stubFollowUpScheduler struct {
	ticketIDs []uuid.UUID
	times     []time.Time
}

func (s *stubFollowUpScheduler) ScheduleTicketFollowUp(ctx context.Context, ticketID uuid.UUID, at time.Time) error {
	s.ticketIDs = append(s.ticketIDs, ticketID)
	s.times = append(s.times, at)
	return nil
}

func newTestTicketService(store *stubTicketStore, finder stubUnitFinder, sched FollowUpScheduler) *Service {
	log := logger.New("development")
	return NewService(store, finder, sched, events.NewInMemoryBus(log), log)
}

func TestCreateTicketRequiresDescription(t *testing.T) {
	svc := newTestTicketService(&stubTicketStore{}, stubUnitFinder{}, nil)

	_, err := svc.CreateTicket(context.Background(), CreateTicketInput{Description: "   "})
	if err == nil {
		t.Fatal("CreateTicket accepted an empty description")
	}
	if kind := apperr.GetKind(err); kind != apperr.KindBadRequest {
		t.Errorf("error kind = %v, want %v", kind, apperr.KindBadRequest)
	}
}

func TestCreateTicketEmergencyHasNoGuidance(t *testing.T) {
	store := &stubTicketStore{}
	svc := newTestTicketService(store, stubUnitFinder{}, nil)

	result, err := svc.CreateTicket(context.Background(), CreateTicketInput{
		Description: "There is a gas leak in my kitchen",
		Urgency:     "routine", // the described emergency must win
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if result.Ticket.Urgency != UrgencyEmergency {
		t.Errorf("urgency = %q, want %q", result.Ticket.Urgency, UrgencyEmergency)
	}
	if len(result.Guidance.Steps) != 0 {
		t.Errorf("emergency ticket carries %d guidance steps, want none", len(result.Guidance.Steps))
	}
	if len(store.inserted[0].Guidance) != 0 {
		t.Errorf("persisted emergency ticket carries guidance, want none")
	}
}

func TestCreateTicketResolvesUnitAndSchedulesFollowUp(t *testing.T) {
	unitID := uuid.New()
	store := &stubTicketStore{}
	sched := &stubFollowUpScheduler{}
	svc := newTestTicketService(store, stubUnitFinder{unit: &units.Unit{ID: unitID, UnitNumber: "203"}}, sched)

	result, err := svc.CreateTicket(context.Background(), CreateTicketInput{
		Description: "The bathroom faucet drips constantly",
		UnitNumber:  "203",
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if result.Ticket.UnitID == nil || *result.Ticket.UnitID != unitID {
		t.Errorf("ticket unit id = %v, want %s", result.Ticket.UnitID, unitID)
	}
	if len(sched.ticketIDs) != 1 || sched.ticketIDs[0] != result.Ticket.ID {
		t.Fatalf("scheduled follow-ups = %v, want one for %s", sched.ticketIDs, result.Ticket.ID)
	}
	if sched.times[0].IsZero() {
		t.Error("follow-up scheduled without a time")
	}
}

func TestCreateTicketDuplicateCallReturnsExisting(t *testing.T) {
	callID := uuid.New()
	existing := Ticket{ID: uuid.New(), TicketNumber: "MT-20260826-001", CallID: &callID, Status: StatusOpen}
	// The repository wraps the sentinel; the service must still see it.
	store := &stubTicketStore{
		insertErr: fmt.Errorf("insert ticket: %w", ErrDuplicateTicket),
		existing:  existing,
	}
	sched := &stubFollowUpScheduler{}
	svc := newTestTicketService(store, stubUnitFinder{}, sched)

	result, err := svc.CreateTicket(context.Background(), CreateTicketInput{
		CallID:      &callID,
		Description: "Heater is making a clicking noise",
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if !result.Replayed {
		t.Error("duplicate call did not report a replay")
	}
	if result.Ticket.TicketNumber != existing.TicketNumber {
		t.Errorf("ticket number = %q, want existing %q", result.Ticket.TicketNumber, existing.TicketNumber)
	}
	if len(sched.ticketIDs) != 0 {
		t.Errorf("replay scheduled %d follow-ups, want 0", len(sched.ticketIDs))
	}
}

func TestCreateTicketDuplicateWithoutCallIDFails(t *testing.T) {
	store := &stubTicketStore{insertErr: fmt.Errorf("insert ticket: %w", ErrDuplicateTicket)}
	svc := newTestTicketService(store, stubUnitFinder{}, nil)

	_, err := svc.CreateTicket(context.Background(), CreateTicketInput{
		Description: "Heater is making a clicking noise",
	})
	if err == nil {
		t.Fatal("duplicate without a call id did not return an error")
	}
}
