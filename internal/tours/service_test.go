package tours

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"propertyvoice_backend/internal/contacts"
	"propertyvoice_backend/platform/apperr"
	"propertyvoice_backend/platform/events"
	"propertyvoice_backend/platform/logger"
)

type stubTourStore struct {
	insertErr error
	existing  TourRequest
	inserted  []TourRequest
}

func (s *stubTourStore) Insert(ctx context.Context, t TourRequest) (TourRequest, error) {
	if s.insertErr != nil {
		return TourRequest{}, s.insertErr
	}
	t.ID = uuid.New()
	t.Status = StatusPending
	s.inserted = append(s.inserted, t)
	return t, nil
}

func (s *stubTourStore) GetByCallID(ctx context.Context, callID uuid.UUID) (TourRequest, error) {
	if s.existing.ID == uuid.Nil {
		return TourRequest{}, apperr.NotFound("tour request not found")
	}
	return s.existing, nil
}

type stubRegistrar struct {
	contact contacts.Contact
	err     error
}

func (s stubRegistrar) FindOrCreate(ctx context.Context, phone string, name, email *string, contactType string) (contacts.Contact, error) {
	return s.contact, s.err
}

func newTestTourService(store *stubTourStore, registrar stubRegistrar) *Service {
	log := logger.New("development")
	return NewService(store, registrar, events.NewInMemoryBus(log), log)
}

func TestScheduleRequiresVisitorName(t *testing.T) {
	svc := newTestTourService(&stubTourStore{}, stubRegistrar{})

	_, err := svc.Schedule(context.Background(), ScheduleInput{PreferredDate: "2026-09-01"})
	if err == nil {
		t.Fatal("Schedule accepted an empty visitor name")
	}
	if kind := apperr.GetKind(err); kind != apperr.KindBadRequest {
		t.Errorf("error kind = %v, want %v", kind, apperr.KindBadRequest)
	}
}

func TestScheduleRegistersProspect(t *testing.T) {
	contactID := uuid.New()
	store := &stubTourStore{}
	svc := newTestTourService(store, stubRegistrar{contact: contacts.Contact{ID: contactID}})

	result, err := svc.Schedule(context.Background(), ScheduleInput{
		VisitorName:   "Jamie Fox",
		VisitorPhone:  "(212) 555-0142",
		PreferredDate: "2026-09-01",
	})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if result.Tour.ContactID == nil || *result.Tour.ContactID != contactID {
		t.Errorf("tour contact id = %v, want %s", result.Tour.ContactID, contactID)
	}
	if store.inserted[0].VisitorPhone != "+12125550142" {
		t.Errorf("visitor phone = %q, want normalized +12125550142", store.inserted[0].VisitorPhone)
	}
}

func TestScheduleContactFailureStillBooksTour(t *testing.T) {
	store := &stubTourStore{}
	svc := newTestTourService(store, stubRegistrar{err: errors.New("connection refused")})

	result, err := svc.Schedule(context.Background(), ScheduleInput{
		VisitorName:   "Jamie Fox",
		VisitorPhone:  "+15551230001",
		PreferredDate: "2026-09-01",
	})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if result.Tour.ContactID != nil {
		t.Errorf("tour linked to a contact despite the registration failure")
	}
	if len(store.inserted) != 1 {
		t.Errorf("inserted %d tours, want 1", len(store.inserted))
	}
}

func TestScheduleDuplicateCallReturnsExisting(t *testing.T) {
	callID := uuid.New()
	existing := TourRequest{ID: uuid.New(), CallID: &callID, VisitorName: "Jamie Fox", Status: StatusPending}
	// The repository wraps the sentinel; the service must still see it.
	store := &stubTourStore{
		insertErr: fmt.Errorf("insert tour request: %w", ErrDuplicateTour),
		existing:  existing,
	}
	svc := newTestTourService(store, stubRegistrar{})

	result, err := svc.Schedule(context.Background(), ScheduleInput{
		CallID:        &callID,
		VisitorName:   "Jamie Fox",
		PreferredDate: "2026-09-01",
	})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if !result.Replayed {
		t.Error("duplicate call did not report a replay")
	}
	if result.Tour.ID != existing.ID {
		t.Errorf("tour id = %s, want existing %s", result.Tour.ID, existing.ID)
	}
}

func TestScheduleDuplicateWithoutCallIDFails(t *testing.T) {
	store := &stubTourStore{insertErr: fmt.Errorf("insert tour request: %w", ErrDuplicateTour)}
	svc := newTestTourService(store, stubRegistrar{})

	_, err := svc.Schedule(context.Background(), ScheduleInput{VisitorName: "Jamie Fox"})
	if err == nil {
		t.Fatal("duplicate without a call id did not return an error")
	}
}
