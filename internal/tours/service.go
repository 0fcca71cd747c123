package tours

import (
	"context"
	"errors"
	"strings"

	"propertyvoice_backend/internal/contacts"
	"propertyvoice_backend/internal/events"
	"propertyvoice_backend/platform/apperr"
	"propertyvoice_backend/platform/logger"
	"propertyvoice_backend/platform/phone"

	"github.com/google/uuid"
)

// ScheduleInput is what the voice tool (or pipeline) collected about a
// tour request.
type ScheduleInput struct {
	CallID             *uuid.UUID
	VisitorName        string
	VisitorPhone       string
	VisitorEmail       string
	PreferredDate      string
	PreferredTime      string
	BedroomsInterested int
	MaxBudgetCents     int64
	MoveInDate         string
}

// ScheduleResult is a created tour request.
type ScheduleResult struct {
	Tour     TourRequest
	Replayed bool
}

// TourStore is the slice of the repository tour scheduling needs.
type TourStore interface {
	Insert(ctx context.Context, t TourRequest) (TourRequest, error)
	GetByCallID(ctx context.Context, callID uuid.UUID) (TourRequest, error)
}

// ProspectRegistrar registers the visitor as a prospect contact.
type ProspectRegistrar interface {
	FindOrCreate(ctx context.Context, phone string, name, email *string, contactType string) (contacts.Contact, error)
}

// Service owns tour scheduling: prospect contact creation, persistence
// and the scheduled event.
type Service struct {
	repo     TourStore
	contacts ProspectRegistrar
	bus      events.Bus
	log      *logger.Logger
}

func NewService(repo TourStore, contactsRepo ProspectRegistrar, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, contacts: contactsRepo, bus: bus, log: log}
}

// Schedule records a tour request. The visitor is registered as a
// prospect contact when a phone number is available; contact failures
// degrade to a tour without contact linkage rather than failing.
func (s *Service) Schedule(ctx context.Context, in ScheduleInput) (ScheduleResult, error) {
	name := strings.TrimSpace(in.VisitorName)
	if name == "" {
		return ScheduleResult{}, apperr.BadRequest("visitor name is required").WithOp("tours.Schedule")
	}

	tour := TourRequest{
		CallID:             in.CallID,
		VisitorName:        name,
		VisitorPhone:       phone.NormalizeE164(in.VisitorPhone),
		VisitorEmail:       strings.TrimSpace(in.VisitorEmail),
		PreferredDate:      strings.TrimSpace(in.PreferredDate),
		PreferredTime:      strings.TrimSpace(in.PreferredTime),
		BedroomsInterested: in.BedroomsInterested,
		MaxBudgetCents:     in.MaxBudgetCents,
		MoveInDate:         strings.TrimSpace(in.MoveInDate),
	}

	if tour.VisitorPhone != "" {
		var email *string
		if tour.VisitorEmail != "" {
			email = &tour.VisitorEmail
		}
		contact, err := s.contacts.FindOrCreate(ctx, tour.VisitorPhone, &name, email, contacts.TypeProspect)
		if err != nil {
			s.log.DatabaseError("tours.Schedule", err)
		} else {
			tour.ContactID = &contact.ID
		}
	}

	created, err := s.repo.Insert(ctx, tour)
	if errors.Is(err, ErrDuplicateTour) && in.CallID != nil {
		existing, getErr := s.repo.GetByCallID(ctx, *in.CallID)
		if getErr != nil {
			return ScheduleResult{}, getErr
		}
		return ScheduleResult{Tour: existing, Replayed: true}, nil
	}
	if err != nil {
		return ScheduleResult{}, err
	}

	s.log.Info("tour scheduled",
		"tourId", created.ID,
		"visitor", created.VisitorName,
		"date", created.PreferredDate,
	)

	s.bus.Publish(ctx, events.TourScheduled{
		BaseEvent:     events.NewBaseEvent(),
		TourID:        created.ID,
		ProspectName:  created.VisitorName,
		ProspectPhone: created.VisitorPhone,
		ProspectEmail: created.VisitorEmail,
		TourDate:      created.PreferredDate,
		TourTime:      created.PreferredTime,
	})

	return ScheduleResult{Tour: created}, nil
}
