package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"propertyvoice_backend/internal/calls"
	"propertyvoice_backend/internal/contacts"
	"propertyvoice_backend/internal/events"
	"propertyvoice_backend/internal/maintenance"
	"propertyvoice_backend/internal/notification"
	"propertyvoice_backend/internal/summarizer"
	"propertyvoice_backend/internal/tours"
	"propertyvoice_backend/platform/apperr"
	"propertyvoice_backend/platform/logger"

	"github.com/google/uuid"
)

// Pipeline states, in processing order.
const (
	StateReceived          = "RECEIVED"
	StateNormalized        = "NORMALIZED"
	StateEnriched          = "ENRICHED"
	StateTicketed          = "TICKETED"
	StateSummarized        = "SUMMARIZED"
	StatePersisted         = "PERSISTED"
	StateNotified          = "NOTIFIED"
	StatePersistedNoNotify = "PERSISTED-NO-NOTIFY"
	StateReplay            = "REPLAY"
)

// StageResult records how one pipeline stage went.
type StageResult struct {
	Stage  string `json:"stage"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// Outcome is the result of processing one call-ended notification.
type Outcome struct {
	CallID         uuid.UUID     `json:"callId"`
	ExternalCallID string        `json:"externalCallId"`
	State          string        `json:"state"`
	Replayed       bool          `json:"replayed"`
	Stages         []StageResult `json:"stages"`
}

// CallStore is the slice of the calls repository the pipeline needs.
type CallStore interface {
	GetByExternalID(ctx context.Context, externalCallID string) (calls.CallRecord, error)
	Insert(ctx context.Context, rec calls.CallRecord) (calls.CallRecord, error)
}

// CallerResolver maps caller phone numbers to contact identities.
type CallerResolver interface {
	Resolve(ctx context.Context, callerPhone string) contacts.Resolution
	Persist(ctx context.Context, res contacts.Resolution) (contacts.Contact, error)
}

// Dispatcher sends the manager notification for a processed call.
type Dispatcher interface {
	DispatchCallSummary(ctx context.Context, in notification.DispatchInput) error
}

// Service orchestrates the post-call pipeline. Every stage degrades
// gracefully except the primary call record insert: losing that would
// lose the call, so it is the one fatal, retryable failure.
type Service struct {
	calls      CallStore
	resolver   CallerResolver
	tickets    *maintenance.Service
	tours      *tours.Service
	summarizer summarizer.Summarizer
	dispatcher Dispatcher
	bus        events.Bus
	log        *logger.Logger
}

func NewService(
	callsRepo CallStore,
	resolver CallerResolver,
	tickets *maintenance.Service,
	tourSvc *tours.Service,
	sum summarizer.Summarizer,
	dispatcher Dispatcher,
	bus events.Bus,
	log *logger.Logger,
) *Service {
	return &Service{
		calls:      callsRepo,
		resolver:   resolver,
		tickets:    tickets,
		tours:      tourSvc,
		summarizer: sum,
		dispatcher: dispatcher,
		bus:        bus,
		log:        log,
	}
}

// Process runs the pipeline for one notification body. Processing is
// never cancelled once accepted; the incoming request context only
// carries values from here on.
func (s *Service) Process(ctx context.Context, body []byte) (Outcome, error) {
	ctx = context.WithoutCancel(ctx)

	// Raw payload first: malformed upstream bodies are expected, and this
	// is the only place they can be recovered from.
	s.log.Debug("call-ended notification received", "payload", string(body))

	call, err := Normalize(body, time.Now().UTC())
	if err != nil {
		return Outcome{}, apperr.BadRequest("notification body is not a JSON object").WithOp("webhook.Process")
	}
	if call.ExternalCallID == "" {
		return Outcome{}, apperr.BadRequest("notification is missing a call identifier").WithOp("webhook.Process")
	}

	log := s.log.WithCallID(call.ExternalCallID)
	outcome := Outcome{ExternalCallID: call.ExternalCallID, State: StateNormalized}
	outcome.record(log, StateNormalized, true, call.CallType)

	// Idempotent replay: the identifier already maps to a record, so every
	// side effect has either happened or is in flight. No-op success.
	if existing, err := s.calls.GetByExternalID(ctx, call.ExternalCallID); err == nil {
		outcome.CallID = existing.ID
		outcome.State = StateReplay
		outcome.Replayed = true
		outcome.record(log, StateReplay, true, "duplicate notification")
		return outcome, nil
	} else if apperr.GetKind(err) != apperr.KindNotFound {
		log.DatabaseError("webhook.Process", err)
	}

	// Contact resolution and summarization touch independent collaborators
	// and run concurrently. Neither is allowed to fail the pipeline.
	var (
		resolution contacts.Resolution
		summary    summarizer.Summary
		summaryOK  bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resolution = s.resolver.Resolve(gctx, call.FromNumber)
		return nil
	})
	g.Go(func() error {
		summary, summaryOK = s.summarize(gctx, log, call)
		return nil
	})
	_ = g.Wait()
	outcome.record(log, StateEnriched, true, enrichDetail(resolution))

	contact, known := s.persistContact(ctx, log, resolution)

	callID := callRecordID(call.ExternalCallID)
	outcome.CallID = callID

	ticket := s.maybeCreateTicket(ctx, log, &outcome, call, callID, contact, known)
	tour := s.maybeScheduleTour(ctx, log, &outcome, call, callID)

	if !summaryOK {
		summary = summarizer.Fallback(call.CallType, call.DurationSecs)
	}
	outcome.record(log, StateSummarized, summaryOK, summary.Sentiment)

	record, err := s.persist(ctx, call, callID, summary, contact, known)
	if errors.Is(err, calls.ErrDuplicateCall) { // lost a race with a concurrent replay
		outcome.State = StateReplay
		outcome.Replayed = true
		outcome.record(log, StateReplay, true, "concurrent duplicate")
		return outcome, nil
	}
	if err != nil {
		outcome.record(log, StatePersisted, false, err.Error())
		return outcome, apperr.Wrap(apperr.KindUnavailable, "failed to save call record", err).WithOp("webhook.Process")
	}
	outcome.CallID = record.ID
	outcome.State = StatePersisted
	outcome.record(log, StatePersisted, true, "")

	s.bus.Publish(ctx, events.CallProcessed{
		BaseEvent:      events.NewBaseEvent(),
		CallID:         record.ID,
		ExternalCallID: record.ExternalCallID,
		CallType:       record.CallType,
		CallerPhone:    record.FromNumber,
		RecordingURL:   call.RecordingURL,
		EmergencyFlag:  ticket != nil && ticket.Ticket.Urgency == maintenance.UrgencyEmergency,
	})

	if err := s.dispatcher.DispatchCallSummary(ctx, notification.DispatchInput{
		Record:  record,
		Summary: summary,
		Contact: contact,
		Known:   known,
		Ticket:  ticket,
		Tour:    tour,
	}); err != nil {
		log.Warn("call summary notification failed", "error", err)
		outcome.State = StatePersistedNoNotify
		outcome.record(log, StateNotified, false, err.Error())
		return outcome, nil
	}

	outcome.State = StateNotified
	outcome.record(log, StateNotified, true, "")
	return outcome, nil
}

// callIDNamespace is the UUIDv5 namespace for call record identifiers.
var callIDNamespace = uuid.MustParse("b3c7a1d4-5e2f-4a8b-9c6d-0e1f2a3b4c5d")

// callRecordID derives the call record id from the external call
// identifier. Concurrent deliveries of the same notification therefore
// compute the same id, so ticket and tour inserts linked to the call
// collide on their unique indexes instead of leaving orphan duplicates.
func callRecordID(externalCallID string) uuid.UUID {
	return uuid.NewSHA1(callIDNamespace, []byte(externalCallID))
}

// summarize invokes the AI summarizer. ok is false when the transcript is
// empty, the summarizer is disabled, or the model call fails.
func (s *Service) summarize(ctx context.Context, log *logger.Logger, call NormalizedCall) (summarizer.Summary, bool) {
	if s.summarizer == nil || call.Transcript == "" {
		return summarizer.Summary{}, false
	}
	summary, err := s.summarizer.Summarize(ctx, call.Transcript)
	if err != nil {
		log.Warn("summarization failed, using fallback", "error", err)
		return summarizer.Summary{}, false
	}
	return summary, true
}

// persistContact saves the resolved caller once the call is worth
// recording. Unknown callers and save failures both degrade to an
// unlinked call record.
func (s *Service) persistContact(ctx context.Context, log *logger.Logger, res contacts.Resolution) (contacts.Contact, bool) {
	if res.Unknown {
		return res.Contact, false
	}
	contact, err := s.resolver.Persist(ctx, res)
	if err != nil {
		log.DatabaseError("webhook.persistContact", err)
		return res.Contact, false
	}
	return contact, res.Known || contact.ID != uuid.Nil
}

// maybeCreateTicket opens a maintenance ticket when the call type is
// maintenance and an issue description exists (agent-collected, falling
// back to the transcript). Failures are logged, never fatal.
func (s *Service) maybeCreateTicket(ctx context.Context, log *logger.Logger, outcome *Outcome, call NormalizedCall, callID uuid.UUID, contact contacts.Contact, known bool) *maintenance.TicketResult {
	if call.CallType != "maintenance" {
		return nil
	}
	description := metaString(call.Metadata, "issue_description", "issue")
	if description == "" {
		description = call.Transcript
	}
	if description == "" {
		return nil
	}

	input := maintenance.CreateTicketInput{
		CallID:      &callID,
		UnitNumber:  metaString(call.Metadata, "unit_number", "unit"),
		IssueType:   metaString(call.Metadata, "issue_type"),
		Description: description,
		Urgency:     metaString(call.Metadata, "urgency"),
		Metadata:    map[string]any{"source": "call_ended_webhook"},
	}
	if known && contact.ID != uuid.Nil {
		input.ContactID = &contact.ID
	}
	if input.UnitNumber == "" && contact.UnitNumber != nil {
		input.UnitNumber = *contact.UnitNumber
	}

	result, err := s.tickets.CreateTicket(ctx, input)
	if err != nil {
		log.Warn("ticket creation failed", "error", err)
		outcome.record(log, StateTicketed, false, err.Error())
		return nil
	}
	outcome.record(log, StateTicketed, true, result.Ticket.TicketNumber)
	return &result
}

// maybeScheduleTour books a tour when the call type is leasing and the
// agent collected a visitor name plus a date or time preference.
func (s *Service) maybeScheduleTour(ctx context.Context, log *logger.Logger, outcome *Outcome, call NormalizedCall, callID uuid.UUID) *tours.ScheduleResult {
	if call.CallType != "leasing" {
		return nil
	}
	name := metaString(call.Metadata, "visitor_name", "name")
	date := metaString(call.Metadata, "tour_date", "preferred_date", "date")
	timeOfDay := metaString(call.Metadata, "tour_time", "preferred_time", "time")
	if name == "" || (date == "" && timeOfDay == "") {
		return nil
	}

	result, err := s.tours.Schedule(ctx, tours.ScheduleInput{
		CallID:        &callID,
		VisitorName:   name,
		VisitorPhone:  call.FromNumber,
		VisitorEmail:  metaString(call.Metadata, "email", "visitor_email"),
		PreferredDate: date,
		PreferredTime: timeOfDay,
	})
	if err != nil {
		log.Warn("tour scheduling failed", "error", err)
		outcome.record(log, StateTicketed, false, err.Error())
		return nil
	}
	outcome.record(log, StateTicketed, true, "tour "+result.Tour.ID.String())
	return &result
}

func (s *Service) persist(ctx context.Context, call NormalizedCall, callID uuid.UUID, summary summarizer.Summary, contact contacts.Contact, known bool) (calls.CallRecord, error) {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		summaryJSON = []byte(`{}`)
	}

	rec := calls.CallRecord{
		ID:             callID,
		ExternalCallID: call.ExternalCallID,
		FromNumber:     call.FromNumber,
		ToNumber:       call.ToNumber,
		CallType:       call.CallType,
		Status:         "completed",
		StartedAt:      call.StartedAt,
		EndedAt:        call.EndedAt,
		DurationSecs:   call.DurationSecs,
		Transcript:     call.Transcript,
		Summary:        summaryJSON,
		Sentiment:      summary.Sentiment,
		Resolved:       summary.Resolved,
		Metadata:       call.Metadata,
	}
	if call.RecordingURL != "" {
		rec.RecordingURL = &call.RecordingURL
	}
	if known && contact.ID != uuid.Nil {
		rec.ContactID = &contact.ID
		rec.UnitID = contact.UnitID
	}

	return s.calls.Insert(ctx, rec)
}

func enrichDetail(res contacts.Resolution) string {
	switch {
	case res.Unknown:
		return "unknown caller"
	case res.Known:
		return "known contact"
	default:
		return "new prospect"
	}
}

func (o *Outcome) record(log *logger.Logger, stage string, ok bool, detail string) {
	o.Stages = append(o.Stages, StageResult{Stage: stage, OK: ok, Detail: detail})
	log.PipelineStage(o.ExternalCallID, stage, ok, detail)
}
