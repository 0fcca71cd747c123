package webhook

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"propertyvoice_backend/internal/calls"
	"propertyvoice_backend/internal/contacts"
	"propertyvoice_backend/internal/notification"
	"propertyvoice_backend/internal/summarizer"
	"propertyvoice_backend/platform/apperr"
	"propertyvoice_backend/platform/events"
	"propertyvoice_backend/platform/logger"
)

type stubCallStore struct {
	existing  *calls.CallRecord
	insertErr error
	inserted  []calls.CallRecord
}

func (s *stubCallStore) GetByExternalID(ctx context.Context, externalCallID string) (calls.CallRecord, error) {
	if s.existing != nil && s.existing.ExternalCallID == externalCallID {
		return *s.existing, nil
	}
	return calls.CallRecord{}, apperr.NotFound("call record not found")
}

func (s *stubCallStore) Insert(ctx context.Context, rec calls.CallRecord) (calls.CallRecord, error) {
	if s.insertErr != nil {
		return calls.CallRecord{}, s.insertErr
	}
	s.inserted = append(s.inserted, rec)
	return rec, nil
}

type stubResolver struct{}

func (stubResolver) Resolve(ctx context.Context, callerPhone string) contacts.Resolution {
	return contacts.Resolution{
		Contact: contacts.Contact{ContactType: contacts.TypeOther},
		Unknown: true,
	}
}

func (stubResolver) Persist(ctx context.Context, res contacts.Resolution) (contacts.Contact, error) {
	return res.Contact, nil
}

type stubDispatcher struct {
	sent []notification.DispatchInput
	err  error
}

func (d *stubDispatcher) DispatchCallSummary(ctx context.Context, in notification.DispatchInput) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, in)
	return nil
}

type stubSummarizer struct {
	summary summarizer.Summary
	err     error
}

func (s stubSummarizer) Summarize(ctx context.Context, transcript string) (summarizer.Summary, error) {
	return s.summary, s.err
}

func newTestService(store *stubCallStore, dispatcher *stubDispatcher, sum summarizer.Summarizer) *Service {
	log := logger.New("development")
	return NewService(store, stubResolver{}, nil, nil, sum, dispatcher, events.NewInMemoryBus(log), log)
}

const generalCallBody = `{
	"call_id": "call-svc-1",
	"from": "+15551230001",
	"to": "+15559870002",
	"call_length": 1.5,
	"concatenated_transcript": "Hi, what are your office hours?",
	"call_type": "general",
	"variables": {}
}`

func TestProcessReplayShortCircuits(t *testing.T) {
	existingID := uuid.New()
	store := &stubCallStore{existing: &calls.CallRecord{ID: existingID, ExternalCallID: "call-svc-1"}}
	dispatcher := &stubDispatcher{}
	svc := newTestService(store, dispatcher, nil)

	out, err := svc.Process(context.Background(), []byte(generalCallBody))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !out.Replayed || out.State != StateReplay {
		t.Fatalf("state = %q replayed = %v, want %q replay", out.State, out.Replayed, StateReplay)
	}
	if out.CallID != existingID {
		t.Errorf("CallID = %s, want existing record id %s", out.CallID, existingID)
	}
	if len(store.inserted) != 0 {
		t.Errorf("duplicate notification inserted %d records, want 0", len(store.inserted))
	}
	if len(dispatcher.sent) != 0 {
		t.Errorf("duplicate notification dispatched %d emails, want 0", len(dispatcher.sent))
	}
}

func TestProcessSummarizerFailureStillPersistsAndNotifies(t *testing.T) {
	store := &stubCallStore{}
	dispatcher := &stubDispatcher{}
	svc := newTestService(store, dispatcher, stubSummarizer{err: errors.New("model timeout")})

	out, err := svc.Process(context.Background(), []byte(generalCallBody))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.State != StateNotified {
		t.Fatalf("state = %q, want %q", out.State, StateNotified)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("inserted %d records, want 1", len(store.inserted))
	}
	rec := store.inserted[0]
	if rec.Sentiment != "neutral" || rec.Resolved {
		t.Errorf("fallback summary persisted sentiment=%q resolved=%v, want neutral/false", rec.Sentiment, rec.Resolved)
	}
	if len(dispatcher.sent) != 1 {
		t.Fatalf("dispatched %d emails, want 1", len(dispatcher.sent))
	}
	if !dispatcher.sent[0].Summary.Fallback {
		t.Errorf("dispatched summary is not marked as fallback")
	}
}

func TestProcessSummarySuccess(t *testing.T) {
	store := &stubCallStore{}
	dispatcher := &stubDispatcher{}
	svc := newTestService(store, dispatcher, stubSummarizer{summary: summarizer.Summary{
		CallType: "general", Overview: "Office hours question", Sentiment: "positive", Resolved: true,
	}})

	out, err := svc.Process(context.Background(), []byte(generalCallBody))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.State != StateNotified {
		t.Fatalf("state = %q, want %q", out.State, StateNotified)
	}
	if got := store.inserted[0]; got.Sentiment != "positive" || !got.Resolved {
		t.Errorf("persisted sentiment=%q resolved=%v, want positive/true", got.Sentiment, got.Resolved)
	}
}

func TestProcessInsertFailureIsRetryable(t *testing.T) {
	store := &stubCallStore{insertErr: errors.New("connection refused")}
	dispatcher := &stubDispatcher{}
	svc := newTestService(store, dispatcher, nil)

	_, err := svc.Process(context.Background(), []byte(generalCallBody))
	if err == nil {
		t.Fatal("Process returned nil error when the call record insert failed")
	}
	if kind := apperr.GetKind(err); kind != apperr.KindUnavailable {
		t.Errorf("error kind = %v, want %v", kind, apperr.KindUnavailable)
	}
	if len(dispatcher.sent) != 0 {
		t.Errorf("dispatched %d emails after a failed insert, want 0", len(dispatcher.sent))
	}
}

func TestProcessConcurrentDuplicateInsert(t *testing.T) {
	// A second delivery racing past the replay check loses the insert to
	// the unique index. The sentinel arrives wrapped by the repository.
	store := &stubCallStore{insertErr: fmt.Errorf("insert call record: %w", calls.ErrDuplicateCall)}
	dispatcher := &stubDispatcher{}
	svc := newTestService(store, dispatcher, nil)

	out, err := svc.Process(context.Background(), []byte(generalCallBody))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !out.Replayed || out.State != StateReplay {
		t.Fatalf("state = %q replayed = %v, want %q replay", out.State, out.Replayed, StateReplay)
	}
	if len(dispatcher.sent) != 0 {
		t.Errorf("dispatched %d emails for a lost insert race, want 0", len(dispatcher.sent))
	}
}

func TestProcessDispatchFailureStillSucceeds(t *testing.T) {
	store := &stubCallStore{}
	dispatcher := &stubDispatcher{err: errors.New("smtp: connection reset")}
	svc := newTestService(store, dispatcher, nil)

	out, err := svc.Process(context.Background(), []byte(generalCallBody))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.State != StatePersistedNoNotify {
		t.Errorf("state = %q, want %q", out.State, StatePersistedNoNotify)
	}
	if len(store.inserted) != 1 {
		t.Errorf("inserted %d records, want 1", len(store.inserted))
	}
}

func TestCallRecordIDIsDeterministic(t *testing.T) {
	a := callRecordID("call-abc")
	b := callRecordID("call-abc")
	c := callRecordID("call-abd")
	if a != b {
		t.Errorf("same external id produced different record ids: %s vs %s", a, b)
	}
	if a == c {
		t.Errorf("different external ids produced the same record id: %s", a)
	}

	// The persisted record carries the derived id, so concurrent
	// deliveries write the same primary key and linked rows.
	store := &stubCallStore{}
	svc := newTestService(store, &stubDispatcher{}, nil)
	if _, err := svc.Process(context.Background(), []byte(generalCallBody)); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got, want := store.inserted[0].ID, callRecordID("call-svc-1"); got != want {
		t.Errorf("persisted record id = %s, want derived %s", got, want)
	}
}
