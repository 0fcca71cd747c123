package calls

import (
	"context"
	"errors"
	"fmt"
	"time"

	"propertyvoice_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateCall signals that a record with the same external call ID
// already exists. The caller decides whether that is a replay or a race.
var ErrDuplicateCall = errors.New("call record already exists")

const callColumns = `id, external_call_id, from_number, to_number, call_type, status,
	started_at, ended_at, duration_secs, recording_url, recording_key, transcript,
	summary, sentiment, resolved, contact_id, unit_id, email_sent, email_sent_at,
	metadata, created_at`

// Repository provides data access for call records.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert persists a new call record. The unique index on external_call_id
// makes replays safe: a concurrent duplicate returns ErrDuplicateCall
// instead of a second row. The ID is assigned by the caller so tickets
// and tours created in the same pipeline run can reference the call.
func (r *Repository) Insert(ctx context.Context, rec CallRecord) (CallRecord, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO calls (
			id, external_call_id, from_number, to_number, call_type, status,
			started_at, ended_at, duration_secs, recording_url, transcript,
			summary, sentiment, resolved, contact_id, unit_id, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (external_call_id) DO NOTHING
		RETURNING id, email_sent, created_at
	`,
		rec.ID, rec.ExternalCallID, rec.FromNumber, rec.ToNumber, rec.CallType, rec.Status,
		rec.StartedAt, rec.EndedAt, rec.DurationSecs, rec.RecordingURL, rec.Transcript,
		rec.Summary, rec.Sentiment, rec.Resolved, rec.ContactID, rec.UnitID, rec.Metadata,
	).Scan(&rec.ID, &rec.EmailSent, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return CallRecord{}, ErrDuplicateCall
	}
	if err != nil {
		return CallRecord{}, fmt.Errorf("insert call record: %w", err)
	}
	return rec, nil
}

// GetByExternalID looks up a call record by its platform call ID.
func (r *Repository) GetByExternalID(ctx context.Context, externalCallID string) (CallRecord, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+callColumns+`
		FROM calls
		WHERE external_call_id = $1
	`, externalCallID)
	rec, err := scanCall(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return CallRecord{}, apperr.NotFound("call record not found").WithOp("calls.GetByExternalID")
	}
	if err != nil {
		return CallRecord{}, fmt.Errorf("get call by external id: %w", err)
	}
	return rec, nil
}

// GetByID looks up a call record by its primary key.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (CallRecord, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+callColumns+`
		FROM calls
		WHERE id = $1
	`, id)
	rec, err := scanCall(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return CallRecord{}, apperr.NotFound("call record not found").WithOp("calls.GetByID")
	}
	if err != nil {
		return CallRecord{}, fmt.Errorf("get call by id: %w", err)
	}
	return rec, nil
}

// MarkEmailSent sets the email_sent flag exactly once.
// The WHERE clause keeps a concurrent second dispatch from rewriting the timestamp.
func (r *Repository) MarkEmailSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE calls
		SET email_sent = true, email_sent_at = $2
		WHERE id = $1 AND email_sent = false
	`, id, sentAt)
	if err != nil {
		return fmt.Errorf("mark email sent: %w", err)
	}
	return nil
}

// SetRecordingKey stores the archived recording object key.
func (r *Repository) SetRecordingKey(ctx context.Context, id uuid.UUID, key string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE calls
		SET recording_key = $2
		WHERE id = $1
	`, id, key)
	if err != nil {
		return fmt.Errorf("set recording key: %w", err)
	}
	return nil
}

// List returns recent call records, newest first.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]CallRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+callColumns+`
		FROM calls
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}
	defer rows.Close()

	records := make([]CallRecord, 0, limit)
	for rows.Next() {
		rec, err := scanCall(rows)
		if err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanCall(row pgx.Row) (CallRecord, error) {
	var rec CallRecord
	err := row.Scan(
		&rec.ID, &rec.ExternalCallID, &rec.FromNumber, &rec.ToNumber, &rec.CallType,
		&rec.Status, &rec.StartedAt, &rec.EndedAt, &rec.DurationSecs, &rec.RecordingURL,
		&rec.RecordingKey, &rec.Transcript, &rec.Summary, &rec.Sentiment, &rec.Resolved,
		&rec.ContactID, &rec.UnitID, &rec.EmailSent, &rec.EmailSentAt, &rec.Metadata,
		&rec.CreatedAt,
	)
	return rec, err
}
