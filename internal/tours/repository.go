// Package tours handles property tour requests from prospective tenants.
package tours

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

// Tour request statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// ErrDuplicateTour signals that a tour request already exists for the call.
var ErrDuplicateTour = errors.New("tour request already exists for call")

// TourRequest is a prospective tenant's request to see the property.
type TourRequest struct {
	ID                 uuid.UUID  `json:"id"`
	CallID             *uuid.UUID `json:"callId,omitempty"`
	ContactID          *uuid.UUID `json:"contactId,omitempty"`
	VisitorName        string     `json:"visitorName"`
	VisitorPhone       string     `json:"visitorPhone,omitempty"`
	VisitorEmail       string     `json:"visitorEmail,omitempty"`
	PreferredDate      string     `json:"preferredDate,omitempty"`
	PreferredTime      string     `json:"preferredTime,omitempty"`
	BedroomsInterested int        `json:"bedroomsInterested,omitempty"`
	MaxBudgetCents     int64      `json:"maxBudgetCents,omitempty"`
	MoveInDate         string     `json:"moveInDate,omitempty"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"createdAt"`
}

const tourColumns = `id, call_id, contact_id, visitor_name, visitor_phone, visitor_email,
	preferred_date, preferred_time, bedrooms_interested, max_budget_cents, move_in_date,
	status, created_at`

// Repository provides data access for tour requests.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert persists a tour request. The unique index on call_id keeps one
// tour per call; live-call requests carry a NULL call id, which never
// conflicts, so they are always inserted.
func (r *Repository) Insert(ctx context.Context, t TourRequest) (TourRequest, error) {
	t.Status = StatusPending
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tour_requests (
			call_id, contact_id, visitor_name, visitor_phone, visitor_email,
			preferred_date, preferred_time, bedrooms_interested, max_budget_cents,
			move_in_date, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (call_id) DO NOTHING
		RETURNING id, created_at
	`,
		t.CallID, t.ContactID, t.VisitorName, t.VisitorPhone, t.VisitorEmail,
		t.PreferredDate, t.PreferredTime, t.BedroomsInterested, t.MaxBudgetCents,
		t.MoveInDate, t.Status,
	).Scan(&t.ID, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return TourRequest{}, ErrDuplicateTour
	}
	if err != nil {
		return TourRequest{}, fmt.Errorf("insert tour request: %w", err)
	}
	return t, nil
}

// GetByCallID returns the tour request created for a call, if any.
func (r *Repository) GetByCallID(ctx context.Context, callID uuid.UUID) (TourRequest, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+tourColumns+` FROM tour_requests WHERE call_id = $1`, callID)
	t, err := scanTour(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return TourRequest{}, apperr.NotFound("tour request not found for call").WithOp("tours.GetByCallID")
	}
	if err != nil {
		return TourRequest{}, fmt.Errorf("get tour by call: %w", err)
	}
	return t, nil
}

// List returns recent tour requests, newest first.
func (r *Repository) List(ctx context.Context, status string, limit, offset int) ([]TourRequest, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+tourColumns+`
		FROM tour_requests
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list tour requests: %w", err)
	}
	defer rows.Close()

	tours := make([]TourRequest, 0, limit)
	for rows.Next() {
		t, err := scanTour(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tour request: %w", err)
		}
		tours = append(tours, t)
	}
	return tours, rows.Err()
}

func scanTour(row pgx.Row) (TourRequest, error) {
	var t TourRequest
	err := row.Scan(
		&t.ID, &t.CallID, &t.ContactID, &t.VisitorName, &t.VisitorPhone, &t.VisitorEmail,
		&t.PreferredDate, &t.PreferredTime, &t.BedroomsInterested, &t.MaxBudgetCents,
		&t.MoveInDate, &t.Status, &t.CreatedAt,
	)
	return t, err
}
