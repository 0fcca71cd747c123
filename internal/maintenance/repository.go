package maintenance

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

// Ticket statuses.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusCancelled  = "cancelled"
)

// ErrDuplicateTicket signals that a ticket already exists for the call.
// A single call produces at most one ticket.
var ErrDuplicateTicket = errors.New("ticket already exists for call")

// Ticket is a maintenance work order created from a call.
type Ticket struct {
	ID           uuid.UUID      `json:"id"`
	TicketNumber string         `json:"ticketNumber"`
	CallID       *uuid.UUID     `json:"callId,omitempty"`
	ContactID    *uuid.UUID     `json:"contactId,omitempty"`
	UnitID       *uuid.UUID     `json:"unitId,omitempty"`
	UnitNumber   string         `json:"unitNumber,omitempty"`
	Category     string         `json:"category"`
	Subcategory  string         `json:"subcategory,omitempty"`
	Description  string         `json:"description"`
	Urgency      string         `json:"urgency"`
	Status       string         `json:"status"`
	Guidance     []string       `json:"guidance"`
	FollowUpAt   *time.Time     `json:"followUpAt,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// IsOpen reports whether the ticket still needs attention.
func (t Ticket) IsOpen() bool {
	return t.Status == StatusOpen || t.Status == StatusInProgress
}

const ticketColumns = `id, ticket_number, call_id, contact_id, unit_id, unit_number,
	category, subcategory, description, urgency, status, guidance, follow_up_at,
	metadata, created_at, updated_at`

// Repository provides data access for maintenance tickets.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert creates a ticket with a freshly allocated ticket number. The
// number and the row are written in one transaction so a failed insert
// never burns a sequence slot visible to callers. The unique index on
// call_id enforces one ticket per call.
func (r *Repository) Insert(ctx context.Context, t Ticket) (Ticket, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Ticket{}, fmt.Errorf("begin ticket insert: %w", err)
	}
	defer tx.Rollback(ctx)

	number, err := nextTicketNumber(ctx, tx, time.Now().UTC())
	if err != nil {
		return Ticket{}, err
	}
	t.TicketNumber = number
	t.Status = StatusOpen

	err = tx.QueryRow(ctx, `
		INSERT INTO maintenance_tickets (
			ticket_number, call_id, contact_id, unit_id, unit_number,
			category, subcategory, description, urgency, status,
			guidance, follow_up_at, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (call_id) DO NOTHING
		RETURNING id, created_at, updated_at
	`,
		t.TicketNumber, t.CallID, t.ContactID, t.UnitID, t.UnitNumber,
		t.Category, t.Subcategory, t.Description, t.Urgency, t.Status,
		t.Guidance, t.FollowUpAt, t.Metadata,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Ticket{}, ErrDuplicateTicket
	}
	if err != nil {
		return Ticket{}, fmt.Errorf("insert ticket: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Ticket{}, fmt.Errorf("commit ticket insert: %w", err)
	}
	return t, nil
}

// nextTicketNumber allocates the next MT-YYYYMMDD-NNNN number for today.
// The per-day counter lives in ticket_sequences and is bumped atomically
// via an upsert inside the caller's transaction.
func nextTicketNumber(ctx context.Context, tx pgx.Tx, now time.Time) (string, error) {
	day := now.Format("2006-01-02")
	var seq int
	err := tx.QueryRow(ctx, `
		INSERT INTO ticket_sequences (day, counter)
		VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET counter = ticket_sequences.counter + 1
		RETURNING counter
	`, day).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("allocate ticket number: %w", err)
	}
	return fmt.Sprintf("MT-%s-%04d", now.Format("20060102"), seq), nil
}

// GetByCallID returns the ticket created for a call, if any.
func (r *Repository) GetByCallID(ctx context.Context, callID uuid.UUID) (Ticket, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+ticketColumns+` FROM maintenance_tickets WHERE call_id = $1`, callID)
	t, err := scanTicket(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Ticket{}, apperr.NotFound("ticket not found for call").WithOp("maintenance.GetByCallID")
	}
	if err != nil {
		return Ticket{}, fmt.Errorf("get ticket by call: %w", err)
	}
	return t, nil
}

// GetByID returns a ticket by its primary key.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Ticket, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+ticketColumns+` FROM maintenance_tickets WHERE id = $1`, id)
	t, err := scanTicket(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Ticket{}, apperr.NotFound("ticket not found").WithOp("maintenance.GetByID")
	}
	if err != nil {
		return Ticket{}, fmt.Errorf("get ticket: %w", err)
	}
	return t, nil
}

// List returns recent tickets, newest first. Urgency filters when set.
func (r *Repository) List(ctx context.Context, urgency string, limit, offset int) ([]Ticket, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+ticketColumns+`
		FROM maintenance_tickets
		WHERE ($1 = '' OR urgency = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, urgency, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	tickets := make([]Ticket, 0, limit)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// UpdateStatus moves a ticket to a new status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE maintenance_tickets SET status = $2, updated_at = now() WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("update ticket status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("ticket not found").WithOp("maintenance.UpdateStatus")
	}
	return nil
}

func scanTicket(row pgx.Row) (Ticket, error) {
	var t Ticket
	err := row.Scan(
		&t.ID, &t.TicketNumber, &t.CallID, &t.ContactID, &t.UnitID, &t.UnitNumber,
		&t.Category, &t.Subcategory, &t.Description, &t.Urgency, &t.Status,
		&t.Guidance, &t.FollowUpAt, &t.Metadata, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}
