// Package contacts provides the contact bounded context: phone-keyed
// identities of tenants and prospects and their call history counters.
package contacts

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

// Contact type values.
const (
	TypeTenant   = "tenant"
	TypeProspect = "prospect"
	TypeOwner    = "owner"
	TypeVendor   = "vendor"
	TypeOther    = "other"
)

// Contact is one phone-keyed identity. Contacts are created lazily and
// never deleted.
type Contact struct {
	ID          uuid.UUID
	Name        *string
	Phone       string
	Email       *string
	ContactType string
	UnitID      *uuid.UUID
	UnitNumber  *string
	CallCount   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsTenant reports whether this contact is a current tenant.
func (c Contact) IsTenant() bool {
	return c.ContactType == TypeTenant
}

const contactColumns = `c.id, c.name, c.phone, c.email, c.contact_type, c.unit_id,
	u.unit_number, c.call_count, c.created_at, c.updated_at`

// Repository provides data access for contacts.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByPhone looks up a contact by exact phone match.
func (r *Repository) GetByPhone(ctx context.Context, phone string) (Contact, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+contactColumns+`
		FROM contacts c
		LEFT JOIN units u ON u.id = c.unit_id
		WHERE c.phone = $1
	`, phone)
	contact, err := scanContact(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Contact{}, apperr.NotFound("contact not found").WithOp("contacts.GetByPhone")
	}
	if err != nil {
		return Contact{}, fmt.Errorf("get contact by phone: %w", err)
	}
	return contact, nil
}

// FindOrCreate returns the contact for the given phone, creating a new one
// if none exists. Name and email fill in blanks on an existing contact but
// never overwrite values already present.
func (r *Repository) FindOrCreate(ctx context.Context, phone string, name, email *string, contactType string) (Contact, error) {
	if contactType == "" {
		contactType = TypeProspect
	}

	var contact Contact
	err := r.pool.QueryRow(ctx, `
		INSERT INTO contacts (phone, name, email, contact_type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (phone) DO UPDATE SET
			name       = COALESCE(contacts.name, EXCLUDED.name),
			email      = COALESCE(contacts.email, EXCLUDED.email),
			updated_at = now()
		RETURNING id, name, phone, email, contact_type, unit_id, call_count, created_at, updated_at
	`, phone, name, email, contactType).Scan(
		&contact.ID, &contact.Name, &contact.Phone, &contact.Email, &contact.ContactType,
		&contact.UnitID, &contact.CallCount, &contact.CreatedAt, &contact.UpdatedAt,
	)
	if err != nil {
		return Contact{}, fmt.Errorf("find or create contact: %w", err)
	}
	return contact, nil
}

// IncrementCallCount bumps the call counter for a contact.
func (r *Repository) IncrementCallCount(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE contacts
		SET call_count = call_count + 1, updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("increment call count: %w", err)
	}
	return nil
}

func scanContact(row pgx.Row) (Contact, error) {
	var contact Contact
	err := row.Scan(
		&contact.ID, &contact.Name, &contact.Phone, &contact.Email, &contact.ContactType,
		&contact.UnitID, &contact.UnitNumber, &contact.CallCount, &contact.CreatedAt,
		&contact.UpdatedAt,
	)
	return contact, err
}
