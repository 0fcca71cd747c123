// Package units provides the rental unit bounded context: availability
// queries used by the live-call tools.
package units

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

// Unit status values.
const (
	StatusAvailable   = "available"
	StatusOccupied    = "occupied"
	StatusMaintenance = "maintenance"
)

// Unit is one rentable apartment.
type Unit struct {
	ID         uuid.UUID
	UnitNumber string
	Bedrooms   int
	Bathrooms  float64
	RentCents  int64
	SquareFeet *int
	Amenities  []string
	Status     string
	CreatedAt  time.Time
}

const unitColumns = `id, unit_number, bedrooms, bathrooms, rent_cents, square_feet, amenities, status, created_at`

// Repository provides data access for units.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// AvailabilityFilter narrows the available-unit search.
// Zero values mean "no constraint".
type AvailabilityFilter struct {
	Bedrooms     int
	MaxRentCents int64
}

// ListAvailable returns available units matching the filter, cheapest first.
func (r *Repository) ListAvailable(ctx context.Context, filter AvailabilityFilter) ([]Unit, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+unitColumns+`
		FROM units
		WHERE status = $1
		  AND ($2 = 0 OR bedrooms = $2)
		  AND ($3 = 0 OR rent_cents <= $3)
		ORDER BY rent_cents
		LIMIT 10
	`, StatusAvailable, filter.Bedrooms, filter.MaxRentCents)
	if err != nil {
		return nil, fmt.Errorf("list available units: %w", err)
	}
	defer rows.Close()

	var units []Unit
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}

// GetByNumber looks up a unit by its unit number.
func (r *Repository) GetByNumber(ctx context.Context, unitNumber string) (Unit, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+unitColumns+`
		FROM units
		WHERE unit_number = $1
	`, unitNumber)
	unit, err := scanUnit(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Unit{}, apperr.NotFound("unit not found").WithOp("units.GetByNumber")
	}
	if err != nil {
		return Unit{}, fmt.Errorf("get unit by number: %w", err)
	}
	return unit, nil
}

func scanUnit(row pgx.Row) (Unit, error) {
	var unit Unit
	err := row.Scan(
		&unit.ID, &unit.UnitNumber, &unit.Bedrooms, &unit.Bathrooms, &unit.RentCents,
		&unit.SquareFeet, &unit.Amenities, &unit.Status, &unit.CreatedAt,
	)
	return unit, err
}
