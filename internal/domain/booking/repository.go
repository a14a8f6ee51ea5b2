package booking

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new booking as a single atomic write. Returns
	// ErrDuplicateIntent when the (treatment, date, patient) uniqueness
	// constraint rejects the row.
	Create(ctx context.Context, b *Booking) error

	// GetByID retrieves a booking by primary key. Returns ErrBookingNotFound
	// if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindIntent looks up a booking by (treatment, date, patient), ignoring
	// the slot. Returns ErrBookingNotFound when no such intent exists.
	FindIntent(ctx context.Context, treatment, date, patient string) (*Booking, error)

	// ListByDate returns every booking whose date equals the given label
	// exactly. An unknown label yields an empty list, not an error.
	ListByDate(ctx context.Context, date string) ([]*Booking, error)

	// ListByPatient returns a patient's bookings, newest first.
	ListByPatient(ctx context.Context, patient string) ([]*Booking, error)

	// MarkPaid sets paid=true and records the payment transaction id.
	MarkPaid(ctx context.Context, id uuid.UUID, transactionID string) (*Booking, error)
}
