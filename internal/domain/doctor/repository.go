package doctor

import "context"

type Repository interface {
	// Create persists a new doctor. Returns ErrDoctorAlreadyExists on a
	// duplicate email.
	Create(ctx context.Context, d *Doctor) error

	// DeleteByEmail removes a doctor from the roster. Returns
	// ErrDoctorNotFound if no doctor carries that email.
	DeleteByEmail(ctx context.Context, email string) error

	// List returns the full roster in stable name order.
	List(ctx context.Context) ([]*Doctor, error)
}
