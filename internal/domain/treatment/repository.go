package treatment

import "context"

type Repository interface {
	// List returns every treatment with its full slot catalog, in stable
	// name order.
	List(ctx context.Context) ([]*Treatment, error)

	// GetByName retrieves a single treatment. Returns ErrTreatmentNotFound
	// if no treatment carries that name.
	GetByName(ctx context.Context, name string) (*Treatment, error)

	// Seed inserts the given treatments if the catalog is empty.
	Seed(ctx context.Context, treatments []*Treatment) error
}
