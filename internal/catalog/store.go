package catalog

import "context"

// Store is the catalog persistence port. CompareAndWrite is the only
// mutation path for existing products: it writes p conditioned on the
// stored version still being expectedVersion, bumps the version on
// success, and reports false (no error) when a concurrent writer got
// there first.
type Store interface {
	FindByID(ctx context.Context, id string) (Product, error)
	CompareAndWrite(ctx context.Context, p Product, expectedVersion int64) (bool, error)
	FindAllActive(ctx context.Context) ([]Product, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, p Product) (Product, error)
}
