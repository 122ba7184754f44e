package orders

import (
	"context"

	"github.com/jrvelez/pedidos/internal/catalog"
)

// Store persists order aggregates as a unit: Save writes the order and
// all its lines together and returns the order with its assigned id.
type Store interface {
	Save(ctx context.Context, o Order) (Order, error)
	FindByID(ctx context.Context, id string) (Order, error)
	FindByUser(ctx context.Context, userID string) ([]Order, error)
}

// Tx exposes the stores bound to one atomic unit of work.
type Tx interface {
	Catalog() catalog.Store
	Orders() Store
}

// TxRunner is the transaction boundary: fn's catalog writes and order
// writes either all commit (fn returns nil) or all roll back. The
// returned error is fn's error, unchanged, unless commit itself fails.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}
