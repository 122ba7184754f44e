package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrvelez/pedidos/internal/catalog"
	"github.com/jrvelez/pedidos/internal/orders"
)

// TxManager is the transaction boundary over Postgres: every stock
// decrement and the order insert for one placement share a single
// database transaction, so rollback needs no compensation bookkeeping.
type TxManager struct{ DB *pgxpool.Pool }

func (m *TxManager) WithinTx(ctx context.Context, fn func(tx orders.Tx) error) error {
	pgtx, err := m.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = pgtx.Rollback(ctx) }()

	if err := fn(&boundTx{tx: pgtx}); err != nil {
		return err
	}
	return pgtx.Commit(ctx)
}

type boundTx struct{ tx pgx.Tx }

func (t *boundTx) Catalog() catalog.Store { return &CatalogStore{q: t.tx} }
func (t *boundTx) Orders() orders.Store   { return &OrderStore{q: t.tx} }
