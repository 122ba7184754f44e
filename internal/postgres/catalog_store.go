package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrvelez/pedidos/internal/catalog"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same
// store code serves standalone calls and transaction-bound ones.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type CatalogStore struct{ q querier }

func NewCatalogStore(db *pgxpool.Pool) *CatalogStore { return &CatalogStore{q: db} }

const productCols = `id, name, description, price, stock, active, version, created_at, updated_at`

func (s *CatalogStore) FindByID(ctx context.Context, id string) (catalog.Product, error) {
	row := s.q.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Product{}, catalog.ErrProductNotFound
	}
	return p, err
}

// CompareAndWrite is the optimistic write: the UPDATE only lands when
// the stored version still equals expectedVersion, and bumps it by one.
// Zero rows affected means a concurrent writer won.
func (s *CatalogStore) CompareAndWrite(ctx context.Context, p catalog.Product, expectedVersion int64) (bool, error) {
	ct, err := s.q.Exec(ctx, `
		UPDATE products
		SET name=$2, description=$3, price=$4, stock=$5, active=$6,
		    version=version+1, updated_at=$7
		WHERE id=$1 AND version=$8`,
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.Active, p.UpdatedAt, expectedVersion)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

func (s *CatalogStore) FindAllActive(ctx context.Context) ([]catalog.Product, error) {
	rows, err := s.q.Query(ctx, `SELECT `+productCols+` FROM products WHERE active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *CatalogStore) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE name=$1)`, name).Scan(&exists)
	return exists, err
}

func (s *CatalogStore) Create(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	p.ID = uuid.NewString()
	p.Version = 1
	_, err := s.q.Exec(ctx, `
		INSERT INTO products(id, name, description, price, stock, active, version, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.Active, p.Version, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return catalog.Product{}, err
	}
	return p, nil
}

func scanProduct(row pgx.Row) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock,
		&p.Active, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
