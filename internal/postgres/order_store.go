package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrvelez/pedidos/internal/orders"
)

type OrderStore struct{ q querier }

func NewOrderStore(db *pgxpool.Pool) *OrderStore { return &OrderStore{q: db} }

// Save writes the order and all its lines. line_no preserves the
// caller-supplied line order across reads.
func (s *OrderStore) Save(ctx context.Context, o orders.Order) (orders.Order, error) {
	o.ID = uuid.NewString()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	_, err := s.q.Exec(ctx, `
		INSERT INTO orders(id, user_id, status, total_amount, created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		o.ID, o.UserID, string(o.Status), o.TotalAmount, o.CreatedAt)
	if err != nil {
		return orders.Order{}, err
	}
	for i, l := range o.Lines {
		_, err = s.q.Exec(ctx, `
			INSERT INTO order_lines(order_id, line_no, product_id, product_name, quantity, unit_price, subtotal)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			o.ID, i, l.ProductID, l.ProductName, l.Quantity, l.UnitPrice, l.Subtotal)
		if err != nil {
			return orders.Order{}, err
		}
	}
	return o, nil
}

func (s *OrderStore) FindByID(ctx context.Context, id string) (orders.Order, error) {
	var o orders.Order
	var status string
	err := s.q.QueryRow(ctx, `
		SELECT id, user_id, status, total_amount, created_at FROM orders WHERE id=$1`, id).
		Scan(&o.ID, &o.UserID, &status, &o.TotalAmount, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return orders.Order{}, orders.ErrOrderNotFound
	}
	if err != nil {
		return orders.Order{}, err
	}
	o.Status = orders.Status(status)
	o.Lines, err = s.lines(ctx, o.ID)
	if err != nil {
		return orders.Order{}, err
	}
	return o, nil
}

func (s *OrderStore) FindByUser(ctx context.Context, userID string) ([]orders.Order, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, user_id, status, total_amount, created_at
		FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []orders.Order
	for rows.Next() {
		var o orders.Order
		var status string
		if err := rows.Scan(&o.ID, &o.UserID, &status, &o.TotalAmount, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.Status = orders.Status(status)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Lines, err = s.lines(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *OrderStore) lines(ctx context.Context, orderID string) ([]orders.OrderLine, error) {
	rows, err := s.q.Query(ctx, `
		SELECT product_id, product_name, quantity, unit_price, subtotal
		FROM order_lines WHERE order_id=$1 ORDER BY line_no`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []orders.OrderLine
	for rows.Next() {
		var l orders.OrderLine
		if err := rows.Scan(&l.ProductID, &l.ProductName, &l.Quantity, &l.UnitPrice, &l.Subtotal); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
