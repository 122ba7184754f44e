package orders

import (
	"context"
	"fmt"
	"log"

	"github.com/jrvelez/pedidos/internal/catalog"
	"github.com/shopspring/decimal"
)

const defaultReserveAttempts = 3

// LineInput is one requested (product, quantity) pair.
type LineInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Service assembles orders: it validates the command, reserves and
// prices every line inside one transaction, and persists the aggregate
// all-or-nothing.
type Service struct {
	Tx TxRunner
	// ReserveAttempts bounds the per-line compare-and-write retry loop;
	// zero means the default.
	ReserveAttempts int
}

func (s *Service) attempts() int {
	if s.ReserveAttempts > 0 {
		return s.ReserveAttempts
	}
	return defaultReserveAttempts
}

// CreateOrder places an order for userID. Lines are processed in the
// order given; the first failing line aborts the whole placement and
// rolls back every stock decrement already made for it.
func (s *Service) CreateOrder(ctx context.Context, userID string, lines []LineInput) (Order, error) {
	if err := validateRequest(userID, lines); err != nil {
		return Order{}, err
	}

	var created Order
	err := s.Tx.WithinTx(ctx, func(tx Tx) error {
		built := make([]OrderLine, 0, len(lines))
		for _, in := range lines {
			snap, err := s.reserve(ctx, tx.Catalog(), in)
			if err != nil {
				return err
			}
			line, err := PriceLine(snap, in.Quantity)
			if err != nil {
				return err
			}
			built = append(built, line)
		}

		total := decimal.Zero
		for _, l := range built {
			total = total.Add(l.Subtotal)
		}

		saved, err := tx.Orders().Save(ctx, Order{
			UserID:      userID,
			Status:      StatusPending,
			TotalAmount: total,
			Lines:       built,
		})
		if err != nil {
			return err
		}
		created = saved
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	log.Printf("order created: id=%s user=%s lines=%d total=%s",
		created.ID, created.UserID, len(created.Lines), created.TotalAmount)
	return created, nil
}

// reserve atomically checks and decrements stock for one line. A failed
// compare-and-write means a concurrent reservation moved the version;
// re-read and retry against fresh state, up to the attempt bound.
func (s *Service) reserve(ctx context.Context, cat catalog.Store, in LineInput) (Snapshot, error) {
	for i := 0; i < s.attempts(); i++ {
		p, err := cat.FindByID(ctx, in.ProductID)
		if err != nil {
			return Snapshot{}, err
		}
		next, err := p.Reserve(in.Quantity)
		if err != nil {
			return Snapshot{}, err
		}
		ok, err := cat.CompareAndWrite(ctx, next, p.Version)
		if err != nil {
			return Snapshot{}, err
		}
		if ok {
			// snapshot taken from the pre-decrement read
			return Snapshot{ProductID: p.ID, Name: p.Name, UnitPrice: p.Price}, nil
		}
	}
	return Snapshot{}, fmt.Errorf("%w: product %s", ErrReservationConflict, in.ProductID)
}

// GetOrder fetches one order. An order owned by another user is
// reported as not found, never as forbidden.
func (s *Service) GetOrder(ctx context.Context, orderID, userID string) (Order, error) {
	var out Order
	err := s.Tx.WithinTx(ctx, func(tx Tx) error {
		o, err := tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !o.BelongsTo(userID) {
			return ErrOrderNotFound
		}
		out = o
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return out, nil
}

// ListOrders returns every order owned by userID.
func (s *Service) ListOrders(ctx context.Context, userID string) ([]Order, error) {
	if userID == "" {
		return nil, ErrInvalidOrderRequest
	}
	var out []Order
	err := s.Tx.WithinTx(ctx, func(tx Tx) error {
		os, err := tx.Orders().FindByUser(ctx, userID)
		if err != nil {
			return err
		}
		out = os
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func validateRequest(userID string, lines []LineInput) error {
	if userID == "" {
		return fmt.Errorf("%w: missing user", ErrInvalidOrderRequest)
	}
	if len(lines) == 0 {
		return fmt.Errorf("%w: no lines", ErrInvalidOrderRequest)
	}
	for _, in := range lines {
		if in.ProductID == "" {
			return fmt.Errorf("%w: missing product id", ErrInvalidOrderRequest)
		}
		if in.Quantity < 1 {
			return fmt.Errorf("%w: quantity must be positive for product %s", ErrInvalidOrderRequest, in.ProductID)
		}
	}
	return nil
}
