package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
)

const defaultWriteAttempts = 3

// Service implements the product administration use cases. Writes to
// existing products go through a bounded compare-and-write loop so a
// concurrent update never silently overwrites.
type Service struct {
	Store Store
	// MaxAttempts bounds the CAS retry loop; zero means the default.
	MaxAttempts int
}

var ErrWriteConflict = errors.New("product write conflict")

func (s *Service) attempts() int {
	if s.MaxAttempts > 0 {
		return s.MaxAttempts
	}
	return defaultWriteAttempts
}

func (s *Service) Create(ctx context.Context, name, description string, price decimal.Decimal, stock int) (Product, error) {
	p, err := New(name, description, price, stock)
	if err != nil {
		return Product{}, err
	}
	exists, err := s.Store.ExistsByName(ctx, p.Name)
	if err != nil {
		return Product{}, err
	}
	if exists {
		return Product{}, fmt.Errorf("%w: %s", ErrDuplicateName, p.Name)
	}
	created, err := s.Store.Create(ctx, p)
	if err != nil {
		return Product{}, err
	}
	log.Printf("product created: id=%s name=%q", created.ID, created.Name)
	return created, nil
}

func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	p, err := s.Store.FindByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if !p.Active {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

func (s *Service) ListActive(ctx context.Context) ([]Product, error) {
	return s.Store.FindAllActive(ctx)
}

func (s *Service) Update(ctx context.Context, id string, name, description *string, price *decimal.Decimal) (Product, error) {
	return s.write(ctx, id, func(p Product) (Product, error) {
		if name != nil && *name != p.Name {
			exists, err := s.Store.ExistsByName(ctx, *name)
			if err != nil {
				return Product{}, err
			}
			if exists {
				return Product{}, fmt.Errorf("%w: %s", ErrDuplicateName, *name)
			}
		}
		return p.Update(name, description, price)
	})
}

func (s *Service) UpdateStock(ctx context.Context, id string, stock int) (Product, error) {
	return s.write(ctx, id, func(p Product) (Product, error) {
		return p.WithStock(stock)
	})
}

func (s *Service) Deactivate(ctx context.Context, id string) (Product, error) {
	return s.write(ctx, id, func(p Product) (Product, error) {
		return p.Deactivate(), nil
	})
}

// write re-reads, transitions and compare-and-writes until the version
// check passes or attempts run out. Only active products are writable.
func (s *Service) write(ctx context.Context, id string, transition func(Product) (Product, error)) (Product, error) {
	for i := 0; i < s.attempts(); i++ {
		p, err := s.Store.FindByID(ctx, id)
		if err != nil {
			return Product{}, err
		}
		if !p.Active {
			return Product{}, ErrProductInactive
		}
		next, err := transition(p)
		if err != nil {
			return Product{}, err
		}
		ok, err := s.Store.CompareAndWrite(ctx, next, p.Version)
		if err != nil {
			return Product{}, err
		}
		if ok {
			next.Version = p.Version + 1
			return next, nil
		}
	}
	return Product{}, fmt.Errorf("%w: product %s", ErrWriteConflict, id)
}
