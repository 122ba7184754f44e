package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrProductInactive = errors.New("product inactive")
	ErrDuplicateName   = errors.New("product name already exists")
	ErrInvalidProduct  = errors.New("invalid product")
)

// Product is a catalog entry. Values are immutable; every mutation is a
// transition function returning the next state, and the store bumps
// Version on each successful write.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Active      bool
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// New validates and builds a product in its initial state. The store
// assigns ID and Version on create.
func New(name, description string, price decimal.Decimal, stock int) (Product, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" {
		return Product{}, fmt.Errorf("%w: name cannot be empty", ErrInvalidProduct)
	}
	if description == "" {
		return Product{}, fmt.Errorf("%w: description cannot be empty", ErrInvalidProduct)
	}
	if price.Sign() <= 0 {
		return Product{}, fmt.Errorf("%w: price must be greater than zero", ErrInvalidProduct)
	}
	if stock < 0 {
		return Product{}, fmt.Errorf("%w: stock cannot be negative", ErrInvalidProduct)
	}
	now := time.Now().UTC()
	return Product{
		Name:        name,
		Description: description,
		Price:       price,
		Stock:       stock,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Reserve returns the product with quantity units of stock removed.
// The caller writes the result back with a version check; a shortage or
// an inactive product fails without producing a next state.
func (p Product) Reserve(quantity int) (Product, error) {
	if quantity < 1 {
		return Product{}, fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	if !p.Active {
		return Product{}, ErrProductInactive
	}
	if p.Stock < quantity {
		return Product{}, &InsufficientStockError{
			ProductID: p.ID,
			Available: p.Stock,
			Requested: quantity,
		}
	}
	p.Stock -= quantity
	p.UpdatedAt = time.Now().UTC()
	return p, nil
}

// Update applies a partial update; nil fields keep their current value.
func (p Product) Update(name, description *string, price *decimal.Decimal) (Product, error) {
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return Product{}, fmt.Errorf("%w: name cannot be empty", ErrInvalidProduct)
		}
		p.Name = n
	}
	if description != nil {
		d := strings.TrimSpace(*description)
		if d == "" {
			return Product{}, fmt.Errorf("%w: description cannot be empty", ErrInvalidProduct)
		}
		p.Description = d
	}
	if price != nil {
		if price.Sign() <= 0 {
			return Product{}, fmt.Errorf("%w: price must be greater than zero", ErrInvalidProduct)
		}
		p.Price = *price
	}
	p.UpdatedAt = time.Now().UTC()
	return p, nil
}

// WithStock sets an absolute stock level (administrative restock).
func (p Product) WithStock(stock int) (Product, error) {
	if stock < 0 {
		return Product{}, fmt.Errorf("%w: stock cannot be negative", ErrInvalidProduct)
	}
	p.Stock = stock
	p.UpdatedAt = time.Now().UTC()
	return p, nil
}

// Deactivate soft-deletes the product. Historical order lines keep
// their snapshots; the product just stops being orderable.
func (p Product) Deactivate() Product {
	p.Active = false
	p.UpdatedAt = time.Now().UTC()
	return p
}

func (p Product) HasStock(quantity int) bool {
	return quantity > 0 && p.Stock >= quantity
}

// InsufficientStockError reports a reservation that exceeds available
// stock. errors.Is(err, ErrInsufficientStock) matches it.
type InsufficientStockError struct {
	ProductID string
	Available int
	Requested int
}

var ErrInsufficientStock = errors.New("insufficient stock")

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
