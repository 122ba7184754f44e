package catalog

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewValidation(t *testing.T) {
	cases := []struct {
		name        string
		pname       string
		description string
		price       decimal.Decimal
		stock       int
	}{
		{"empty name", "", "desc", decimal.NewFromInt(1), 1},
		{"blank name", "   ", "desc", decimal.NewFromInt(1), 1},
		{"empty description", "widget", "", decimal.NewFromInt(1), 1},
		{"zero price", "widget", "desc", decimal.Zero, 1},
		{"negative price", "widget", "desc", decimal.NewFromInt(-1), 1},
		{"negative stock", "widget", "desc", decimal.NewFromInt(1), -1},
	}
	for _, c := range cases {
		if _, err := New(c.pname, c.description, c.price, c.stock); !errors.Is(err, ErrInvalidProduct) {
			t.Errorf("%s: expected ErrInvalidProduct, got %v", c.name, err)
		}
	}
}

func TestNewTrimsAndActivates(t *testing.T) {
	p, err := New("  widget  ", "  a widget  ", decimal.RequireFromString("9.99"), 10)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if p.Name != "widget" || p.Description != "a widget" {
		t.Fatalf("not trimmed: %+v", p)
	}
	if !p.Active {
		t.Fatal("new product should be active")
	}
	if p.Stock != 10 {
		t.Fatalf("stock = %d", p.Stock)
	}
}

func TestReserve(t *testing.T) {
	p, _ := New("widget", "a widget", decimal.RequireFromString("9.99"), 10)
	p.ID = "p1"

	next, err := p.Reserve(3)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if next.Stock != 7 {
		t.Fatalf("stock = %d, want 7", next.Stock)
	}
	// original value untouched
	if p.Stock != 10 {
		t.Fatalf("receiver mutated: %d", p.Stock)
	}
}

func TestReserveInsufficient(t *testing.T) {
	p, _ := New("widget", "a widget", decimal.NewFromInt(5), 1)
	p.ID = "p2"

	_, err := p.Reserve(5)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	var ise *InsufficientStockError
	if !errors.As(err, &ise) {
		t.Fatalf("expected *InsufficientStockError, got %T", err)
	}
	if ise.Available != 1 || ise.Requested != 5 || ise.ProductID != "p2" {
		t.Fatalf("wrong detail: %+v", ise)
	}
}

func TestReserveInactive(t *testing.T) {
	p, _ := New("widget", "a widget", decimal.NewFromInt(5), 10)
	p = p.Deactivate()
	if _, err := p.Reserve(1); !errors.Is(err, ErrProductInactive) {
		t.Fatalf("expected ErrProductInactive, got %v", err)
	}
}

func TestReserveNonPositiveQuantity(t *testing.T) {
	p, _ := New("widget", "a widget", decimal.NewFromInt(5), 10)
	if _, err := p.Reserve(0); err == nil {
		t.Fatal("expected error for quantity 0")
	}
}

func TestUpdatePartial(t *testing.T) {
	p, _ := New("widget", "a widget", decimal.NewFromInt(5), 10)
	newPrice := decimal.RequireFromString("7.50")
	next, err := p.Update(nil, nil, &newPrice)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if next.Name != "widget" || next.Description != "a widget" {
		t.Fatalf("untouched fields changed: %+v", next)
	}
	if !next.Price.Equal(newPrice) {
		t.Fatalf("price = %s", next.Price)
	}

	name := "gadget"
	next, err = next.Update(&name, nil, nil)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if next.Name != "gadget" {
		t.Fatalf("name = %s", next.Name)
	}
}

func TestUpdateRejectsBadValues(t *testing.T) {
	p, _ := New("widget", "a widget", decimal.NewFromInt(5), 10)
	blank := "  "
	if _, err := p.Update(&blank, nil, nil); !errors.Is(err, ErrInvalidProduct) {
		t.Fatalf("expected ErrInvalidProduct, got %v", err)
	}
	neg := decimal.NewFromInt(-1)
	if _, err := p.Update(nil, nil, &neg); !errors.Is(err, ErrInvalidProduct) {
		t.Fatalf("expected ErrInvalidProduct, got %v", err)
	}
}

func TestWithStock(t *testing.T) {
	p, _ := New("widget", "a widget", decimal.NewFromInt(5), 10)
	next, err := p.WithStock(0)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if next.Stock != 0 {
		t.Fatalf("stock = %d", next.Stock)
	}
	if _, err := p.WithStock(-1); !errors.Is(err, ErrInvalidProduct) {
		t.Fatalf("expected ErrInvalidProduct, got %v", err)
	}
}

func TestHasStock(t *testing.T) {
	p, _ := New("widget", "a widget", decimal.NewFromInt(5), 3)
	if !p.HasStock(3) {
		t.Fatal("expected stock for 3")
	}
	if p.HasStock(4) {
		t.Fatal("unexpected stock for 4")
	}
	if p.HasStock(0) {
		t.Fatal("zero quantity never has stock")
	}
}
