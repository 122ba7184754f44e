package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
)

// fakeStore is a minimal map-backed store with an adjustable number of
// compare-and-write rejections, to drive the retry loop.
type fakeStore struct {
	products    map[string]Product
	nextID      int
	rejectFirst int // CompareAndWrite fails this many times
	casCalls    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{products: map[string]Product{}}
}

func (f *fakeStore) FindByID(_ context.Context, id string) (Product, error) {
	p, ok := f.products[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

func (f *fakeStore) CompareAndWrite(_ context.Context, p Product, expectedVersion int64) (bool, error) {
	f.casCalls++
	if f.casCalls <= f.rejectFirst {
		// simulate a concurrent writer: bump the stored version
		cur := f.products[p.ID]
		cur.Version++
		f.products[p.ID] = cur
		return false, nil
	}
	cur, ok := f.products[p.ID]
	if !ok || cur.Version != expectedVersion {
		return false, nil
	}
	p.Version = expectedVersion + 1
	f.products[p.ID] = p
	return true, nil
}

func (f *fakeStore) FindAllActive(_ context.Context) ([]Product, error) {
	var out []Product
	for _, p := range f.products {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) ExistsByName(_ context.Context, name string) (bool, error) {
	for _, p := range f.products {
		if p.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) Create(_ context.Context, p Product) (Product, error) {
	f.nextID++
	p.ID = fmt.Sprintf("p%d", f.nextID)
	p.Version = 1
	f.products[p.ID] = p
	return p, nil
}

func seed(t *testing.T, s *Service, name string, stock int) Product {
	t.Helper()
	p, err := s.Create(context.Background(), name, "desc", decimal.RequireFromString("9.99"), stock)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return p
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	svc := &Service{Store: newFakeStore()}
	seed(t, svc, "widget", 5)
	if _, err := svc.Create(context.Background(), "widget", "other", decimal.NewFromInt(1), 1); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}

func TestGetFiltersInactive(t *testing.T) {
	st := newFakeStore()
	svc := &Service{Store: st}
	p := seed(t, svc, "widget", 5)

	if _, err := svc.Deactivate(context.Background(), p.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := svc.Get(context.Background(), p.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestUpdateRetriesOnConflict(t *testing.T) {
	st := newFakeStore()
	svc := &Service{Store: st}
	p := seed(t, svc, "widget", 5)

	st.rejectFirst = 2 // two losses, third attempt wins
	price := decimal.RequireFromString("19.99")
	updated, err := svc.Update(context.Background(), p.ID, nil, nil, &price)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if !updated.Price.Equal(price) {
		t.Fatalf("price = %s", updated.Price)
	}
	if st.casCalls != 3 {
		t.Fatalf("cas calls = %d, want 3", st.casCalls)
	}
}

func TestUpdateConflictExhausted(t *testing.T) {
	st := newFakeStore()
	svc := &Service{Store: st, MaxAttempts: 2}
	p := seed(t, svc, "widget", 5)

	st.rejectFirst = 10
	price := decimal.NewFromInt(2)
	if _, err := svc.Update(context.Background(), p.ID, nil, nil, &price); !errors.Is(err, ErrWriteConflict) {
		t.Fatalf("expected ErrWriteConflict, got %v", err)
	}
}

func TestUpdateInactiveProduct(t *testing.T) {
	st := newFakeStore()
	svc := &Service{Store: st}
	p := seed(t, svc, "widget", 5)
	if _, err := svc.Deactivate(context.Background(), p.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	price := decimal.NewFromInt(2)
	if _, err := svc.Update(context.Background(), p.ID, nil, nil, &price); !errors.Is(err, ErrProductInactive) {
		t.Fatalf("expected ErrProductInactive, got %v", err)
	}
	if _, err := svc.UpdateStock(context.Background(), p.ID, 3); !errors.Is(err, ErrProductInactive) {
		t.Fatalf("expected ErrProductInactive, got %v", err)
	}
}

func TestUpdateStock(t *testing.T) {
	st := newFakeStore()
	svc := &Service{Store: st}
	p := seed(t, svc, "widget", 5)

	updated, err := svc.UpdateStock(context.Background(), p.ID, 42)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if updated.Stock != 42 {
		t.Fatalf("stock = %d", updated.Stock)
	}
	if updated.Version != p.Version+1 {
		t.Fatalf("version = %d, want %d", updated.Version, p.Version+1)
	}
}

func TestUpdateToExistingNameRejected(t *testing.T) {
	st := newFakeStore()
	svc := &Service{Store: st}
	seed(t, svc, "widget", 5)
	p := seed(t, svc, "gadget", 5)

	name := "widget"
	if _, err := svc.Update(context.Background(), p.ID, &name, nil, nil); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}
