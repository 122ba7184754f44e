// Package memory holds the in-memory store used by tests and local
// runs. It backs both the catalog and order ports and provides the
// transaction boundary: the store has no native multi-row transactions,
// so every write inside a transaction records an undo step and a failed
// transaction replays the journal in reverse.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrvelez/pedidos/internal/catalog"
	"github.com/jrvelez/pedidos/internal/orders"
)

type Store struct {
	mu       sync.Mutex
	products map[string]catalog.Product
	orders   map[string]orders.Order
	byUser   map[string][]string // order ids in insertion order
}

func NewStore() *Store {
	return &Store{
		products: make(map[string]catalog.Product),
		orders:   make(map[string]orders.Order),
		byUser:   make(map[string][]string),
	}
}

// ---- catalog.Store (standalone use, one lock per call) ----

func (s *Store) FindByID(_ context.Context, id string) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findProduct(id)
}

func (s *Store) CompareAndWrite(_ context.Context, p catalog.Product, expectedVersion int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok, _ := s.compareAndWrite(p, expectedVersion)
	return ok, nil
}

func (s *Store) FindAllActive(_ context.Context) ([]catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findAllActive(), nil
}

func (s *Store) ExistsByName(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.existsByName(name), nil
}

func (s *Store) Create(_ context.Context, p catalog.Product) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createProduct(p), nil
}

// ---- orders.Store (standalone reads; writes go through WithinTx) ----

func (s *Store) FindOrder(_ context.Context, id string) (orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findOrder(id)
}

// ---- orders.TxRunner ----

// WithinTx serializes transactions on the store mutex and undoes every
// journaled write when fn fails, so no partial placement is ever
// observable.
func (s *Store) WithinTx(_ context.Context, fn func(tx orders.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &tx{s: s}
	if err := fn(t); err != nil {
		t.rollback()
		return err
	}
	return nil
}

type tx struct {
	s    *Store
	undo []func()
}

func (t *tx) Catalog() catalog.Store { return txCatalog{t} }
func (t *tx) Orders() orders.Store   { return txOrders{t} }

func (t *tx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

// txCatalog sees the same state as the enclosing transaction; the
// store mutex is already held, so it calls the unlocked internals.
type txCatalog struct{ t *tx }

func (c txCatalog) FindByID(_ context.Context, id string) (catalog.Product, error) {
	return c.t.s.findProduct(id)
}

func (c txCatalog) CompareAndWrite(_ context.Context, p catalog.Product, expectedVersion int64) (bool, error) {
	ok, undo := c.t.s.compareAndWrite(p, expectedVersion)
	if ok {
		c.t.undo = append(c.t.undo, undo)
	}
	return ok, nil
}

func (c txCatalog) FindAllActive(_ context.Context) ([]catalog.Product, error) {
	return c.t.s.findAllActive(), nil
}

func (c txCatalog) ExistsByName(_ context.Context, name string) (bool, error) {
	return c.t.s.existsByName(name), nil
}

func (c txCatalog) Create(_ context.Context, p catalog.Product) (catalog.Product, error) {
	created := c.t.s.createProduct(p)
	s := c.t.s
	c.t.undo = append(c.t.undo, func() { delete(s.products, created.ID) })
	return created, nil
}

type txOrders struct{ t *tx }

func (o txOrders) Save(_ context.Context, ord orders.Order) (orders.Order, error) {
	s := o.t.s
	ord.ID = uuid.NewString()
	if ord.CreatedAt.IsZero() {
		ord.CreatedAt = time.Now().UTC()
	}
	s.orders[ord.ID] = ord
	s.byUser[ord.UserID] = append(s.byUser[ord.UserID], ord.ID)
	id, user := ord.ID, ord.UserID
	o.t.undo = append(o.t.undo, func() {
		delete(s.orders, id)
		ids := s.byUser[user]
		s.byUser[user] = ids[:len(ids)-1]
	})
	return ord, nil
}

func (o txOrders) FindByID(_ context.Context, id string) (orders.Order, error) {
	return o.t.s.findOrder(id)
}

func (o txOrders) FindByUser(_ context.Context, userID string) ([]orders.Order, error) {
	s := o.t.s
	ids := s.byUser[userID]
	out := make([]orders.Order, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- { // newest first
		out = append(out, copyOrder(s.orders[ids[i]]))
	}
	return out, nil
}

// ---- unlocked internals, caller holds s.mu ----

func (s *Store) findProduct(id string) (catalog.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrProductNotFound
	}
	return p, nil
}

func (s *Store) compareAndWrite(p catalog.Product, expectedVersion int64) (bool, func()) {
	cur, ok := s.products[p.ID]
	if !ok || cur.Version != expectedVersion {
		return false, nil
	}
	p.Version = expectedVersion + 1
	s.products[p.ID] = p
	return true, func() { s.products[cur.ID] = cur }
}

func (s *Store) findAllActive() []catalog.Product {
	var out []catalog.Product
	for _, p := range s.products {
		if p.Active {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Store) existsByName(name string) bool {
	for _, p := range s.products {
		if p.Name == name {
			return true
		}
	}
	return false
}

func (s *Store) createProduct(p catalog.Product) catalog.Product {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Version = 1
	s.products[p.ID] = p
	return p
}

func (s *Store) findOrder(id string) (orders.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return orders.Order{}, orders.ErrOrderNotFound
	}
	return copyOrder(o), nil
}

func copyOrder(o orders.Order) orders.Order {
	lines := make([]orders.OrderLine, len(o.Lines))
	copy(lines, o.Lines)
	o.Lines = lines
	return o
}
