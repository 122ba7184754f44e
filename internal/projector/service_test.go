package projector

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	kafkax "github.com/jrvelez/pedidos/internal/kafka"
	"github.com/jrvelez/pedidos/internal/orders"
	"github.com/jrvelez/pedidos/internal/redisx"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

type fakeCache struct {
	mu   sync.Mutex
	m    map[string]string
	sets int
}

func newFakeCache() *fakeCache { return &fakeCache{m: map[string]string{}} }

func (f *fakeCache) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.m[key]
	return v, ok, nil
}

func (f *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.m[key] = value
	f.sets++
	return nil
}

func (f *fakeCache) SetNX(_ context.Context, key, value string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.m[key]; ok {
		return false, nil
	}
	f.m[key] = value
	return true, nil
}

func (f *fakeCache) Del(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.m, key)
	return nil
}

func createdEvent(t *testing.T, eventID, orderID string) kafkago.Message {
	t.Helper()
	ev := orders.Envelope{
		EventID:      eventID,
		EventType:    orders.EventOrderCreated,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     "test-api",
		Payload: kafkax.MustMarshal(orders.OrderCreatedPayload{
			OrderID:     orderID,
			UserID:      "u1",
			TotalAmount: decimal.RequireFromString("19.98"),
			Lines: []orders.LinePayload{{
				ProductID:   "p1",
				ProductName: "widget",
				Quantity:    2,
				UnitPrice:   decimal.RequireFromString("9.99"),
				Subtotal:    decimal.RequireFromString("19.98"),
			}},
		}),
	}
	return kafkago.Message{Value: kafkax.MustMarshal(ev)}
}

func TestHandleOrderCreatedCachesOrder(t *testing.T) {
	cache := newFakeCache()
	svc := &Service{Cache: cache, ServiceName: "projector"}

	if err := svc.HandleOrderCreated(context.Background(), createdEvent(t, "e1", "o1")); err != nil {
		t.Fatalf("unexpected: %v", err)
	}

	v, ok, _ := cache.Get(context.Background(), fmt.Sprintf(redisx.KeyOrder, "o1"))
	if !ok {
		t.Fatal("order not cached")
	}
	var body struct {
		ID     string `json:"id"`
		UserID string `json:"user_id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal([]byte(v), &body); err != nil {
		t.Fatalf("bad cached body: %v", err)
	}
	if body.ID != "o1" || body.UserID != "u1" || body.Status != "PENDING" {
		t.Fatalf("bad cache entry: %+v", body)
	}
}

func TestHandleOrderCreatedDedup(t *testing.T) {
	cache := newFakeCache()
	svc := &Service{Cache: cache, ServiceName: "projector"}

	if err := svc.HandleOrderCreated(context.Background(), createdEvent(t, "e1", "o1")); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	before := cache.sets
	// same event id redelivered
	if err := svc.HandleOrderCreated(context.Background(), createdEvent(t, "e1", "o1")); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if cache.sets != before {
		t.Fatal("redelivered event rewrote the cache")
	}
}

func TestHandleOrderCreatedIgnoresOtherEvents(t *testing.T) {
	cache := newFakeCache()
	svc := &Service{Cache: cache, ServiceName: "projector"}

	ev := orders.Envelope{EventID: "e9", EventType: "SomethingElse", Payload: json.RawMessage(`{}`)}
	if err := svc.HandleOrderCreated(context.Background(), kafkago.Message{Value: kafkax.MustMarshal(ev)}); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if len(cache.m) != 0 {
		t.Fatalf("cache touched: %+v", cache.m)
	}
}
