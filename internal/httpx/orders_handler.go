package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	kafkax "github.com/jrvelez/pedidos/internal/kafka"
	"github.com/jrvelez/pedidos/internal/orders"
	"github.com/jrvelez/pedidos/internal/redisx"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher is what the handler needs from the Kafka producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type OrdersHandler struct {
	Service  *orders.Service
	Producer Publisher
	Cache    redisx.Cache
	Name     string // producer name stamped on events
}

type createOrderReq struct {
	Lines []orders.LineInput `json:"lines"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/orders", h.listOrders)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorBody(w, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.CreateOrder(ctx, UserID(ctx), req.Lines)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.cacheOrder(ctx, o)
	h.publishCreated(o, r.Header.Get("X-Request-Id"))

	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// cache first; the cached entry carries the owner, a mismatch is a miss
	key := fmt.Sprintf(redisx.KeyOrder, orderID)
	if s, ok, err := h.Cache.Get(ctx, key); err == nil && ok {
		var cached struct {
			UserID string `json:"user_id"`
		}
		if json.Unmarshal([]byte(s), &cached) == nil && cached.UserID == UserID(ctx) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(s))
			return
		}
	}

	o, err := h.Service.GetOrder(ctx, orderID, UserID(ctx))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.cacheOrder(ctx, o)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	os, err := h.Service.ListOrders(ctx, UserID(ctx))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if os == nil {
		os = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, os)
}

func (h *OrdersHandler) cacheOrder(ctx context.Context, o orders.Order) {
	b, err := json.Marshal(o)
	if err != nil {
		return
	}
	_ = h.Cache.Set(ctx, fmt.Sprintf(redisx.KeyOrder, o.ID), string(b), redisx.TTLOrderCache)
}

func (h *OrdersHandler) publishCreated(o orders.Order, traceID string) {
	if h.Producer == nil {
		return
	}
	lines := make([]orders.LinePayload, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, orders.LinePayload{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Subtotal:    l.Subtotal,
		})
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    o.CreatedAt,
		Producer:      h.Name,
		TraceID:       traceID,
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(orders.OrderCreatedPayload{
			OrderID:     o.ID,
			UserID:      o.UserID,
			Lines:       lines,
			TotalAmount: o.TotalAmount,
		}),
	}
	h.Producer.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
