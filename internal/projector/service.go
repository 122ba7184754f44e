// Package projector keeps the Redis order cache warm from the
// order.created stream, so GET reads stay fast without touching the
// write path.
package projector

import (
	"context"
	"encoding/json"
	"fmt"

	kafkax "github.com/jrvelez/pedidos/internal/kafka"
	"github.com/jrvelez/pedidos/internal/orders"
	"github.com/jrvelez/pedidos/internal/redisx"
	kafkago "github.com/segmentio/kafka-go"
)

type Service struct {
	Cache       redisx.Cache
	ServiceName string
}

// HandleOrderCreated is wired as the consumer handler. Redelivered
// events are dropped via an event-id dedup key; a cache entry that is
// already present is simply overwritten (same content).
func (s *Service) HandleOrderCreated(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderCreated {
		return nil // ignore
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	fresh, err := s.Cache.SetNX(ctx, dkey, "1", redisx.TTLDedup)
	if err != nil {
		return err
	}
	if !fresh {
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]any{
		"id":           p.OrderID,
		"user_id":      p.UserID,
		"status":       orders.StatusPending,
		"total_amount": p.TotalAmount,
		"created_at":   env.OccurredAt,
		"lines":        p.Lines,
	})
	if err != nil {
		return err
	}
	return s.Cache.Set(ctx, fmt.Sprintf(redisx.KeyOrder, p.OrderID), string(body), redisx.TTLOrderCache)
}
