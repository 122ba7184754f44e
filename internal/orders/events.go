package orders

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated = "OrderCreated"

	TopicOrderCreated = "order.created"
)

// Envelope is the wire format shared by every event this service emits.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

type LinePayload struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type OrderCreatedPayload struct {
	OrderID     string          `json:"order_id"`
	UserID      string          `json:"user_id"`
	Lines       []LinePayload   `json:"lines"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// PartitionKey keys events by order id so one order's events keep
// their relative ordering on the topic.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
