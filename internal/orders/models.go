package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the placement aggregate. It is created once, in StatusPending,
// and never mutated afterwards; future states only ever touch Status.
type Order struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Status      Status          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
	Lines       []OrderLine     `json:"lines"`
}

// OrderLine freezes the catalog state of one line at placement time.
// ProductName and UnitPrice are snapshots: later catalog changes must
// never alter a persisted line. Subtotal is always derived from
// UnitPrice and Quantity, never supplied.
type OrderLine struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Snapshot carries the pre-decrement catalog fields a successful
// reservation hands to the pricer.
type Snapshot struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
}

// BelongsTo reports whether the order is owned by userID.
func (o Order) BelongsTo(userID string) bool {
	return o.UserID != "" && o.UserID == userID
}
