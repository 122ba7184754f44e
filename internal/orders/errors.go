package orders

import (
	"errors"

	"github.com/jrvelez/pedidos/internal/catalog"
)

var (
	// ErrInvalidOrderRequest rejects structurally invalid commands
	// before any stock is touched.
	ErrInvalidOrderRequest = errors.New("invalid order request")

	// ErrReservationConflict means concurrent catalog writes exhausted
	// the reservation retry budget; the whole order may be retried.
	ErrReservationConflict = errors.New("reservation conflict")

	// ErrOrderNotFound covers both a missing order and an order owned
	// by someone else, so lookups never leak existence.
	ErrOrderNotFound = errors.New("order not found")
)

// Catalog errors cross the reservation path unchanged; re-exported so
// callers of this package match against one import.
var (
	ErrProductNotFound   = catalog.ErrProductNotFound
	ErrProductInactive   = catalog.ErrProductInactive
	ErrInsufficientStock = catalog.ErrInsufficientStock
)
