package redisx

import "time"

const (
	// Cached order JSON: order:{order_id}
	KeyOrder = "order:%s"

	// Cached active-product listing (single key, short TTL)
	KeyProductList = "products:active"

	// Dedup for event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLOrderCache   = 5 * time.Minute
	TTLProductCache = 30 * time.Second
	TTLDedup        = 48 * time.Hour
)
