package orders

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PriceLine builds an immutable order line from a reservation snapshot.
// Pure: subtotal = unit price × quantity, no rounding beyond the
// precision the operands carry. The inputs are already validated by the
// reservation path; failures here indicate a programming error upstream.
func PriceLine(snap Snapshot, quantity int) (OrderLine, error) {
	if quantity < 1 {
		return OrderLine{}, fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	if snap.UnitPrice.Sign() < 0 {
		return OrderLine{}, fmt.Errorf("negative unit price for product %s", snap.ProductID)
	}
	return OrderLine{
		ProductID:   snap.ProductID,
		ProductName: snap.Name,
		Quantity:    quantity,
		UnitPrice:   snap.UnitPrice,
		Subtotal:    snap.UnitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}, nil
}
