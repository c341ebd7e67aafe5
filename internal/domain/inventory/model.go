// Package inventory provides the stock movement register.
// Fulfillment writes expense movements here when an order is picked.
package inventory

import (
	"time"

	"mercato/internal/core/id"
)

// Movement represents a single stock deduction recorded for an order line.
type Movement struct {
	ID         id.ID     `db:"id" json:"id"`
	OrderID    id.ID     `db:"order_id" json:"orderId"`
	ProductID  id.ID     `db:"product_id" json:"productId"`
	Quantity   int       `db:"quantity" json:"quantity"`
	RecordedAt time.Time `db:"recorded_at" json:"recordedAt"`
}

// NewMovement creates a movement for the given order line.
func NewMovement(orderID, productID id.ID, quantity int) Movement {
	return Movement{
		ID:         id.New(),
		OrderID:    orderID,
		ProductID:  productID,
		Quantity:   quantity,
		RecordedAt: time.Now().UTC(),
	}
}
