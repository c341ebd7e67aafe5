package inventory

import (
	"context"

	"mercato/internal/core/id"
)

// Repository defines operations for the stock movement register.
type Repository interface {
	// RecordMovements batch inserts movements. Requires a transaction.
	RecordMovements(ctx context.Context, movements []Movement) error

	// GetByOrder retrieves all movements recorded for an order.
	GetByOrder(ctx context.Context, orderID id.ID) ([]Movement, error)
}
