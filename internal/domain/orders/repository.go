package orders

import (
	"context"

	"mercato/internal/core/id"
	"mercato/internal/domain"
)

// Repository defines persistence operations for orders.
// Update must compare-and-swap on the entity version and return a
// CONCURRENT_MODIFICATION AppError when the expected version is gone,
// which is what serializes concurrent transitions on the same order.
type Repository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, orderID id.ID) (*Order, error)
	Update(ctx context.Context, order *Order) error
	SaveLines(ctx context.Context, orderID id.ID, lines []Line) error
	GetLines(ctx context.Context, orderID id.ID) ([]Line, error)
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Order], error)
}

// ListFilter extends the common filter with order-specific criteria.
type ListFilter struct {
	domain.ListFilter

	CustomerID *id.ID
	Statuses   []Status
}

// InventoryAdjuster is the external inventory collaborator.
// Deduction is triggered on picking completion; failures are logged and
// never roll back the committed transition.
type InventoryAdjuster interface {
	Deduct(ctx context.Context, orderID id.ID, lines []Line) error
}
