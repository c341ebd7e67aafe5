package purchasing

import (
	"context"

	"mercato/internal/core/id"
	"mercato/internal/domain"
)

// Repository defines persistence operations for purchase orders.
// Update must compare-and-swap on the entity version and return a
// CONCURRENT_MODIFICATION AppError when the expected version is gone.
type Repository interface {
	Create(ctx context.Context, po *PurchaseOrder) error
	GetByID(ctx context.Context, poID id.ID) (*PurchaseOrder, error)
	Update(ctx context.Context, po *PurchaseOrder) error
	SaveLines(ctx context.Context, poID id.ID, lines []Line) error
	GetLines(ctx context.Context, poID id.ID) ([]Line, error)
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*PurchaseOrder], error)
}

// EventRepository appends and reads the purchase order history log.
// The log is append-only; there is no update or delete.
type EventRepository interface {
	Append(ctx context.Context, event StatusEvent) error
	ListByPurchaseOrder(ctx context.Context, poID id.ID) ([]StatusEvent, error)
}

// ListFilter extends the common filter with PO-specific criteria.
type ListFilter struct {
	domain.ListFilter

	SupplierID *id.ID
	Statuses   []Status

	// Rescheduled selects POs whose delivery date differs from the
	// original commitment (used by the delivery timeline)
	Rescheduled *bool
}
