package reports

import (
	"context"
)

// Repository defines report data access interface.
type Repository interface {
	// GetRescheduledPurchaseOrders returns purchase orders whose current
	// delivery date differs from the original one, with the total count
	// before pagination. DelayDays and summary fields are computed by
	// the service.
	GetRescheduledPurchaseOrders(ctx context.Context, filter DeliveryTimelineFilter) ([]DeliveryTimelineEntry, int, error)
}
