// Package reports provides report generation services.
package reports

import (
	"time"

	"mercato/internal/core/id"
	"mercato/internal/domain/purchasing"
)

// --- Delivery Timeline Report ---

// DeliveryTimelineFilter defines filter for the delivery timeline report.
type DeliveryTimelineFilter struct {
	// Period filters by the current delivery date
	FromDate *time.Time
	ToDate   *time.Time

	SupplierIDs []id.ID

	// OnlyDelayed keeps entries with a positive delay
	OnlyDelayed bool

	// Pagination
	Limit  int
	Offset int
}

// DeliveryTimelineEntry represents one rescheduled purchase order.
type DeliveryTimelineEntry struct {
	PurchaseOrderID      id.ID             `json:"purchaseOrderId"`
	Number               string            `json:"number"`
	SupplierID           id.ID             `json:"supplierId"`
	Status               purchasing.Status `json:"status"`
	OriginalDeliveryDate time.Time         `json:"originalDeliveryDate"`
	CurrentDeliveryDate  time.Time         `json:"currentDeliveryDate"`

	// DelayDays is positive when the delivery moved later, negative when
	// it was pulled forward.
	DelayDays int `json:"delayDays"`

	// Canceled orders stay listed for audit but do not feed the summary.
	Canceled bool `json:"canceled"`
}

// DeliveryTimelineReport represents the full delivery timeline report.
type DeliveryTimelineReport struct {
	Entries    []DeliveryTimelineEntry `json:"entries"`
	TotalCount int                     `json:"totalCount"`

	// Summary over non-canceled entries
	DelayedCount       int     `json:"delayedCount"`
	PulledForwardCount int     `json:"pulledForwardCount"`
	AverageDelayDays   float64 `json:"averageDelayDays"`
}
