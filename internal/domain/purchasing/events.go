package purchasing

import (
	"time"

	"mercato/internal/core/id"
)

// EventKind classifies a status event.
type EventKind string

const (
	EventStatusChanged       EventKind = "status_changed"
	EventDeliveryRescheduled EventKind = "delivery_rescheduled"
)

// StatusEvent is one row of the append-only purchase order history.
// Only the current state is exposed on the PO itself; the event log backs
// the delivery timeline and survives later edits.
type StatusEvent struct {
	ID              id.ID     `db:"id" json:"id"`
	PurchaseOrderID id.ID     `db:"purchase_order_id" json:"purchaseOrderId"`
	Kind            EventKind `db:"kind" json:"kind"`

	FromStatus Status `db:"from_status" json:"fromStatus,omitempty"`
	ToStatus   Status `db:"to_status" json:"toStatus,omitempty"`

	// Delivery date pair for EventDeliveryRescheduled
	FromDate *time.Time `db:"from_date" json:"fromDate,omitempty"`
	ToDate   *time.Time `db:"to_date" json:"toDate,omitempty"`

	// Notes is free-text audit context, stored but never interpreted
	Notes string `db:"notes" json:"notes,omitempty"`

	// Actor is the user who triggered the change
	Actor string `db:"actor" json:"actor,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// newStatusEvent builds a status-change event.
func newStatusEvent(po *PurchaseOrder, from, to Status, notes, actor string) StatusEvent {
	return StatusEvent{
		ID:              id.New(),
		PurchaseOrderID: po.ID,
		Kind:            EventStatusChanged,
		FromStatus:      from,
		ToStatus:        to,
		Notes:           notes,
		Actor:           actor,
		CreatedAt:       time.Now().UTC(),
	}
}

// newRescheduleEvent builds a delivery-date-change event.
func newRescheduleEvent(po *PurchaseOrder, from, to *time.Time, actor string) StatusEvent {
	return StatusEvent{
		ID:              id.New(),
		PurchaseOrderID: po.ID,
		Kind:            EventDeliveryRescheduled,
		FromDate:        from,
		ToDate:          to,
		Actor:           actor,
		CreatedAt:       time.Now().UTC(),
	}
}
