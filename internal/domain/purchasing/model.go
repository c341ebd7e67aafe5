// Package purchasing provides the supplier purchase order state machine.
package purchasing

import (
	"context"
	"time"

	"mercato/internal/core/apperror"
	"mercato/internal/core/entity"
	"mercato/internal/core/id"
)

// PurchaseOrder represents an order placed with a supplier.
// Items, supplier and delivery date are mutable only while CREATED; after
// approval the PO is progressed through the transition table only.
type PurchaseOrder struct {
	entity.BaseDocument

	// Number is the human-readable PO number (auto-generated)
	Number string `db:"number" json:"number"`

	SupplierID id.ID  `db:"supplier_id" json:"supplierId"`
	Status     Status `db:"status" json:"status"`

	StatusUpdatedAt time.Time `db:"status_updated_at" json:"statusUpdatedAt"`

	// DeliveryDate is the supplier-committed expected delivery date.
	// OriginalDeliveryDate snapshots the first committed date and never
	// changes afterwards; the delivery timeline diffs the two.
	DeliveryDate         *time.Time `db:"delivery_date" json:"deliveryDate,omitempty"`
	OriginalDeliveryDate *time.Time `db:"original_delivery_date" json:"originalDeliveryDate,omitempty"`

	// Table part: ordered goods
	Lines []Line `db:"-" json:"lines"`
}

// Line represents a purchase order line.
type Line struct {
	LineID    id.ID `db:"line_id" json:"lineId"`
	LineNo    int   `db:"line_no" json:"lineNo"`
	ProductID id.ID `db:"product_id" json:"productId"`
	Quantity  int   `db:"quantity" json:"quantity"`
}

// NewPurchaseOrder creates a PO in CREATED.
func NewPurchaseOrder(supplierID id.ID, lines []Line) *PurchaseOrder {
	po := &PurchaseOrder{
		BaseDocument:    entity.NewBaseDocument(),
		SupplierID:      supplierID,
		Status:          StatusCreated,
		StatusUpdatedAt: time.Now().UTC(),
		Lines:           make([]Line, 0, len(lines)),
	}
	po.setLines(lines)
	return po
}

func (po *PurchaseOrder) setLines(lines []Line) {
	po.Lines = po.Lines[:0]
	for i, line := range lines {
		po.Lines = append(po.Lines, Line{
			LineID:    id.New(),
			LineNo:    i + 1,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}
}

// Validate implements entity.Validatable.
func (po *PurchaseOrder) Validate(ctx context.Context) error {
	if id.IsNil(po.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}

	if !po.Status.IsValid() {
		return apperror.NewValidation("unknown purchase order status").
			WithDetail("field", "status").
			WithDetail("value", string(po.Status))
	}

	if len(po.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range po.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.Quantity <= 0 {
			return apperror.NewValidation("quantity must be a positive integer").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// CanModify returns nil only while the PO is editable (CREATED).
func (po *PurchaseOrder) CanModify() error {
	if !po.Status.IsEditable() {
		return apperror.NewNotEditable("purchase order", po.Status.String()).
			WithDetail("purchase_order_id", po.ID.String())
	}
	return nil
}

// SetStatus records a transition that has already been validated against
// the table. Callers go through Service.UpdateStatus.
func (po *PurchaseOrder) SetStatus(target Status) {
	po.Status = target
	po.StatusUpdatedAt = time.Now().UTC()
	po.Touch()
}

// SetDeliveryDate changes the expected delivery date, snapshotting the
// original on the first commit.
func (po *PurchaseOrder) SetDeliveryDate(date time.Time) {
	d := date.UTC()
	if po.OriginalDeliveryDate == nil {
		snapshot := d
		po.OriginalDeliveryDate = &snapshot
	}
	po.DeliveryDate = &d
	po.Touch()
}

// IsRescheduled reports whether the current expected delivery date differs
// from the first committed one.
func (po *PurchaseOrder) IsRescheduled() bool {
	if po.DeliveryDate == nil || po.OriginalDeliveryDate == nil {
		return false
	}
	return !po.DeliveryDate.Equal(*po.OriginalDeliveryDate)
}
