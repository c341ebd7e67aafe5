// Package reconciliation provides the supplier invoice price ledger and
// mismatch detection between supplier-recorded and invoiced prices.
package reconciliation

import (
	"context"
	"time"

	"mercato/internal/core/apperror"
	"mercato/internal/core/types"
)

// MismatchTolerance absorbs floating-point and rounding noise. It is a
// fixed property of mismatch detection, not a configurable business
// parameter.
var MismatchTolerance = types.MustMoney("0.01")

// InvoicePriceRecord holds the price pair recorded for one supplier
// invoice. A mismatch is derived on read, never stored.
type InvoicePriceRecord struct {
	// InvoiceID is the opaque ledger key
	InvoiceID string `db:"invoice_id" json:"invoiceId"`

	InvoiceNumber string `db:"invoice_number" json:"invoiceNumber,omitempty"`

	// SupplierPrice is the internally recorded price; InvoicePrice is the
	// price the supplier billed. Either may be absent until reported.
	SupplierPrice *types.Money `db:"supplier_price" json:"supplierPrice,omitempty"`
	InvoicePrice  *types.Money `db:"invoice_price" json:"invoicePrice,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	// Version for optimistic locking
	Version int `db:"version" json:"version"`
}

// Patch is a partial update. Nil fields are preserved on merge.
type Patch struct {
	InvoiceNumber *string
	SupplierPrice *types.Money
	InvoicePrice  *types.Money
}

// Validate rejects an empty patch and negative prices.
func (p Patch) Validate(ctx context.Context) error {
	if p.SupplierPrice == nil && p.InvoicePrice == nil {
		return apperror.NewValidation("at least one of supplierPrice or invoicePrice is required")
	}
	if p.SupplierPrice != nil && p.SupplierPrice.IsNegative() {
		return apperror.NewValidation("supplier price must not be negative").
			WithDetail("field", "supplierPrice")
	}
	if p.InvoicePrice != nil && p.InvoicePrice.IsNegative() {
		return apperror.NewValidation("invoice price must not be negative").
			WithDetail("field", "invoicePrice")
	}
	return nil
}

// Apply merges the patch into the record, preserving absent fields.
func (r *InvoicePriceRecord) Apply(p Patch) {
	if p.InvoiceNumber != nil {
		r.InvoiceNumber = *p.InvoiceNumber
	}
	if p.SupplierPrice != nil {
		price := *p.SupplierPrice
		r.SupplierPrice = &price
	}
	if p.InvoicePrice != nil {
		price := *p.InvoicePrice
		r.InvoicePrice = &price
	}
	r.UpdatedAt = time.Now().UTC()
	r.Version++
}

// Difference returns round(invoicePrice − supplierPrice, 2) and whether
// both prices are present.
func (r *InvoicePriceRecord) Difference() (types.Money, bool) {
	if r.SupplierPrice == nil || r.InvoicePrice == nil {
		return types.Zero(), false
	}
	return types.RoundMoney(r.InvoicePrice.Sub(*r.SupplierPrice)), true
}

// IsMismatch reports whether the price pair disagrees beyond tolerance.
func (r *InvoicePriceRecord) IsMismatch() bool {
	diff, ok := r.Difference()
	if !ok {
		return false
	}
	return diff.Abs().GreaterThan(MismatchTolerance)
}

// Mismatch is an InvoicePriceRecord annotated with its computed difference.
type Mismatch struct {
	InvoicePriceRecord
	Difference types.Money `json:"difference"`
}
