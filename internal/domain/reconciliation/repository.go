package reconciliation

import "context"

// Repository persists invoice price records keyed by invoice ID.
type Repository interface {
	// Get returns the record or apperror.NewNotFound.
	Get(ctx context.Context, invoiceID string) (*InvoicePriceRecord, error)

	Create(ctx context.Context, rec *InvoicePriceRecord) error

	// Update applies the record guarded by its previous version and
	// returns apperror.NewConcurrentModification on a stale write.
	Update(ctx context.Context, rec *InvoicePriceRecord) error

	// Delete removes the record permanently.
	Delete(ctx context.Context, invoiceID string) error

	// ListPriced returns records holding both prices, ordered by invoice ID.
	ListPriced(ctx context.Context) ([]*InvoicePriceRecord, error)
}
