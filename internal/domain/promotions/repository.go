package promotions

import (
	"context"

	"mercato/internal/core/id"
	"mercato/internal/domain"
)

// Repository defines persistence operations for promotions.
// Delete is a hard delete (no history retained on this store; the
// purchasing event log covers auditability elsewhere).
type Repository interface {
	Create(ctx context.Context, promotion *Promotion) error
	GetByID(ctx context.Context, promotionID id.ID) (*Promotion, error)
	Update(ctx context.Context, promotion *Promotion) error
	Delete(ctx context.Context, promotionID id.ID) error
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Promotion], error)

	// ListCandidates returns promotions whose scope could cover the given
	// product/category pair (GLOBAL ones, CATEGORY ones targeting the
	// category, PRODUCT ones targeting the product). Window and
	// kill-switch filtering is the resolver's job.
	ListCandidates(ctx context.Context, productID, categoryID id.ID) ([]*Promotion, error)
}

// ListFilter extends the common filter with promotion-specific criteria.
type ListFilter struct {
	domain.ListFilter

	Scope  *Scope
	Active *bool
}
