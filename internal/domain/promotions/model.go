// Package promotions provides the promotion store and the pricing engine
// that resolves the effective discount for a product at a point in time.
package promotions

import (
	"context"
	"time"

	"mercato/internal/core/apperror"
	"mercato/internal/core/entity"
	"mercato/internal/core/id"
	"mercato/internal/core/types"
)

// Scope is the breadth of products a promotion applies to.
type Scope string

const (
	ScopeGlobal   Scope = "GLOBAL"
	ScopeCategory Scope = "CATEGORY"
	ScopeProduct  Scope = "PRODUCT"
)

// IsValid reports whether s is a known scope.
func (s Scope) IsValid() bool {
	switch s {
	case ScopeGlobal, ScopeCategory, ScopeProduct:
		return true
	}
	return false
}

// precedence orders scopes: PRODUCT overrides CATEGORY overrides GLOBAL.
func (s Scope) precedence() int {
	switch s {
	case ScopeProduct:
		return 3
	case ScopeCategory:
		return 2
	case ScopeGlobal:
		return 1
	}
	return 0
}

// Promotion represents a percentage discount campaign.
type Promotion struct {
	entity.BaseDocument

	Name  string `db:"name" json:"name"`
	Scope Scope  `db:"scope" json:"scope"`

	// ScopeTarget is the category id for CATEGORY scope, the product id
	// for PRODUCT scope, and nil for GLOBAL.
	ScopeTarget *id.ID `db:"scope_target" json:"scopeTarget,omitempty"`

	// DiscountPercent is clamped into [0,100] before storage.
	DiscountPercent types.Money `db:"discount_percent" json:"discountPercent"`

	// Date window; a missing bound is unbounded on that side.
	StartDate *time.Time `db:"start_date" json:"startDate,omitempty"`
	EndDate   *time.Time `db:"end_date" json:"endDate,omitempty"`

	// Active is a kill-switch independent of the date window.
	Active bool `db:"active" json:"active"`
}

// NewPromotion creates a promotion with the discount clamped.
func NewPromotion(name string, scope Scope, scopeTarget *id.ID, discountPercent types.Money) *Promotion {
	p := &Promotion{
		BaseDocument:    entity.NewBaseDocument(),
		Name:            name,
		Scope:           scope,
		ScopeTarget:     scopeTarget,
		DiscountPercent: discountPercent,
		Active:          true,
	}
	p.Normalize()
	return p
}

// Normalize clamps DiscountPercent into [0,100]. Runs before every write.
func (p *Promotion) Normalize() {
	hundred := types.NewMoney(100)
	if p.DiscountPercent.IsNegative() {
		p.DiscountPercent = types.Zero()
	}
	if p.DiscountPercent.GreaterThan(hundred) {
		p.DiscountPercent = hundred
	}
}

// Validate implements entity.Validatable.
func (p *Promotion) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}

	if !p.Scope.IsValid() {
		return apperror.NewValidation("unknown promotion scope").
			WithDetail("field", "scope").
			WithDetail("value", string(p.Scope))
	}

	switch p.Scope {
	case ScopeGlobal:
		if p.ScopeTarget != nil {
			return apperror.NewValidation("global promotions must not carry a scope target").
				WithDetail("field", "scopeTarget")
		}
	default:
		if p.ScopeTarget == nil || id.IsNil(*p.ScopeTarget) {
			return apperror.NewValidation("scope target is required for scoped promotions").
				WithDetail("field", "scopeTarget").
				WithDetail("scope", string(p.Scope))
		}
	}

	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return apperror.NewValidation("end date must not precede start date").
			WithDetail("field", "endDate")
	}

	return nil
}

// InWindowAt reports whether the promotion applies at the given instant:
// the kill-switch is on and at falls within [StartDate, EndDate], treating
// a missing bound as unbounded on that side.
func (p *Promotion) InWindowAt(at time.Time) bool {
	if !p.Active {
		return false
	}
	if p.StartDate != nil && at.Before(*p.StartDate) {
		return false
	}
	if p.EndDate != nil && at.After(*p.EndDate) {
		return false
	}
	return true
}

// Matches reports whether the promotion's scope covers the given product
// and category.
func (p *Promotion) Matches(productID, categoryID id.ID) bool {
	switch p.Scope {
	case ScopeGlobal:
		return true
	case ScopeCategory:
		return p.ScopeTarget != nil && *p.ScopeTarget == categoryID && !id.IsNil(categoryID)
	case ScopeProduct:
		return p.ScopeTarget != nil && *p.ScopeTarget == productID && !id.IsNil(productID)
	}
	return false
}
