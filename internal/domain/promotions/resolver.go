package promotions

import (
	"context"
	"time"

	"mercato/internal/core/apperror"
	"mercato/internal/core/id"
	"mercato/internal/core/types"
)

// ResolveInput identifies the price point being resolved.
type ResolveInput struct {
	ProductID  id.ID
	CategoryID id.ID
	BasePrice  types.Money
	At         time.Time
}

// Resolution is the outcome of discount resolution. When no promotion
// matches, Applied is false and EffectivePrice equals the base price -
// there is no synthetic zero-percent promotion.
type Resolution struct {
	Applied         bool        `json:"applied"`
	Promotion       *Promotion  `json:"promotion,omitempty"`
	DiscountPercent types.Money `json:"discountPercent"`
	EffectivePrice  types.Money `json:"effectivePrice"`
}

// Resolver resolves the effective discount for a (product, category, time)
// triple against the promotion store. Resolution is a pure read: no hidden
// state, safe to call concurrently and repeatedly.
type Resolver struct {
	repo Repository
}

// NewResolver creates a resolver over the given store.
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve picks the single winning promotion and applies it to the base
// price. Precedence: PRODUCT over CATEGORY over GLOBAL; within the highest
// applicable scope the greatest discount wins, ties broken by most recent
// creation. Lower-precedence matches are discarded, never combined.
func (r *Resolver) Resolve(ctx context.Context, input ResolveInput) (Resolution, error) {
	if input.BasePrice.IsNegative() {
		return Resolution{}, apperror.NewValidation("base price must not be negative").
			WithDetail("field", "basePrice")
	}

	at := input.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	candidates, err := r.repo.ListCandidates(ctx, input.ProductID, input.CategoryID)
	if err != nil {
		return Resolution{}, err
	}

	winner := pickWinner(candidates, input.ProductID, input.CategoryID, at)
	if winner == nil {
		return Resolution{
			Applied:        false,
			EffectivePrice: input.BasePrice,
		}, nil
	}

	return Resolution{
		Applied:         true,
		Promotion:       winner,
		DiscountPercent: winner.DiscountPercent,
		EffectivePrice:  ApplyDiscount(input.BasePrice, winner.DiscountPercent),
	}, nil
}

// pickWinner filters candidates down to the highest-precedence scope level
// that has any match and selects the best promotion within it.
func pickWinner(candidates []*Promotion, productID, categoryID id.ID, at time.Time) *Promotion {
	var winner *Promotion
	for _, p := range candidates {
		if !p.InWindowAt(at) || !p.Matches(productID, categoryID) {
			continue
		}
		if winner == nil || beats(p, winner) {
			winner = p
		}
	}
	return winner
}

// beats reports whether a wins over b under the precedence rule.
func beats(a, b *Promotion) bool {
	if ap, bp := a.Scope.precedence(), b.Scope.precedence(); ap != bp {
		return ap > bp
	}
	if !a.DiscountPercent.Equal(b.DiscountPercent) {
		return a.DiscountPercent.GreaterThan(b.DiscountPercent)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	// UUIDv7 ids are time-ordered; the larger id is the newer record.
	return id.Less(b.ID, a.ID)
}

// ApplyDiscount computes basePrice × (1 − percent/100) rounded to two
// decimal places, half up.
func ApplyDiscount(basePrice, percent types.Money) types.Money {
	factor := types.NewMoney(1).Sub(types.Percent(percent))
	return types.RoundMoney(basePrice.Mul(factor))
}
