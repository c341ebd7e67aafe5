package promotions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercato/internal/core/apperror"
	"mercato/internal/core/id"
	"mercato/internal/core/types"
	"mercato/internal/domain"
)

type fakePromotionRepo struct {
	promotions []*Promotion
}

func (r *fakePromotionRepo) Create(_ context.Context, p *Promotion) error {
	r.promotions = append(r.promotions, p)
	return nil
}

func (r *fakePromotionRepo) GetByID(_ context.Context, promotionID id.ID) (*Promotion, error) {
	for _, p := range r.promotions {
		if p.ID == promotionID {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("promotion", promotionID)
}

func (r *fakePromotionRepo) Update(_ context.Context, _ *Promotion) error { return nil }

func (r *fakePromotionRepo) Delete(_ context.Context, _ id.ID) error { return nil }

func (r *fakePromotionRepo) List(_ context.Context, _ ListFilter) (domain.ListResult[*Promotion], error) {
	return domain.ListResult[*Promotion]{}, nil
}

func (r *fakePromotionRepo) ListCandidates(_ context.Context, productID, categoryID id.ID) ([]*Promotion, error) {
	var out []*Promotion
	for _, p := range r.promotions {
		if p.Matches(productID, categoryID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func resolverWith(promotions ...*Promotion) *Resolver {
	return NewResolver(&fakePromotionRepo{promotions: promotions})
}

func resolveAt(t *testing.T, r *Resolver, productID, categoryID id.ID, base string, at time.Time) Resolution {
	t.Helper()
	res, err := r.Resolve(context.Background(), ResolveInput{
		ProductID:  productID,
		CategoryID: categoryID,
		BasePrice:  types.MustMoney(base),
		At:         at,
	})
	require.NoError(t, err)
	return res
}

var resolveTime = time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

func TestProductScopeBeatsWiderScopesRegardlessOfDiscount(t *testing.T) {
	productID := id.New()
	categoryID := id.New()

	product := NewPromotion("product 5", ScopeProduct, &productID, types.NewMoney(5))
	category := NewPromotion("category 30", ScopeCategory, &categoryID, types.NewMoney(30))
	global := NewPromotion("global 50", ScopeGlobal, nil, types.NewMoney(50))

	r := resolverWith(global, category, product)
	res := resolveAt(t, r, productID, categoryID, "100.00", resolveTime)

	require.True(t, res.Applied)
	assert.Equal(t, product.ID, res.Promotion.ID)
	assert.True(t, res.EffectivePrice.Equal(types.MustMoney("95.00")),
		"got %s", res.EffectivePrice)
}

func TestCategoryScopeBeatsGlobal(t *testing.T) {
	categoryID := id.New()

	category := NewPromotion("category 10", ScopeCategory, &categoryID, types.NewMoney(10))
	global := NewPromotion("global 40", ScopeGlobal, nil, types.NewMoney(40))

	r := resolverWith(global, category)
	res := resolveAt(t, r, id.New(), categoryID, "50.00", resolveTime)

	require.True(t, res.Applied)
	assert.Equal(t, category.ID, res.Promotion.ID)
	assert.True(t, res.EffectivePrice.Equal(types.MustMoney("45.00")))
}

func TestSameScopeGreatestDiscountWins(t *testing.T) {
	small := NewPromotion("global 10", ScopeGlobal, nil, types.NewMoney(10))
	large := NewPromotion("global 25", ScopeGlobal, nil, types.NewMoney(25))

	r := resolverWith(small, large)
	res := resolveAt(t, r, id.New(), id.New(), "80.00", resolveTime)

	require.True(t, res.Applied)
	assert.Equal(t, large.ID, res.Promotion.ID)
	assert.True(t, res.EffectivePrice.Equal(types.MustMoney("60.00")))
}

func TestEqualDiscountTieBreaksByCreation(t *testing.T) {
	older := NewPromotion("older", ScopeGlobal, nil, types.NewMoney(20))
	older.CreatedAt = resolveTime.Add(-48 * time.Hour)
	newer := NewPromotion("newer", ScopeGlobal, nil, types.NewMoney(20))
	newer.CreatedAt = resolveTime.Add(-1 * time.Hour)

	r := resolverWith(older, newer)
	res := resolveAt(t, r, id.New(), id.New(), "10.00", resolveTime)

	require.True(t, res.Applied)
	assert.Equal(t, newer.ID, res.Promotion.ID)
}

func TestWindowBoundaries(t *testing.T) {
	productID := id.New()
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	p := NewPromotion("august", ScopeProduct, &productID, types.NewMoney(15))
	p.StartDate = &start
	p.EndDate = &end

	r := resolverWith(p)

	tests := []struct {
		name    string
		at      time.Time
		applied bool
	}{
		{"before window", start.Add(-time.Second), false},
		{"at start", start, true},
		{"inside", resolveTime, true},
		{"at end", end, true},
		{"after window", end.Add(time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := resolveAt(t, r, productID, id.New(), "100.00", tt.at)
			assert.Equal(t, tt.applied, res.Applied)
		})
	}
}

func TestMissingBoundsAreUnbounded(t *testing.T) {
	productID := id.New()
	p := NewPromotion("forever", ScopeProduct, &productID, types.NewMoney(5))

	r := resolverWith(p)

	farPast := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	farFuture := time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, resolveAt(t, r, productID, id.New(), "10.00", farPast).Applied)
	assert.True(t, resolveAt(t, r, productID, id.New(), "10.00", farFuture).Applied)
}

func TestInactivePromotionNeverApplies(t *testing.T) {
	productID := id.New()
	p := NewPromotion("killed", ScopeProduct, &productID, types.NewMoney(50))
	p.Active = false

	r := resolverWith(p)
	res := resolveAt(t, r, productID, id.New(), "100.00", resolveTime)

	assert.False(t, res.Applied)
	assert.Nil(t, res.Promotion)
	assert.True(t, res.EffectivePrice.Equal(types.MustMoney("100.00")))
}

func TestNoMatchReturnsBasePrice(t *testing.T) {
	categoryID := id.New()
	p := NewPromotion("other category", ScopeCategory, &categoryID, types.NewMoney(30))

	r := resolverWith(p)
	res := resolveAt(t, r, id.New(), id.New(), "42.42", resolveTime)

	assert.False(t, res.Applied)
	assert.True(t, res.EffectivePrice.Equal(types.MustMoney("42.42")))
	assert.True(t, res.DiscountPercent.IsZero())
}

func TestNegativeBasePriceRejected(t *testing.T) {
	r := resolverWith()
	_, err := r.Resolve(context.Background(), ResolveInput{
		ProductID: id.New(),
		BasePrice: types.MustMoney("-1.00"),
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestDiscountClamping(t *testing.T) {
	over := NewPromotion("over", ScopeGlobal, nil, types.NewMoney(150))
	assert.True(t, over.DiscountPercent.Equal(types.NewMoney(100)))

	under := NewPromotion("under", ScopeGlobal, nil, types.NewMoney(-5))
	assert.True(t, under.DiscountPercent.IsZero())
}

func TestApplyDiscountRounding(t *testing.T) {
	tests := []struct {
		base    string
		percent int64
		want    string
	}{
		{"100.00", 10, "90.00"},
		{"19.99", 15, "16.99"},  // 16.9915 rounds down
		{"10.01", 25, "7.51"},   // 7.5075 rounds up
		{"0.01", 50, "0.01"},    // 0.005 rounds half up
		{"100.00", 100, "0.00"}, // full discount
		{"100.00", 0, "100.00"},
	}

	for _, tt := range tests {
		got := ApplyDiscount(types.MustMoney(tt.base), types.NewMoney(float64(tt.percent)))
		assert.True(t, got.Equal(types.MustMoney(tt.want)),
			"%s at %d%% = %s, want %s", tt.base, tt.percent, got, tt.want)
	}
}
