package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"mercato/internal/core/id"
	"mercato/internal/domain"
	"mercato/internal/domain/promotions"
)

const promotionsTable = "promotions"

// Compile-time check.
var _ promotions.Repository = (*PromotionRepo)(nil)

// PromotionRepo is the PostgreSQL implementation of promotions.Repository.
type PromotionRepo struct {
	baseRepo[*promotions.Promotion]
}

// NewPromotionRepo creates a new promotion repository.
func NewPromotionRepo(txManager *TxManager) *PromotionRepo {
	return &PromotionRepo{
		baseRepo: newBaseRepo(
			txManager,
			promotionsTable,
			ExtractDBColumns[promotions.Promotion](),
			func() *promotions.Promotion { return &promotions.Promotion{} },
		),
	}
}

// List retrieves promotions with filtering.
func (r *PromotionRepo) List(ctx context.Context, filter promotions.ListFilter) (domain.ListResult[*promotions.Promotion], error) {
	filter.Normalize()

	result := domain.ListResult[*promotions.Promotion]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"name": "%" + filter.Search + "%"})
	}
	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}
	if filter.Scope != nil {
		q = q.Where(squirrel.Eq{"scope": *filter.Scope})
	}
	if filter.Active != nil {
		q = q.Where(squirrel.Eq{"active": *filter.Active})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.DateTo})
	}

	if err := r.listPage(ctx, q, filter.OrderBy, filter.Limit, filter.Offset, &result.Items, &result.TotalCount); err != nil {
		return result, err
	}

	return result, nil
}

// ListCandidates returns promotions whose scope could cover the
// product/category pair. Window and kill-switch filtering is left to
// the resolver.
func (r *PromotionRepo) ListCandidates(ctx context.Context, productID, categoryID id.ID) ([]*promotions.Promotion, error) {
	q := r.baseSelect().
		Where(squirrel.Or{
			squirrel.Eq{"scope": promotions.ScopeGlobal},
			squirrel.And{
				squirrel.Eq{"scope": promotions.ScopeCategory},
				squirrel.Eq{"scope_target": categoryID},
			},
			squirrel.And{
				squirrel.Eq{"scope": promotions.ScopeProduct},
				squirrel.Eq{"scope_target": productID},
			},
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var candidates []*promotions.Promotion
	if err := pgxscan.Select(ctx, r.querier(ctx), &candidates, sql, args...); err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	return candidates, nil
}
