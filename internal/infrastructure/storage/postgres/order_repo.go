package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"mercato/internal/core/id"
	"mercato/internal/domain"
	"mercato/internal/domain/orders"
)

const (
	ordersTable     = "orders"
	orderLinesTable = "order_lines"
)

var orderLineColumns = []string{"order_id", "line_id", "line_no", "product_id", "quantity", "unit_price"}

// Compile-time check.
var _ orders.Repository = (*OrderRepo)(nil)

// OrderRepo is the PostgreSQL implementation of orders.Repository.
type OrderRepo struct {
	baseRepo[*orders.Order]
	batch *BatchInserter
}

// NewOrderRepo creates a new order repository.
func NewOrderRepo(txManager *TxManager) *OrderRepo {
	return &OrderRepo{
		baseRepo: newBaseRepo(
			txManager,
			ordersTable,
			ExtractDBColumns[orders.Order](),
			func() *orders.Order { return &orders.Order{} },
		),
		batch: NewBatchInserter(txManager),
	}
}

// SaveLines replaces the order's line set. Requires an active
// transaction so the delete and COPY commit atomically.
func (r *OrderRepo) SaveLines(ctx context.Context, orderID id.ID, lines []orders.Line) error {
	delQ := r.Builder().
		Delete(orderLinesTable).
		Where(squirrel.Eq{"order_id": orderID})

	sql, args, err := delQ.ToSql()
	if err != nil {
		return fmt.Errorf("build delete lines: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete order lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, []any{
			orderID, line.LineID, line.LineNo, line.ProductID, line.Quantity, line.UnitPrice,
		})
	}

	if _, err := r.batch.CopyFromSlice(ctx, orderLinesTable, orderLineColumns, rows); err != nil {
		return fmt.Errorf("copy order lines: %w", err)
	}

	return nil
}

// GetLines returns the order's lines in line order.
func (r *OrderRepo) GetLines(ctx context.Context, orderID id.ID) ([]orders.Line, error) {
	q := r.Builder().
		Select("line_id", "line_no", "product_id", "quantity", "unit_price").
		From(orderLinesTable).
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []orders.Line
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get order lines: %w", err)
	}

	return lines, nil
}

// List retrieves orders with filtering.
func (r *OrderRepo) List(ctx context.Context, filter orders.ListFilter) (domain.ListResult[*orders.Order], error) {
	filter.Normalize()

	result := domain.ListResult[*orders.Order]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"number": "%" + filter.Search + "%"})
	}
	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}
	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if len(filter.Statuses) > 0 {
		q = q.Where(squirrel.Eq{"status": filter.Statuses})
	} else if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"placed_at": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"placed_at": *filter.DateTo})
	}

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "placed_at DESC"
	}

	if err := r.listPage(ctx, q, orderBy, filter.Limit, filter.Offset, &result.Items, &result.TotalCount); err != nil {
		return result, err
	}

	return result, nil
}
