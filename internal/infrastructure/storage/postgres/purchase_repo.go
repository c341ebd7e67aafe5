package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"mercato/internal/core/id"
	"mercato/internal/domain"
	"mercato/internal/domain/purchasing"
)

const (
	purchaseOrdersTable = "purchase_orders"
	purchaseLinesTable  = "purchase_order_lines"
	poStatusEventsTable = "po_status_events"
)

var purchaseLineColumns = []string{"purchase_order_id", "line_id", "line_no", "product_id", "quantity"}

// Compile-time checks.
var (
	_ purchasing.Repository      = (*PurchaseOrderRepo)(nil)
	_ purchasing.EventRepository = (*PurchaseOrderEventRepo)(nil)
)

// PurchaseOrderRepo is the PostgreSQL implementation of purchasing.Repository.
type PurchaseOrderRepo struct {
	baseRepo[*purchasing.PurchaseOrder]
	batch *BatchInserter
}

// NewPurchaseOrderRepo creates a new purchase order repository.
func NewPurchaseOrderRepo(txManager *TxManager) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{
		baseRepo: newBaseRepo(
			txManager,
			purchaseOrdersTable,
			ExtractDBColumns[purchasing.PurchaseOrder](),
			func() *purchasing.PurchaseOrder { return &purchasing.PurchaseOrder{} },
		),
		batch: NewBatchInserter(txManager),
	}
}

// SaveLines replaces the purchase order's line set. Requires an active
// transaction so the delete and COPY commit atomically.
func (r *PurchaseOrderRepo) SaveLines(ctx context.Context, poID id.ID, lines []purchasing.Line) error {
	delQ := r.Builder().
		Delete(purchaseLinesTable).
		Where(squirrel.Eq{"purchase_order_id": poID})

	sql, args, err := delQ.ToSql()
	if err != nil {
		return fmt.Errorf("build delete lines: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete purchase order lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, []any{
			poID, line.LineID, line.LineNo, line.ProductID, line.Quantity,
		})
	}

	if _, err := r.batch.CopyFromSlice(ctx, purchaseLinesTable, purchaseLineColumns, rows); err != nil {
		return fmt.Errorf("copy purchase order lines: %w", err)
	}

	return nil
}

// GetLines returns the purchase order's lines in line order.
func (r *PurchaseOrderRepo) GetLines(ctx context.Context, poID id.ID) ([]purchasing.Line, error) {
	q := r.Builder().
		Select("line_id", "line_no", "product_id", "quantity").
		From(purchaseLinesTable).
		Where(squirrel.Eq{"purchase_order_id": poID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []purchasing.Line
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get purchase order lines: %w", err)
	}

	return lines, nil
}

// List retrieves purchase orders with filtering.
func (r *PurchaseOrderRepo) List(ctx context.Context, filter purchasing.ListFilter) (domain.ListResult[*purchasing.PurchaseOrder], error) {
	filter.Normalize()

	result := domain.ListResult[*purchasing.PurchaseOrder]{
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
	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
	}
	if len(filter.Statuses) > 0 {
		q = q.Where(squirrel.Eq{"status": filter.Statuses})
	} else if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.Rescheduled != nil {
		if *filter.Rescheduled {
			q = q.Where("original_delivery_date IS NOT NULL").
				Where("delivery_date IS DISTINCT FROM original_delivery_date")
		} else {
			q = q.Where("delivery_date IS NOT DISTINCT FROM original_delivery_date")
		}
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

// PurchaseOrderEventRepo persists the append-only purchase order history.
type PurchaseOrderEventRepo struct {
	txManager *TxManager
}

// NewPurchaseOrderEventRepo creates a new event repository.
func NewPurchaseOrderEventRepo(txManager *TxManager) *PurchaseOrderEventRepo {
	return &PurchaseOrderEventRepo{txManager: txManager}
}

func (r *PurchaseOrderEventRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Append inserts a history event. Events are never updated or deleted.
func (r *PurchaseOrderEventRepo) Append(ctx context.Context, event purchasing.StatusEvent) error {
	data := StructToMap(event)

	q := r.builder().
		Insert(poStatusEventsTable).
		SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", poStatusEventsTable, err)
	}

	return nil
}

// ListByPurchaseOrder returns the purchase order's history in
// chronological order.
func (r *PurchaseOrderEventRepo) ListByPurchaseOrder(ctx context.Context, poID id.ID) ([]purchasing.StatusEvent, error) {
	q := r.builder().
		Select(ExtractDBColumns[purchasing.StatusEvent]()...).
		From(poStatusEventsTable).
		Where(squirrel.Eq{"purchase_order_id": poID}).
		OrderBy("created_at", "id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var events []purchasing.StatusEvent
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &events, sql, args...); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	return events, nil
}
