package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"mercato/internal/core/id"
	"mercato/internal/domain/purchasing"
	"mercato/internal/domain/reports"
)

// Compile-time check.
var _ reports.Repository = (*ReportRepo)(nil)

// ReportRepo is the PostgreSQL implementation of reports.Repository.
type ReportRepo struct {
	txManager *TxManager
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *TxManager) *ReportRepo {
	return &ReportRepo{txManager: txManager}
}

// timelineRow is the scan target for the timeline query.
type timelineRow struct {
	ID                   id.ID             `db:"id"`
	Number               string            `db:"number"`
	SupplierID           id.ID             `db:"supplier_id"`
	Status               purchasing.Status `db:"status"`
	OriginalDeliveryDate time.Time         `db:"original_delivery_date"`
	DeliveryDate         time.Time         `db:"delivery_date"`
}

// GetRescheduledPurchaseOrders returns purchase orders whose delivery
// date moved from the original commitment.
func (r *ReportRepo) GetRescheduledPurchaseOrders(ctx context.Context, filter reports.DeliveryTimelineFilter) ([]reports.DeliveryTimelineEntry, int, error) {
	builder := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	q := builder.
		Select("id", "number", "supplier_id", "status", "original_delivery_date", "delivery_date").
		From(purchaseOrdersTable).
		Where("original_delivery_date IS NOT NULL").
		Where("delivery_date IS NOT NULL").
		Where("delivery_date IS DISTINCT FROM original_delivery_date")

	if len(filter.SupplierIDs) > 0 {
		q = q.Where(squirrel.Eq{"supplier_id": filter.SupplierIDs})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"delivery_date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"delivery_date": *filter.ToDate})
	}

	querier := r.txManager.GetQuerier(ctx)

	countQ := builder.Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}

	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count rescheduled: %w", err)
	}

	q = q.OrderBy("delivery_date", "number")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var rows []timelineRow
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list rescheduled: %w", err)
	}

	entries := make([]reports.DeliveryTimelineEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, reports.DeliveryTimelineEntry{
			PurchaseOrderID:      row.ID,
			Number:               row.Number,
			SupplierID:           row.SupplierID,
			Status:               row.Status,
			OriginalDeliveryDate: row.OriginalDeliveryDate,
			CurrentDeliveryDate:  row.DeliveryDate,
		})
	}

	return entries, total, nil
}
