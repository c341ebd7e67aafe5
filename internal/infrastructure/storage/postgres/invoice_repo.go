package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"mercato/internal/core/apperror"
	"mercato/internal/domain/reconciliation"
)

const invoicePricesTable = "invoice_price_records"

// Compile-time check.
var _ reconciliation.Repository = (*InvoicePriceRepo)(nil)

// InvoicePriceRepo is the PostgreSQL implementation of
// reconciliation.Repository. Records are keyed by the opaque invoice ID,
// not a generated UUID, so it does not reuse baseRepo.
type InvoicePriceRepo struct {
	txManager *TxManager
	cols      []string
}

// NewInvoicePriceRepo creates a new invoice price repository.
func NewInvoicePriceRepo(txManager *TxManager) *InvoicePriceRepo {
	return &InvoicePriceRepo{
		txManager: txManager,
		cols:      ExtractDBColumns[reconciliation.InvoicePriceRecord](),
	}
}

func (r *InvoicePriceRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Get returns the record for the invoice.
func (r *InvoicePriceRepo) Get(ctx context.Context, invoiceID string) (*reconciliation.InvoicePriceRecord, error) {
	q := r.builder().
		Select(r.cols...).
		From(invoicePricesTable).
		Where(squirrel.Eq{"invoice_id": invoiceID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rec reconciliation.InvoicePriceRecord
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(invoicePricesTable, invoiceID)
		}
		return nil, fmt.Errorf("get invoice prices: %w", err)
	}

	return &rec, nil
}

// Create inserts a new record. Two first reports racing on the same
// invoice both take the create path; the loser hits the primary key and
// gets the retryable conflict instead of a raw driver error.
func (r *InvoicePriceRepo) Create(ctx context.Context, rec *reconciliation.InvoicePriceRecord) error {
	q := r.builder().
		Insert(invoicePricesTable).
		SetMap(StructToMap(rec))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewConcurrentModification(invoicePricesTable, rec.InvoiceID).
				WithCause(err)
		}
		return fmt.Errorf("insert %s: %w", invoicePricesTable, err)
	}

	return nil
}

// Update applies the record guarded by its previous version.
func (r *InvoicePriceRepo) Update(ctx context.Context, rec *reconciliation.InvoicePriceRecord) error {
	q := r.builder().
		Update(invoicePricesTable).
		Set("invoice_number", rec.InvoiceNumber).
		Set("supplier_price", rec.SupplierPrice).
		Set("invoice_price", rec.InvoicePrice).
		Set("updated_at", rec.UpdatedAt).
		Set("version", rec.Version).
		Where(squirrel.Eq{"invoice_id": rec.InvoiceID}).
		Where(squirrel.Eq{"version": rec.Version - 1})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", invoicePricesTable, err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(invoicePricesTable, rec.InvoiceID)
	}

	return nil
}

// Delete removes the record permanently.
func (r *InvoicePriceRepo) Delete(ctx context.Context, invoiceID string) error {
	q := r.builder().
		Delete(invoicePricesTable).
		Where(squirrel.Eq{"invoice_id": invoiceID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", invoicePricesTable, err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(invoicePricesTable, invoiceID)
	}

	return nil
}

// ListPriced returns records holding both prices, ordered by invoice ID.
func (r *InvoicePriceRepo) ListPriced(ctx context.Context) ([]*reconciliation.InvoicePriceRecord, error) {
	q := r.builder().
		Select(r.cols...).
		From(invoicePricesTable).
		Where("supplier_price IS NOT NULL").
		Where("invoice_price IS NOT NULL").
		OrderBy("invoice_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var records []*reconciliation.InvoicePriceRecord
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &records, sql, args...); err != nil {
		return nil, fmt.Errorf("list priced records: %w", err)
	}

	return records, nil
}
