package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercato/internal/core/apperror"
	"mercato/internal/core/types"
	"mercato/internal/domain/reconciliation"
)

func TestCreateDuplicateInvoiceIsRetryableConflict(t *testing.T) {
	rec := &execRecorder{err: &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "invoice_price_records_pkey",
	}}
	repo := NewInvoicePriceRepo(NewTxManagerFromRawPool(nil))

	price := types.MustMoney("120.50")
	now := time.Now().UTC()
	err := repo.Create(ctxWithRecorder(rec), &reconciliation.InvoicePriceRecord{
		InvoiceID:     "INV-RACE",
		SupplierPrice: &price,
		CreatedAt:     now,
		UpdatedAt:     now,
		Version:       1,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsConcurrentModification(err),
		"losing first writer must get the retryable conflict")
}

func TestCreateOtherErrorsPassThrough(t *testing.T) {
	rec := &execRecorder{err: &pgconn.PgError{Code: "42P01"}}
	repo := NewInvoicePriceRepo(NewTxManagerFromRawPool(nil))

	price := types.MustMoney("1.00")
	err := repo.Create(ctxWithRecorder(rec), &reconciliation.InvoicePriceRecord{
		InvoiceID:     "INV-X",
		SupplierPrice: &price,
	})
	require.Error(t, err)
	assert.False(t, apperror.IsConcurrentModification(err))
}
