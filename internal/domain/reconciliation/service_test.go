package reconciliation

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercato/internal/core/apperror"
	"mercato/internal/core/tx"
	"mercato/internal/core/types"
)

type fakeLedger struct {
	records map[string]*InvoicePriceRecord
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{records: make(map[string]*InvoicePriceRecord)}
}

func (l *fakeLedger) Get(_ context.Context, invoiceID string) (*InvoicePriceRecord, error) {
	rec, ok := l.records[invoiceID]
	if !ok {
		return nil, apperror.NewNotFound("invoice price record", invoiceID)
	}
	cp := *rec
	return &cp, nil
}

func (l *fakeLedger) Create(_ context.Context, rec *InvoicePriceRecord) error {
	cp := *rec
	l.records[rec.InvoiceID] = &cp
	return nil
}

func (l *fakeLedger) Update(_ context.Context, rec *InvoicePriceRecord) error {
	stored, ok := l.records[rec.InvoiceID]
	if !ok {
		return apperror.NewNotFound("invoice price record", rec.InvoiceID)
	}
	if stored.Version != rec.Version-1 {
		return apperror.NewConcurrentModification("invoice price record", rec.InvoiceID)
	}
	cp := *rec
	l.records[rec.InvoiceID] = &cp
	return nil
}

func (l *fakeLedger) Delete(_ context.Context, invoiceID string) error {
	delete(l.records, invoiceID)
	return nil
}

func (l *fakeLedger) ListPriced(_ context.Context) ([]*InvoicePriceRecord, error) {
	var out []*InvoicePriceRecord
	for _, rec := range l.records {
		if rec.SupplierPrice != nil && rec.InvoicePrice != nil {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvoiceID < out[j].InvoiceID })
	return out, nil
}

func newLedgerService(ledger *fakeLedger) *Service {
	return NewService(ledger, &tx.MockManager{})
}

func money(s string) *types.Money {
	m := types.MustMoney(s)
	return &m
}

func str(s string) *string { return &s }

func TestUpsertCreatesThenMerges(t *testing.T) {
	svc := newLedgerService(newFakeLedger())
	ctx := context.Background()

	// First report: supplier side only.
	rec, err := svc.Upsert(ctx, "INV-1001", Patch{SupplierPrice: money("120.00")})
	require.NoError(t, err)
	require.NotNil(t, rec.SupplierPrice)
	assert.Nil(t, rec.InvoicePrice)
	_, priced := rec.Difference()
	assert.False(t, priced)
	assert.False(t, rec.IsMismatch())

	// Second report: invoice side; supplier price must survive the merge.
	rec, err = svc.Upsert(ctx, "INV-1001", Patch{
		InvoiceNumber: str("S-2026-77"),
		InvoicePrice:  money("125.00"),
	})
	require.NoError(t, err)
	require.NotNil(t, rec.SupplierPrice)
	assert.True(t, rec.SupplierPrice.Equal(types.MustMoney("120.00")))
	require.NotNil(t, rec.InvoicePrice)
	assert.Equal(t, "S-2026-77", rec.InvoiceNumber)

	diff, priced := rec.Difference()
	require.True(t, priced)
	assert.True(t, diff.Equal(types.MustMoney("5.00")))
	assert.True(t, rec.IsMismatch())
}

func TestUpsertValidation(t *testing.T) {
	svc := newLedgerService(newFakeLedger())
	ctx := context.Background()

	_, err := svc.Upsert(ctx, "", Patch{SupplierPrice: money("1.00")})
	require.Error(t, err)

	_, err = svc.Upsert(ctx, "INV-1", Patch{})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	_, err = svc.Upsert(ctx, "INV-1", Patch{SupplierPrice: money("-0.01")})
	require.Error(t, err)

	_, err = svc.Upsert(ctx, "INV-1", Patch{InvoicePrice: money("-1.00")})
	require.Error(t, err)

	// InvoiceNumber alone does not count as a price report.
	_, err = svc.Upsert(ctx, "INV-1", Patch{InvoiceNumber: str("S-1")})
	require.Error(t, err)
}

func TestToleranceBoundary(t *testing.T) {
	tests := []struct {
		name     string
		supplier string
		invoice  string
		mismatch bool
	}{
		{"exact match", "100.00", "100.00", false},
		{"half cent inside tolerance", "100.00", "100.005", false},
		{"one cent at tolerance", "100.00", "100.01", false},
		{"two cents over", "100.00", "100.02", true},
		{"negative difference over", "100.02", "100.00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := InvoicePriceRecord{
				SupplierPrice: money(tt.supplier),
				InvoicePrice:  money(tt.invoice),
			}
			assert.Equal(t, tt.mismatch, rec.IsMismatch())
		})
	}
}

func TestListMismatchesSkipsPartialAndTolerableRecords(t *testing.T) {
	svc := newLedgerService(newFakeLedger())
	ctx := context.Background()

	// Matched pair.
	_, err := svc.Upsert(ctx, "INV-A", Patch{SupplierPrice: money("50.00"), InvoicePrice: money("50.00")})
	require.NoError(t, err)
	// Within tolerance.
	_, err = svc.Upsert(ctx, "INV-B", Patch{SupplierPrice: money("50.00"), InvoicePrice: money("50.01")})
	require.NoError(t, err)
	// Supplier side only.
	_, err = svc.Upsert(ctx, "INV-C", Patch{SupplierPrice: money("50.00")})
	require.NoError(t, err)
	// Genuine mismatches, one in each direction.
	_, err = svc.Upsert(ctx, "INV-D", Patch{SupplierPrice: money("50.00"), InvoicePrice: money("52.50")})
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, "INV-E", Patch{SupplierPrice: money("50.00"), InvoicePrice: money("48.00")})
	require.NoError(t, err)

	report, err := svc.ListMismatches(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, report.Total)
	require.Len(t, report.Entries, 2)

	assert.Equal(t, "INV-D", report.Entries[0].InvoiceID)
	assert.True(t, report.Entries[0].Difference.Equal(types.MustMoney("2.50")))
	assert.Equal(t, "INV-E", report.Entries[1].InvoiceID)
	assert.True(t, report.Entries[1].Difference.Equal(types.MustMoney("-2.00")))
}

func TestListMismatchesEmptyLedger(t *testing.T) {
	svc := newLedgerService(newFakeLedger())
	report, err := svc.ListMismatches(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Total)
	assert.NotNil(t, report.Entries)
}

func TestDeleteThenGetNotFound(t *testing.T) {
	svc := newLedgerService(newFakeLedger())
	ctx := context.Background()

	_, err := svc.Upsert(ctx, "INV-DEL", Patch{SupplierPrice: money("9.99")})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "INV-DEL"))

	_, err = svc.Get(ctx, "INV-DEL")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))

	// Deleting again reports not found, not success.
	err = svc.Delete(ctx, "INV-DEL")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpsertVersionGuard(t *testing.T) {
	ledger := newFakeLedger()
	svc := newLedgerService(ledger)
	ctx := context.Background()

	rec, err := svc.Upsert(ctx, "INV-V", Patch{SupplierPrice: money("10.00")})
	require.NoError(t, err)
	firstVersion := rec.Version

	rec, err = svc.Upsert(ctx, "INV-V", Patch{InvoicePrice: money("10.00")})
	require.NoError(t, err)
	assert.Equal(t, firstVersion+1, rec.Version)
}
