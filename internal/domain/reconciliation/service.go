package reconciliation

import (
	"context"
	"time"

	"mercato/internal/core/apperror"
	"mercato/internal/core/tx"
	"mercato/pkg/logger"
)

// MismatchReport is the mismatch listing returned to callers.
type MismatchReport struct {
	Entries []Mismatch `json:"entries"`
	Total   int        `json:"total"`
}

// Service reconciles supplier prices against invoiced prices.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Upsert merges the patch into the record for the invoice, creating the
// record on first report. Concurrent writers for the same invoice are
// serialized through the version guard; the loser gets
// CONCURRENT_MODIFICATION and can retry.
func (s *Service) Upsert(ctx context.Context, invoiceID string, patch Patch) (*InvoicePriceRecord, error) {
	if invoiceID == "" {
		return nil, apperror.NewValidation("invoice id is required")
	}
	if err := patch.Validate(ctx); err != nil {
		return nil, err
	}

	var result *InvoicePriceRecord
	err := s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		rec, err := s.repo.Get(txCtx, invoiceID)
		switch {
		case err == nil:
			rec.Apply(patch)
			if err := s.repo.Update(txCtx, rec); err != nil {
				return err
			}
		case apperror.IsNotFound(err):
			now := time.Now().UTC()
			rec = &InvoicePriceRecord{
				InvoiceID: invoiceID,
				CreatedAt: now,
				UpdatedAt: now,
			}
			rec.Apply(patch)
			if err := s.repo.Create(txCtx, rec); err != nil {
				return err
			}
		default:
			return err
		}
		result = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice prices recorded",
		"invoice_id", invoiceID,
		"mismatch", result.IsMismatch())
	return result, nil
}

// Get returns the record with its computed difference when both prices
// are present.
func (s *Service) Get(ctx context.Context, invoiceID string) (*InvoicePriceRecord, error) {
	if invoiceID == "" {
		return nil, apperror.NewValidation("invoice id is required")
	}
	return s.repo.Get(ctx, invoiceID)
}

// Delete removes the record permanently.
func (s *Service) Delete(ctx context.Context, invoiceID string) error {
	if invoiceID == "" {
		return apperror.NewValidation("invoice id is required")
	}
	if _, err := s.repo.Get(ctx, invoiceID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, invoiceID); err != nil {
		return err
	}
	logger.Info(ctx, "invoice price record deleted", "invoice_id", invoiceID)
	return nil
}

// ListMismatches scans records holding both prices and returns those
// whose difference exceeds the tolerance, with the signed difference
// attached.
func (s *Service) ListMismatches(ctx context.Context) (*MismatchReport, error) {
	records, err := s.repo.ListPriced(ctx)
	if err != nil {
		return nil, err
	}

	report := &MismatchReport{Entries: []Mismatch{}}
	for _, rec := range records {
		diff, ok := rec.Difference()
		if !ok || !rec.IsMismatch() {
			continue
		}
		report.Entries = append(report.Entries, Mismatch{
			InvoicePriceRecord: *rec,
			Difference:         diff,
		})
	}
	report.Total = len(report.Entries)
	return report, nil
}
