package dto

import (
	"time"

	"mercato/internal/core/types"
	"mercato/internal/domain/reconciliation"
)

// UpsertInvoicePricesRequest records one or both prices for an invoice.
// Absent fields keep their stored values.
type UpsertInvoicePricesRequest struct {
	InvoiceNumber *string      `json:"invoiceNumber,omitempty"`
	SupplierPrice *types.Money `json:"supplierPrice,omitempty"`
	InvoicePrice  *types.Money `json:"invoicePrice,omitempty"`
}

// ToPatch converts the request into a domain patch.
func (r UpsertInvoicePricesRequest) ToPatch() reconciliation.Patch {
	return reconciliation.Patch{
		InvoiceNumber: r.InvoiceNumber,
		SupplierPrice: r.SupplierPrice,
		InvoicePrice:  r.InvoicePrice,
	}
}

// InvoicePricesResponse is the API representation of a price record.
type InvoicePricesResponse struct {
	InvoiceID     string       `json:"invoiceId"`
	InvoiceNumber string       `json:"invoiceNumber,omitempty"`
	SupplierPrice *types.Money `json:"supplierPrice,omitempty"`
	InvoicePrice  *types.Money `json:"invoicePrice,omitempty"`
	Difference    *types.Money `json:"difference,omitempty"`
	Mismatch      bool         `json:"mismatch"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
	Version       int          `json:"version"`
}

// FromInvoicePrices creates InvoicePricesResponse from the domain record.
func FromInvoicePrices(rec *reconciliation.InvoicePriceRecord) InvoicePricesResponse {
	resp := InvoicePricesResponse{
		InvoiceID:     rec.InvoiceID,
		InvoiceNumber: rec.InvoiceNumber,
		SupplierPrice: rec.SupplierPrice,
		InvoicePrice:  rec.InvoicePrice,
		Mismatch:      rec.IsMismatch(),
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
		Version:       rec.Version,
	}
	if diff, ok := rec.Difference(); ok {
		resp.Difference = &diff
	}
	return resp
}

// MismatchEntryResponse is one mismatch report entry.
type MismatchEntryResponse struct {
	InvoicePricesResponse
	Difference types.Money `json:"difference"`
}

// MismatchReportResponse is the mismatch listing.
type MismatchReportResponse struct {
	Entries []MismatchEntryResponse `json:"entries"`
	Total   int                     `json:"total"`
}

// FromMismatchReport creates MismatchReportResponse from the domain report.
func FromMismatchReport(report *reconciliation.MismatchReport) MismatchReportResponse {
	entries := make([]MismatchEntryResponse, 0, len(report.Entries))
	for i := range report.Entries {
		entry := report.Entries[i]
		entries = append(entries, MismatchEntryResponse{
			InvoicePricesResponse: FromInvoicePrices(&entry.InvoicePriceRecord),
			Difference:            entry.Difference,
		})
	}
	return MismatchReportResponse{Entries: entries, Total: report.Total}
}
