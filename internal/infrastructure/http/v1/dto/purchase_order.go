package dto

import (
	"time"

	"mercato/internal/core/id"
	"mercato/internal/domain/purchasing"
)

// --- Requests ---

// PurchaseLineRequest is one line of a purchase order.
type PurchaseLineRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

// CreatePurchaseOrderRequest creates a new purchase order.
type CreatePurchaseOrderRequest struct {
	SupplierID   string                `json:"supplierId" binding:"required"`
	DeliveryDate *time.Time            `json:"deliveryDate,omitempty"`
	Lines        []PurchaseLineRequest `json:"lines"`
}

// ToEntity converts the request into a domain purchase order.
func (r CreatePurchaseOrderRequest) ToEntity() (*purchasing.PurchaseOrder, error) {
	supplierID, err := id.Parse(r.SupplierID)
	if err != nil {
		return nil, err
	}

	lines, err := toPurchaseLines(r.Lines)
	if err != nil {
		return nil, err
	}

	po := purchasing.NewPurchaseOrder(supplierID, lines)
	if r.DeliveryDate != nil {
		po.SetDeliveryDate(*r.DeliveryDate)
	}
	return po, nil
}

// UpdatePOStatusRequest moves a purchase order to a target status.
type UpdatePOStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes,omitempty"`
}

// EditPOItemsRequest replaces the purchase order's lines.
type EditPOItemsRequest struct {
	Lines []PurchaseLineRequest `json:"lines" binding:"required"`
}

// ToLines converts the request lines.
func (r EditPOItemsRequest) ToLines() ([]purchasing.Line, error) {
	return toPurchaseLines(r.Lines)
}

// EditPOSupplierRequest changes the supplier.
type EditPOSupplierRequest struct {
	SupplierID string `json:"supplierId" binding:"required"`
}

// EditPODeliveryDateRequest reschedules the delivery.
type EditPODeliveryDateRequest struct {
	DeliveryDate time.Time `json:"deliveryDate" binding:"required"`
}

func toPurchaseLines(reqs []PurchaseLineRequest) ([]purchasing.Line, error) {
	lines := make([]purchasing.Line, 0, len(reqs))
	for _, l := range reqs {
		productID, err := id.Parse(l.ProductID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, purchasing.Line{
			ProductID: productID,
			Quantity:  l.Quantity,
		})
	}
	return lines, nil
}

// --- Responses ---

// PurchaseLineResponse is one line of a purchase order.
type PurchaseLineResponse struct {
	LineID    string `json:"lineId"`
	LineNo    int    `json:"lineNo"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// PurchaseOrderResponse is the API representation of a purchase order.
type PurchaseOrderResponse struct {
	ID                   string                 `json:"id"`
	Number               string                 `json:"number"`
	SupplierID           string                 `json:"supplierId"`
	Status               string                 `json:"status"`
	StatusUpdatedAt      time.Time              `json:"statusUpdatedAt"`
	DeliveryDate         *time.Time             `json:"deliveryDate,omitempty"`
	OriginalDeliveryDate *time.Time             `json:"originalDeliveryDate,omitempty"`
	Rescheduled          bool                   `json:"rescheduled"`
	Lines                []PurchaseLineResponse `json:"lines"`
	Version              int                    `json:"version"`
	CreatedAt            time.Time              `json:"createdAt"`
	UpdatedAt            time.Time              `json:"updatedAt"`
}

// FromPurchaseOrder creates PurchaseOrderResponse from the domain entity.
func FromPurchaseOrder(po *purchasing.PurchaseOrder) PurchaseOrderResponse {
	lines := make([]PurchaseLineResponse, 0, len(po.Lines))
	for _, l := range po.Lines {
		lines = append(lines, PurchaseLineResponse{
			LineID:    l.LineID.String(),
			LineNo:    l.LineNo,
			ProductID: l.ProductID.String(),
			Quantity:  l.Quantity,
		})
	}

	return PurchaseOrderResponse{
		ID:                   po.ID.String(),
		Number:               po.Number,
		SupplierID:           po.SupplierID.String(),
		Status:               string(po.Status),
		StatusUpdatedAt:      po.StatusUpdatedAt,
		DeliveryDate:         po.DeliveryDate,
		OriginalDeliveryDate: po.OriginalDeliveryDate,
		Rescheduled:          po.IsRescheduled(),
		Lines:                lines,
		Version:              po.Version,
		CreatedAt:            po.CreatedAt,
		UpdatedAt:            po.UpdatedAt,
	}
}

// StatusEventResponse is one entry of the purchase order history.
type StatusEventResponse struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	FromStatus string     `json:"fromStatus,omitempty"`
	ToStatus   string     `json:"toStatus,omitempty"`
	FromDate   *time.Time `json:"fromDate,omitempty"`
	ToDate     *time.Time `json:"toDate,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	Actor      string     `json:"actor,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// FromStatusEvents maps history events.
func FromStatusEvents(events []purchasing.StatusEvent) []StatusEventResponse {
	out := make([]StatusEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, StatusEventResponse{
			ID:         e.ID.String(),
			Kind:       string(e.Kind),
			FromStatus: string(e.FromStatus),
			ToStatus:   string(e.ToStatus),
			FromDate:   e.FromDate,
			ToDate:     e.ToDate,
			Notes:      e.Notes,
			Actor:      e.Actor,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out
}
