package dto

import (
	"time"

	"mercato/internal/core/id"
	"mercato/internal/core/types"
	"mercato/internal/domain/orders"
)

// --- Requests ---

// OrderLineRequest is one line of an order.
type OrderLineRequest struct {
	ProductID string      `json:"productId" binding:"required"`
	Quantity  int         `json:"quantity" binding:"required"`
	UnitPrice types.Money `json:"unitPrice"`
}

// CreateOrderRequest creates a new order.
type CreateOrderRequest struct {
	CustomerID string             `json:"customerId" binding:"required"`
	Lines      []OrderLineRequest `json:"lines" binding:"required"`
}

// ToEntity converts the request into a domain order.
func (r CreateOrderRequest) ToEntity() (*orders.Order, error) {
	customerID, err := id.Parse(r.CustomerID)
	if err != nil {
		return nil, err
	}

	lines := make([]orders.Line, 0, len(r.Lines))
	for _, l := range r.Lines {
		productID, err := id.Parse(l.ProductID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, orders.Line{
			ProductID: productID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}

	return orders.NewOrder(customerID, lines), nil
}

// TransitionOrderRequest moves an order to a target status.
type TransitionOrderRequest struct {
	Status string `json:"status" binding:"required"`
}

// --- Responses ---

// OrderLineResponse is one line of an order.
type OrderLineResponse struct {
	LineID    string      `json:"lineId"`
	LineNo    int         `json:"lineNo"`
	ProductID string      `json:"productId"`
	Quantity  int         `json:"quantity"`
	UnitPrice types.Money `json:"unitPrice"`
	Subtotal  types.Money `json:"subtotal"`
}

// OrderResponse is the API representation of an order.
type OrderResponse struct {
	ID              string              `json:"id"`
	Number          string              `json:"number"`
	CustomerID      string              `json:"customerId"`
	Status          string              `json:"status"`
	StatusUpdatedAt time.Time           `json:"statusUpdatedAt"`
	PlacedAt        time.Time           `json:"placedAt"`
	TotalAmount     types.Money         `json:"totalAmount"`
	Lines           []OrderLineResponse `json:"lines"`
	Version         int                 `json:"version"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// FromOrder creates OrderResponse from the domain order.
func FromOrder(o *orders.Order) OrderResponse {
	lines := make([]OrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, OrderLineResponse{
			LineID:    l.LineID.String(),
			LineNo:    l.LineNo,
			ProductID: l.ProductID.String(),
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal(),
		})
	}

	return OrderResponse{
		ID:              o.ID.String(),
		Number:          o.Number,
		CustomerID:      o.CustomerID.String(),
		Status:          string(o.Status),
		StatusUpdatedAt: o.StatusUpdatedAt,
		PlacedAt:        o.PlacedAt,
		TotalAmount:     o.TotalAmount,
		Lines:           lines,
		Version:         o.Version,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
