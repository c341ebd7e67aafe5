// Package orders provides the customer order fulfillment state machine.
package orders

import (
	"context"
	"time"

	"mercato/internal/core/apperror"
	"mercato/internal/core/entity"
	"mercato/internal/core/id"
	"mercato/internal/core/types"
)

// Order represents a customer order moving through fulfillment.
// Items and total are fixed at placement; the only mutation after that is
// the status (plus its timestamp) via Service.Transition.
type Order struct {
	entity.BaseDocument

	// Number is the human-readable order number (auto-generated)
	Number string `db:"number" json:"number"`

	// CustomerID references the ordering customer
	CustomerID id.ID `db:"customer_id" json:"customerId"`

	Status          Status    `db:"status" json:"status"`
	StatusUpdatedAt time.Time `db:"status_updated_at" json:"statusUpdatedAt"`

	// PlacedAt is the business timestamp of checkout
	PlacedAt time.Time `db:"placed_at" json:"placedAt"`

	// TotalAmount equals the sum of line subtotals at placement time
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	// Table part: ordered items (immutable once placed)
	Lines []Line `db:"-" json:"lines"`
}

// Line represents an ordered item.
type Line struct {
	LineID    id.ID       `db:"line_id" json:"lineId"`
	LineNo    int         `db:"line_no" json:"lineNo"`
	ProductID id.ID       `db:"product_id" json:"productId"`
	Quantity  int         `db:"quantity" json:"quantity"`
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
}

// Subtotal returns quantity × unit price.
func (l Line) Subtotal() types.Money {
	return l.UnitPrice.Mul(types.NewMoney(float64(l.Quantity)))
}

// NewOrder creates an order in PLACED with the total computed from lines.
func NewOrder(customerID id.ID, lines []Line) *Order {
	now := time.Now().UTC()
	o := &Order{
		BaseDocument:    entity.NewBaseDocument(),
		CustomerID:      customerID,
		Status:          StatusPlaced,
		StatusUpdatedAt: now,
		PlacedAt:        now,
		TotalAmount:     types.Zero(),
		Lines:           make([]Line, 0, len(lines)),
	}
	for _, line := range lines {
		o.addLine(line.ProductID, line.Quantity, line.UnitPrice)
	}
	return o
}

func (o *Order) addLine(productID id.ID, quantity int, unitPrice types.Money) {
	line := Line{
		LineID:    id.New(),
		LineNo:    len(o.Lines) + 1,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}
	o.Lines = append(o.Lines, line)
	o.TotalAmount = types.RoundMoney(o.TotalAmount.Add(line.Subtotal()))
}

// Validate implements entity.Validatable.
func (o *Order) Validate(ctx context.Context) error {
	if id.IsNil(o.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}

	if !o.Status.IsValid() {
		return apperror.NewValidation("unknown order status").
			WithDetail("field", "status").
			WithDetail("value", string(o.Status))
	}

	if len(o.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range o.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.Quantity <= 0 {
			return apperror.NewValidation("quantity must be a positive integer").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price must not be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// SetStatus records a transition that has already been validated against
// the table. Callers go through Service.Transition.
func (o *Order) SetStatus(target Status) {
	o.Status = target
	o.StatusUpdatedAt = time.Now().UTC()
	o.Touch()
}
