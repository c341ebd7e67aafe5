package inventory

import (
	"context"
	"fmt"

	"mercato/internal/core/apperror"
	"mercato/internal/core/id"
	"mercato/internal/core/tx"
	"mercato/internal/domain/orders"
	"mercato/pkg/logger"
)

// Service records stock deductions for picked orders.
// Implements orders.InventoryAdjuster.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

var _ orders.InventoryAdjuster = (*Service)(nil)

// NewService creates a new inventory service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
	}
}

// Deduct records an expense movement per order line.
// Called after the picking transition commits, in its own transaction.
func (s *Service) Deduct(ctx context.Context, orderID id.ID, lines []orders.Line) error {
	if len(lines) == 0 {
		return nil
	}

	movements := make([]Movement, 0, len(lines))
	for i, line := range lines {
		if line.Quantity <= 0 {
			return apperror.NewValidation(fmt.Sprintf("line %d: quantity must be positive", i))
		}
		movements = append(movements, NewMovement(orderID, line.ProductID, line.Quantity))
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.RecordMovements(ctx, movements)
	})
	if err != nil {
		return fmt.Errorf("record movements: %w", err)
	}

	logger.Info(ctx, "stock deducted",
		"order_id", orderID,
		"count", len(movements))

	return nil
}

// GetOrderMovements returns the movements recorded for an order.
func (s *Service) GetOrderMovements(ctx context.Context, orderID id.ID) ([]Movement, error) {
	return s.repo.GetByOrder(ctx, orderID)
}
