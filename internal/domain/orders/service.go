// Package orders provides the customer order fulfillment service.
package orders

import (
	"context"
	"fmt"
	"time"

	"mercato/internal/core/apperror"
	"mercato/internal/core/id"
	"mercato/internal/core/numerator"
	"mercato/internal/core/tx"
	"mercato/internal/domain"
	"mercato/pkg/logger"
)

// NumberPrefix is the order number prefix.
const NumberPrefix = "ORD"

// Service provides business operations for customer orders.
type Service struct {
	repo      Repository
	inventory InventoryAdjuster
	numerator numerator.Generator
	txManager tx.Manager
	hooks     *domain.HookRegistry[*Order]
}

// NewService creates a new order service.
func NewService(
	repo Repository,
	inventory InventoryAdjuster,
	numerator numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		inventory: inventory,
		numerator: numerator,
		txManager: txManager,
		hooks:     domain.NewHookRegistry[*Order](),
	}
}

// Hooks returns the hook registry for registering callbacks.
// Notification dispatch subscribes to domain.AfterStatus here.
func (s *Service) Hooks() *domain.HookRegistry[*Order] {
	return s.hooks
}

// Create places a new order.
func (s *Service) Create(ctx context.Context, order *Order) error {
	if err := order.Validate(ctx); err != nil {
		return err
	}

	if order.Number == "" {
		cfg := numerator.DefaultConfig(NumberPrefix)
		number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: numerator.StrategyCached}, time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		order.Number = number
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if err := s.repo.SaveLines(ctx, order.ID, order.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "order placed",
		"id", order.ID,
		"number", order.Number,
		"total", order.TotalAmount)

	return nil
}

// GetByID retrieves an order with lines.
func (s *Service) GetByID(ctx context.Context, orderID id.ID) (*Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	order.Lines = lines

	return order, nil
}

// List retrieves orders with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Order], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

// Transition moves the order to target if (current, target) is an edge of
// the transition table, updates statusUpdatedAt and returns the updated
// order. The repository write is a version CAS, so of two racing calls on
// the same order exactly one commits and the other sees
// CONCURRENT_MODIFICATION.
func (s *Service) Transition(ctx context.Context, orderID id.ID, target Status) (*Order, error) {
	if !target.IsValid() {
		return nil, apperror.NewValidation("unknown target status").
			WithDetail("targetStatus", string(target))
	}

	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(target) {
		return nil, apperror.NewInvalidTransition("order", order.Status.String(), target.String())
	}

	from := order.Status
	order.SetStatus(target)

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "order status changed",
		"id", order.ID,
		"number", order.Number,
		"from", from,
		"to", target)

	s.runSideEffects(ctx, order, from)

	return order, nil
}

// runSideEffects triggers collaborator calls for a committed transition.
// The transition stands regardless of collaborator outcome: at-least-once,
// fire-and-forget.
func (s *Service) runSideEffects(ctx context.Context, order *Order, from Status) {
	if from == StatusProcessing && order.Status == StatusPicked && s.inventory != nil {
		if err := s.inventory.Deduct(ctx, order.ID, order.Lines); err != nil {
			logger.Warn(ctx, "inventory deduction failed",
				"order_id", order.ID,
				"error", err)
		}
	}

	if err := s.hooks.Run(ctx, domain.AfterStatus, order); err != nil {
		logger.Warn(ctx, "after-status hook failed",
			"order_id", order.ID,
			"error", err)
	}
}

// --- Named stage operations ---
//
// PROCESSING doubles as "picking in progress" and PACKED as "packing in
// progress"; completing the packing stage advances straight to
// READY_TO_DISPATCH with no separate staff action.

// StartPicking moves a freshly placed order into picking.
func (s *Service) StartPicking(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.stageTransition(ctx, orderID, StatusPlaced, StatusProcessing)
}

// CompletePicking finishes picking and triggers the inventory deduction.
func (s *Service) CompletePicking(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.stageTransition(ctx, orderID, StatusProcessing, StatusPicked)
}

// StartPacking moves a picked order into packing.
func (s *Service) StartPacking(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.stageTransition(ctx, orderID, StatusPicked, StatusPacked)
}

// CompletePacking finishes packing; the order becomes ready to dispatch.
func (s *Service) CompletePacking(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.stageTransition(ctx, orderID, StatusPacked, StatusReadyToDispatch)
}

// ScheduleDelivery hands the order to the carrier.
func (s *Service) ScheduleDelivery(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.stageTransition(ctx, orderID, StatusReadyToDispatch, StatusShipped)
}

// Cancel moves any non-terminal order to CANCELLED.
func (s *Service) Cancel(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.Transition(ctx, orderID, StatusCancelled)
}

// stageTransition enforces the stage-entry precondition before delegating
// to Transition. The table would reject a wrong edge anyway; checking here
// produces the stage-specific message the fulfillment screens expect.
func (s *Service) stageTransition(ctx context.Context, orderID id.ID, expected, target Status) (*Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != expected {
		return nil, apperror.NewInvalidTransition("order", order.Status.String(), target.String()).
			WithDetail("expectedStatus", expected.String())
	}

	return s.Transition(ctx, orderID, target)
}
