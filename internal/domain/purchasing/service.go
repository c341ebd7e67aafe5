// Package purchasing provides the purchase order service.
package purchasing

import (
	"context"
	"fmt"
	"time"

	"mercato/internal/core/apperror"
	appctx "mercato/internal/core/context"
	"mercato/internal/core/id"
	"mercato/internal/core/numerator"
	"mercato/internal/core/tx"
	"mercato/internal/domain"
	"mercato/pkg/logger"
)

// NumberPrefix is the purchase order number prefix.
const NumberPrefix = "PO"

// Service provides business operations for purchase orders.
type Service struct {
	repo      Repository
	events    EventRepository
	numerator numerator.Generator
	txManager tx.Manager
	hooks     *domain.HookRegistry[*PurchaseOrder]
}

// NewService creates a new purchase order service.
func NewService(
	repo Repository,
	events EventRepository,
	numerator numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		events:    events,
		numerator: numerator,
		txManager: txManager,
		hooks:     domain.NewHookRegistry[*PurchaseOrder](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*PurchaseOrder] {
	return s.hooks
}

// Create creates a new purchase order in CREATED.
func (s *Service) Create(ctx context.Context, po *PurchaseOrder) error {
	if err := po.Validate(ctx); err != nil {
		return err
	}

	if po.Number == "" {
		cfg := numerator.DefaultConfig(NumberPrefix)
		number, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		po.Number = number
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, po); err != nil {
			return fmt.Errorf("create purchase order: %w", err)
		}
		if err := s.repo.SaveLines(ctx, po.ID, po.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		if po.DeliveryDate != nil {
			event := newRescheduleEvent(po, nil, po.DeliveryDate, appctx.GetUserID(ctx))
			if err := s.events.Append(ctx, event); err != nil {
				return fmt.Errorf("append event: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "purchase order created",
		"id", po.ID,
		"number", po.Number,
		"supplier_id", po.SupplierID)

	return nil
}

// GetByID retrieves a purchase order with lines.
func (s *Service) GetByID(ctx context.Context, poID id.ID) (*PurchaseOrder, error) {
	po, err := s.repo.GetByID(ctx, poID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, poID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	po.Lines = lines

	return po, nil
}

// List retrieves purchase orders with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*PurchaseOrder], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

// History returns the append-only event log for a purchase order.
func (s *Service) History(ctx context.Context, poID id.ID) ([]StatusEvent, error) {
	if _, err := s.repo.GetByID(ctx, poID); err != nil {
		return nil, err
	}
	return s.events.ListByPurchaseOrder(ctx, poID)
}

// UpdateStatus moves the PO to target if (current, target) is an edge of
// the transition table. Notes are stored as audit context on the event,
// never interpreted. The status write and the event append commit in one
// transaction; the write itself is a version CAS.
func (s *Service) UpdateStatus(ctx context.Context, poID id.ID, target Status, notes string) (*PurchaseOrder, error) {
	if !target.IsValid() {
		return nil, apperror.NewValidation("unknown target status").
			WithDetail("targetStatus", string(target))
	}

	po, err := s.GetByID(ctx, poID)
	if err != nil {
		return nil, err
	}

	if !po.Status.CanTransitionTo(target) {
		return nil, apperror.NewInvalidTransition("purchase order", po.Status.String(), target.String())
	}

	// A PO that lost all its lines through editing must not advance.
	if target == StatusApproved && len(po.Lines) == 0 {
		return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule,
			"purchase order with no items cannot be approved").
			WithDetail("purchase_order_id", po.ID.String())
	}

	from := po.Status
	po.SetStatus(target)

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, po); err != nil {
			return err
		}
		event := newStatusEvent(po, from, target, notes, appctx.GetUserID(ctx))
		return s.events.Append(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase order status changed",
		"id", po.ID,
		"number", po.Number,
		"from", from,
		"to", target)

	if err := s.hooks.Run(ctx, domain.AfterStatus, po); err != nil {
		logger.Warn(ctx, "after-status hook failed",
			"purchase_order_id", po.ID,
			"error", err)
	}

	return po, nil
}

// Cancel is sugar for UpdateStatus(CANCELED), with the cancellation guard
// kept explicit: cancellation is a distinct, irreversible business action
// allowed only from CREATED or APPROVED.
func (s *Service) Cancel(ctx context.Context, poID id.ID) (*PurchaseOrder, error) {
	po, err := s.repo.GetByID(ctx, poID)
	if err != nil {
		return nil, err
	}

	if !po.Status.IsCancelable() {
		return nil, apperror.NewInvalidTransition("purchase order", po.Status.String(), StatusCanceled.String())
	}

	return s.UpdateStatus(ctx, poID, StatusCanceled, "")
}

// EditItems replaces the line items. Permitted only while CREATED.
func (s *Service) EditItems(ctx context.Context, poID id.ID, lines []Line) (*PurchaseOrder, error) {
	po, err := s.GetByID(ctx, poID)
	if err != nil {
		return nil, err
	}

	if err := po.CanModify(); err != nil {
		return nil, err
	}

	po.setLines(lines)
	if err := po.Validate(ctx); err != nil {
		return nil, err
	}
	po.Touch()

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, po); err != nil {
			return err
		}
		return s.repo.SaveLines(ctx, po.ID, po.Lines)
	})
	if err != nil {
		return nil, err
	}

	return po, nil
}

// EditSupplier changes the supplier. Permitted only while CREATED.
func (s *Service) EditSupplier(ctx context.Context, poID id.ID, supplierID id.ID) (*PurchaseOrder, error) {
	if id.IsNil(supplierID) {
		return nil, apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}

	po, err := s.GetByID(ctx, poID)
	if err != nil {
		return nil, err
	}

	if err := po.CanModify(); err != nil {
		return nil, err
	}

	po.SupplierID = supplierID
	po.Touch()

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, po)
	})
	if err != nil {
		return nil, err
	}

	return po, nil
}

// EditDeliveryDate changes the expected delivery date. Permitted only while
// CREATED; the first committed date is snapshotted as the original and every
// later change is appended to the history for the delivery timeline.
func (s *Service) EditDeliveryDate(ctx context.Context, poID id.ID, date time.Time) (*PurchaseOrder, error) {
	if date.IsZero() {
		return nil, apperror.NewValidation("delivery date is required").
			WithDetail("field", "deliveryDate")
	}

	po, err := s.GetByID(ctx, poID)
	if err != nil {
		return nil, err
	}

	if err := po.CanModify(); err != nil {
		return nil, err
	}

	previous := po.DeliveryDate
	po.SetDeliveryDate(date)

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, po); err != nil {
			return err
		}
		event := newRescheduleEvent(po, previous, po.DeliveryDate, appctx.GetUserID(ctx))
		return s.events.Append(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase order delivery date changed",
		"id", po.ID,
		"number", po.Number,
		"delivery_date", po.DeliveryDate)

	return po, nil
}
