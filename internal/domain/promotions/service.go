// Package promotions provides the promotion admin service.
package promotions

import (
	"context"
	"fmt"

	"mercato/internal/core/id"
	"mercato/internal/core/tx"
	"mercato/internal/domain"
	"mercato/pkg/logger"
)

// Service provides admin CRUD for promotions. Resolution lives on Resolver.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new promotion service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
	}
}

// Create stores a new promotion; the discount is clamped before storage.
func (s *Service) Create(ctx context.Context, promotion *Promotion) error {
	promotion.Normalize()
	if err := promotion.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, promotion); err != nil {
			return fmt.Errorf("create promotion: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "promotion created",
		"id", promotion.ID,
		"name", promotion.Name,
		"scope", promotion.Scope,
		"discount_percent", promotion.DiscountPercent)

	return nil
}

// GetByID retrieves a promotion.
func (s *Service) GetByID(ctx context.Context, promotionID id.ID) (*Promotion, error) {
	return s.repo.GetByID(ctx, promotionID)
}

// Update overwrites a promotion; the discount is clamped before storage.
func (s *Service) Update(ctx context.Context, promotion *Promotion) error {
	promotion.Normalize()
	if err := promotion.Validate(ctx); err != nil {
		return err
	}
	promotion.Touch()

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, promotion); err != nil {
			return fmt.Errorf("update promotion: %w", err)
		}
		return nil
	})
}

// Delete removes a promotion permanently.
func (s *Service) Delete(ctx context.Context, promotionID id.ID) error {
	promotion, err := s.repo.GetByID(ctx, promotionID)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, promotionID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "promotion deleted",
		"id", promotion.ID,
		"name", promotion.Name)

	return nil
}

// List retrieves promotions with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Promotion], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}
