package reports

import (
	"context"
	"fmt"
	"time"

	"mercato/internal/domain/purchasing"
)

// Service provides report generation operations.
type Service struct {
	repo Repository
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetDeliveryTimeline generates the delivery timeline report: every
// purchase order whose delivery date moved from the date committed at
// approval, with per-order delay and aggregate punctuality figures.
func (s *Service) GetDeliveryTimeline(ctx context.Context, filter DeliveryTimelineFilter) (*DeliveryTimelineReport, error) {
	if filter.FromDate != nil && filter.ToDate != nil && filter.FromDate.After(*filter.ToDate) {
		return nil, fmt.Errorf("fromDate must be before toDate")
	}

	// Set default pagination
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	entries, total, err := s.repo.GetRescheduledPurchaseOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get rescheduled purchase orders: %w", err)
	}

	report := &DeliveryTimelineReport{
		Entries:    make([]DeliveryTimelineEntry, 0, len(entries)),
		TotalCount: total,
	}

	var delaySum int
	var counted int
	for _, e := range entries {
		e.DelayDays = daysBetween(e.OriginalDeliveryDate, e.CurrentDeliveryDate)
		e.Canceled = e.Status == purchasing.StatusCanceled

		if filter.OnlyDelayed && e.DelayDays <= 0 {
			continue
		}
		report.Entries = append(report.Entries, e)

		if e.Canceled {
			continue
		}
		counted++
		delaySum += e.DelayDays
		if e.DelayDays > 0 {
			report.DelayedCount++
		} else if e.DelayDays < 0 {
			report.PulledForwardCount++
		}
	}

	if counted > 0 {
		report.AverageDelayDays = float64(delaySum) / float64(counted)
	}

	return report, nil
}

// daysBetween counts calendar days from a to b, ignoring time of day.
func daysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
