package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercato/internal/core/id"
	"mercato/internal/domain/purchasing"
)

type fakeReportRepo struct {
	entries    []DeliveryTimelineEntry
	lastFilter DeliveryTimelineFilter
}

func (r *fakeReportRepo) GetRescheduledPurchaseOrders(_ context.Context, filter DeliveryTimelineFilter) ([]DeliveryTimelineEntry, int, error) {
	r.lastFilter = filter
	return append([]DeliveryTimelineEntry(nil), r.entries...), len(r.entries), nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func entry(status purchasing.Status, original, current time.Time) DeliveryTimelineEntry {
	return DeliveryTimelineEntry{
		PurchaseOrderID:      id.New(),
		Number:               "PO-TEST",
		SupplierID:           id.New(),
		Status:               status,
		OriginalDeliveryDate: original,
		CurrentDeliveryDate:  current,
	}
}

func TestDeliveryTimelineComputesDelaysAndSummary(t *testing.T) {
	repo := &fakeReportRepo{entries: []DeliveryTimelineEntry{
		// Delayed 5 days.
		entry(purchasing.StatusApproved, day(2026, 9, 10), day(2026, 9, 15)),
		// Pulled forward 2 days.
		entry(purchasing.StatusShipped, day(2026, 9, 20), day(2026, 9, 18)),
		// Delayed 3 days.
		entry(purchasing.StatusDelivered, day(2026, 9, 1), day(2026, 9, 4)),
	}}
	svc := NewService(repo)

	report, err := svc.GetDeliveryTimeline(context.Background(), DeliveryTimelineFilter{})
	require.NoError(t, err)

	require.Len(t, report.Entries, 3)
	assert.Equal(t, 3, report.TotalCount)
	assert.Equal(t, 5, report.Entries[0].DelayDays)
	assert.Equal(t, -2, report.Entries[1].DelayDays)
	assert.Equal(t, 3, report.Entries[2].DelayDays)

	assert.Equal(t, 2, report.DelayedCount)
	assert.Equal(t, 1, report.PulledForwardCount)
	// (5 - 2 + 3) / 3
	assert.InDelta(t, 2.0, report.AverageDelayDays, 1e-9)
}

func TestCanceledOrdersListedButExcludedFromSummary(t *testing.T) {
	repo := &fakeReportRepo{entries: []DeliveryTimelineEntry{
		entry(purchasing.StatusApproved, day(2026, 9, 10), day(2026, 9, 14)),
		entry(purchasing.StatusCanceled, day(2026, 9, 10), day(2026, 9, 30)),
	}}
	svc := NewService(repo)

	report, err := svc.GetDeliveryTimeline(context.Background(), DeliveryTimelineFilter{})
	require.NoError(t, err)

	require.Len(t, report.Entries, 2)
	assert.True(t, report.Entries[1].Canceled)
	assert.Equal(t, 20, report.Entries[1].DelayDays, "delay still shown for audit")

	assert.Equal(t, 1, report.DelayedCount)
	assert.Equal(t, 0, report.PulledForwardCount)
	assert.InDelta(t, 4.0, report.AverageDelayDays, 1e-9)
}

func TestOnlyDelayedFilterDropsOnTimeAndPulledForward(t *testing.T) {
	repo := &fakeReportRepo{entries: []DeliveryTimelineEntry{
		entry(purchasing.StatusApproved, day(2026, 9, 10), day(2026, 9, 15)),
		entry(purchasing.StatusApproved, day(2026, 9, 10), day(2026, 9, 10)),
		entry(purchasing.StatusApproved, day(2026, 9, 10), day(2026, 9, 8)),
	}}
	svc := NewService(repo)

	report, err := svc.GetDeliveryTimeline(context.Background(), DeliveryTimelineFilter{OnlyDelayed: true})
	require.NoError(t, err)

	require.Len(t, report.Entries, 1)
	assert.Equal(t, 5, report.Entries[0].DelayDays)
	// Dropped entries do not feed the summary either.
	assert.Equal(t, 1, report.DelayedCount)
	assert.Equal(t, 0, report.PulledForwardCount)
	assert.InDelta(t, 5.0, report.AverageDelayDays, 1e-9)
}

func TestDateRangeValidation(t *testing.T) {
	svc := NewService(&fakeReportRepo{})
	from := day(2026, 9, 30)
	to := day(2026, 9, 1)

	_, err := svc.GetDeliveryTimeline(context.Background(), DeliveryTimelineFilter{
		FromDate: &from,
		ToDate:   &to,
	})
	require.Error(t, err)
}

func TestPaginationDefaultsAndCap(t *testing.T) {
	repo := &fakeReportRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.GetDeliveryTimeline(ctx, DeliveryTimelineFilter{})
	require.NoError(t, err)
	assert.Equal(t, 100, repo.lastFilter.Limit)

	_, err = svc.GetDeliveryTimeline(ctx, DeliveryTimelineFilter{Limit: 5000})
	require.NoError(t, err)
	assert.Equal(t, 1000, repo.lastFilter.Limit)

	_, err = svc.GetDeliveryTimeline(ctx, DeliveryTimelineFilter{Limit: 25, Offset: 50})
	require.NoError(t, err)
	assert.Equal(t, 25, repo.lastFilter.Limit)
	assert.Equal(t, 50, repo.lastFilter.Offset)
}

func TestDaysBetweenIgnoresTimeOfDay(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same day different hours",
			time.Date(2026, 9, 10, 23, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 10, 1, 0, 0, 0, time.UTC), 0},
		{"next day early morning",
			time.Date(2026, 9, 10, 23, 59, 0, 0, time.UTC),
			time.Date(2026, 9, 11, 0, 1, 0, 0, time.UTC), 1},
		{"month boundary", day(2026, 8, 30), day(2026, 9, 2), 3},
		{"negative across year", day(2027, 1, 2), day(2026, 12, 30), -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, daysBetween(tt.a, tt.b))
		})
	}
}
