package purchasing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercato/internal/core/apperror"
	"mercato/internal/core/id"
	"mercato/internal/core/numerator"
	"mercato/internal/core/tx"
	"mercato/internal/domain"
)

type fakePORepo struct {
	orders map[id.ID]*PurchaseOrder
	lines  map[id.ID][]Line
}

func newFakePORepo() *fakePORepo {
	return &fakePORepo{
		orders: make(map[id.ID]*PurchaseOrder),
		lines:  make(map[id.ID][]Line),
	}
}

func (r *fakePORepo) Create(_ context.Context, po *PurchaseOrder) error {
	cp := *po
	r.orders[po.ID] = &cp
	return nil
}

func (r *fakePORepo) GetByID(_ context.Context, poID id.ID) (*PurchaseOrder, error) {
	po, ok := r.orders[poID]
	if !ok {
		return nil, apperror.NewNotFound("purchase order", poID)
	}
	cp := *po
	return &cp, nil
}

func (r *fakePORepo) Update(_ context.Context, po *PurchaseOrder) error {
	stored, ok := r.orders[po.ID]
	if !ok {
		return apperror.NewNotFound("purchase order", po.ID)
	}
	if stored.Version != po.Version-1 {
		return apperror.NewConcurrentModification("purchase order", po.ID)
	}
	cp := *po
	r.orders[po.ID] = &cp
	return nil
}

func (r *fakePORepo) SaveLines(_ context.Context, poID id.ID, lines []Line) error {
	r.lines[poID] = append([]Line(nil), lines...)
	return nil
}

func (r *fakePORepo) GetLines(_ context.Context, poID id.ID) ([]Line, error) {
	return append([]Line(nil), r.lines[poID]...), nil
}

func (r *fakePORepo) List(_ context.Context, _ ListFilter) (domain.ListResult[*PurchaseOrder], error) {
	return domain.ListResult[*PurchaseOrder]{}, nil
}

type fakeEventRepo struct {
	events []StatusEvent
}

func (r *fakeEventRepo) Append(_ context.Context, event StatusEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *fakeEventRepo) ListByPurchaseOrder(_ context.Context, poID id.ID) ([]StatusEvent, error) {
	var out []StatusEvent
	for _, e := range r.events {
		if e.PurchaseOrderID == poID {
			out = append(out, e)
		}
	}
	return out, nil
}

func newPOService(repo *fakePORepo, events *fakeEventRepo) *Service {
	return NewService(repo, events, &numerator.MockGenerator{}, &tx.MockManager{})
}

func createdPO(t *testing.T, svc *Service) *PurchaseOrder {
	t.Helper()
	po := NewPurchaseOrder(id.New(), []Line{
		{ProductID: id.New(), Quantity: 10},
		{ProductID: id.New(), Quantity: 5},
	})
	require.NoError(t, svc.Create(context.Background(), po))
	return po
}

func TestCreateAssignsNumberAndLineNumbers(t *testing.T) {
	svc := newPOService(newFakePORepo(), &fakeEventRepo{})
	po := createdPO(t, svc)

	assert.Equal(t, StatusCreated, po.Status)
	assert.Equal(t, "MOCK-2026-00001", po.Number)
	assert.Equal(t, 1, po.Lines[0].LineNo)
	assert.Equal(t, 2, po.Lines[1].LineNo)
}

func TestCreateRejectsInvalidPurchaseOrders(t *testing.T) {
	svc := newPOService(newFakePORepo(), &fakeEventRepo{})
	ctx := context.Background()

	tests := []struct {
		name string
		po   *PurchaseOrder
	}{
		{"missing supplier", NewPurchaseOrder(id.Nil(), []Line{{ProductID: id.New(), Quantity: 1}})},
		{"no lines", NewPurchaseOrder(id.New(), nil)},
		{"zero quantity", NewPurchaseOrder(id.New(), []Line{{ProductID: id.New(), Quantity: 0}})},
		{"missing product", NewPurchaseOrder(id.New(), []Line{{Quantity: 1}})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Create(ctx, tt.po)
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
		})
	}
}

func TestUpdateStatusFollowsTable(t *testing.T) {
	svc := newPOService(newFakePORepo(), &fakeEventRepo{})
	po := createdPO(t, svc)
	ctx := context.Background()

	for _, target := range []Status{StatusApproved, StatusShipped, StatusDelivered, StatusReceived} {
		updated, err := svc.UpdateStatus(ctx, po.ID, target, "")
		require.NoError(t, err, "to %s", target)
		assert.Equal(t, target, updated.Status)
	}

	// RECEIVED is terminal.
	_, err := svc.UpdateStatus(ctx, po.ID, StatusShipped, "")
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidTransition(err))
}

func TestUpdateStatusRejectsSkippedStages(t *testing.T) {
	svc := newPOService(newFakePORepo(), &fakeEventRepo{})
	po := createdPO(t, svc)
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, po.ID, StatusShipped, "")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidTransition, appErr.Code)
	assert.Equal(t, "CREATED", appErr.Details["currentStatus"])
	assert.Equal(t, "SHIPPED", appErr.Details["targetStatus"])

	_, err = svc.UpdateStatus(ctx, po.ID, Status("BOGUS"), "")
	require.Error(t, err)
	appErr, _ = apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestApprovalRequiresLines(t *testing.T) {
	repo := newFakePORepo()
	svc := newPOService(repo, &fakeEventRepo{})
	po := createdPO(t, svc)
	ctx := context.Background()

	// Lines vanish after creation (e.g. a bad import wiped the table part).
	repo.lines[po.ID] = nil

	_, err := svc.UpdateStatus(ctx, po.ID, StatusApproved, "")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeBusinessRule, appErr.Code)
}

func TestCancelGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("from CREATED", func(t *testing.T) {
		svc := newPOService(newFakePORepo(), &fakeEventRepo{})
		po := createdPO(t, svc)
		canceled, err := svc.Cancel(ctx, po.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCanceled, canceled.Status)
	})

	t.Run("from APPROVED", func(t *testing.T) {
		svc := newPOService(newFakePORepo(), &fakeEventRepo{})
		po := createdPO(t, svc)
		_, err := svc.UpdateStatus(ctx, po.ID, StatusApproved, "")
		require.NoError(t, err)
		canceled, err := svc.Cancel(ctx, po.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCanceled, canceled.Status)
	})

	t.Run("from SHIPPED is rejected", func(t *testing.T) {
		svc := newPOService(newFakePORepo(), &fakeEventRepo{})
		po := createdPO(t, svc)
		for _, target := range []Status{StatusApproved, StatusShipped} {
			_, err := svc.UpdateStatus(ctx, po.ID, target, "")
			require.NoError(t, err)
		}
		_, err := svc.Cancel(ctx, po.ID)
		require.Error(t, err)
		assert.True(t, apperror.IsInvalidTransition(err))
	})
}

func TestEditabilityEndsAtApproval(t *testing.T) {
	svc := newPOService(newFakePORepo(), &fakeEventRepo{})
	po := createdPO(t, svc)
	ctx := context.Background()

	// Editable while CREATED.
	newSupplier := id.New()
	updated, err := svc.EditSupplier(ctx, po.ID, newSupplier)
	require.NoError(t, err)
	assert.Equal(t, newSupplier, updated.SupplierID)

	updated, err = svc.EditItems(ctx, po.ID, []Line{{ProductID: id.New(), Quantity: 3}})
	require.NoError(t, err)
	require.Len(t, updated.Lines, 1)
	assert.Equal(t, 1, updated.Lines[0].LineNo)

	_, err = svc.UpdateStatus(ctx, po.ID, StatusApproved, "")
	require.NoError(t, err)

	// Frozen after approval.
	_, err = svc.EditSupplier(ctx, po.ID, id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsNotEditable(err))

	_, err = svc.EditItems(ctx, po.ID, []Line{{ProductID: id.New(), Quantity: 1}})
	require.Error(t, err)
	assert.True(t, apperror.IsNotEditable(err))

	_, err = svc.EditDeliveryDate(ctx, po.ID, time.Now().AddDate(0, 0, 7))
	require.Error(t, err)
	assert.True(t, apperror.IsNotEditable(err))
}

func TestOriginalDeliveryDateSnapshotIsStable(t *testing.T) {
	svc := newPOService(newFakePORepo(), &fakeEventRepo{})
	po := createdPO(t, svc)
	ctx := context.Background()

	first := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	updated, err := svc.EditDeliveryDate(ctx, po.ID, first)
	require.NoError(t, err)
	require.NotNil(t, updated.OriginalDeliveryDate)
	assert.True(t, updated.OriginalDeliveryDate.Equal(first))
	assert.False(t, updated.IsRescheduled())

	second := first.AddDate(0, 0, 5)
	updated, err = svc.EditDeliveryDate(ctx, po.ID, second)
	require.NoError(t, err)
	assert.True(t, updated.OriginalDeliveryDate.Equal(first), "snapshot must not move")
	assert.True(t, updated.DeliveryDate.Equal(second))
	assert.True(t, updated.IsRescheduled())
}

func TestHistoryRecordsStatusAndRescheduleEvents(t *testing.T) {
	events := &fakeEventRepo{}
	svc := newPOService(newFakePORepo(), events)
	po := createdPO(t, svc)
	ctx := context.Background()

	_, err := svc.EditDeliveryDate(ctx, po.ID, time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, po.ID, StatusApproved, "looks good")
	require.NoError(t, err)

	history, err := svc.History(ctx, po.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, EventDeliveryRescheduled, history[0].Kind)
	assert.Nil(t, history[0].FromDate)
	require.NotNil(t, history[0].ToDate)

	assert.Equal(t, EventStatusChanged, history[1].Kind)
	assert.Equal(t, StatusCreated, history[1].FromStatus)
	assert.Equal(t, StatusApproved, history[1].ToStatus)
	assert.Equal(t, "looks good", history[1].Notes)
}

func TestHistoryUnknownPurchaseOrder(t *testing.T) {
	svc := newPOService(newFakePORepo(), &fakeEventRepo{})
	_, err := svc.History(context.Background(), id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
