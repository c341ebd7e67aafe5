package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercato/internal/core/apperror"
	"mercato/internal/core/id"
	"mercato/internal/core/numerator"
	"mercato/internal/core/tx"
	"mercato/internal/core/types"
	"mercato/internal/domain"
)

// fakeOrderRepo is an in-memory repository honoring the version CAS contract.
type fakeOrderRepo struct {
	orders map[id.ID]*Order
	lines  map[id.ID][]Line

	// updateErr, when set, is returned by the next Update call and cleared.
	updateErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: make(map[id.ID]*Order),
		lines:  make(map[id.ID][]Line),
	}
}

func (r *fakeOrderRepo) Create(_ context.Context, order *Order) error {
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, orderID id.ID) (*Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, apperror.NewNotFound("order", orderID)
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) Update(_ context.Context, order *Order) error {
	if r.updateErr != nil {
		err := r.updateErr
		r.updateErr = nil
		return err
	}
	stored, ok := r.orders[order.ID]
	if !ok {
		return apperror.NewNotFound("order", order.ID)
	}
	// Incoming version is already bumped; the row must hold the previous one.
	if stored.Version != order.Version-1 {
		return apperror.NewConcurrentModification("order", order.ID)
	}
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) SaveLines(_ context.Context, orderID id.ID, lines []Line) error {
	r.lines[orderID] = append([]Line(nil), lines...)
	return nil
}

func (r *fakeOrderRepo) GetLines(_ context.Context, orderID id.ID) ([]Line, error) {
	return append([]Line(nil), r.lines[orderID]...), nil
}

func (r *fakeOrderRepo) List(_ context.Context, _ ListFilter) (domain.ListResult[*Order], error) {
	return domain.ListResult[*Order]{}, nil
}

// recordingAdjuster captures Deduct calls.
type recordingAdjuster struct {
	calls []id.ID
	err   error
}

func (a *recordingAdjuster) Deduct(_ context.Context, orderID id.ID, _ []Line) error {
	a.calls = append(a.calls, orderID)
	return a.err
}

func newTestService(repo *fakeOrderRepo, adjuster InventoryAdjuster) *Service {
	return NewService(repo, adjuster, &numerator.MockGenerator{}, &tx.MockManager{})
}

func placedOrder(t *testing.T, svc *Service) *Order {
	t.Helper()
	order := NewOrder(id.New(), []Line{
		{ProductID: id.New(), Quantity: 2, UnitPrice: types.MustMoney("19.99")},
		{ProductID: id.New(), Quantity: 1, UnitPrice: types.MustMoney("5.00")},
	})
	require.NoError(t, svc.Create(context.Background(), order))
	return order
}

func TestCreateComputesTotalAndNumber(t *testing.T) {
	svc := newTestService(newFakeOrderRepo(), nil)
	order := placedOrder(t, svc)

	assert.Equal(t, StatusPlaced, order.Status)
	assert.Equal(t, "MOCK-2026-00001", order.Number)
	// 2 * 19.99 + 5.00
	assert.True(t, order.TotalAmount.Equal(types.MustMoney("44.98")),
		"total = %s", order.TotalAmount)
	assert.Equal(t, 1, order.Lines[0].LineNo)
	assert.Equal(t, 2, order.Lines[1].LineNo)
}

func TestCreateRejectsInvalidOrders(t *testing.T) {
	svc := newTestService(newFakeOrderRepo(), nil)
	ctx := context.Background()

	err := svc.Create(ctx, NewOrder(id.Nil(), []Line{{ProductID: id.New(), Quantity: 1, UnitPrice: types.MustMoney("1.00")}}))
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	err = svc.Create(ctx, NewOrder(id.New(), nil))
	require.Error(t, err)

	err = svc.Create(ctx, NewOrder(id.New(), []Line{{ProductID: id.New(), Quantity: 0, UnitPrice: types.MustMoney("1.00")}}))
	require.Error(t, err)

	err = svc.Create(ctx, NewOrder(id.New(), []Line{{ProductID: id.New(), Quantity: 1, UnitPrice: types.MustMoney("-0.01")}}))
	require.Error(t, err)
}

func TestTransitionTable(t *testing.T) {
	happyPath := []Status{
		StatusPlaced, StatusProcessing, StatusPicked, StatusPacked,
		StatusReadyToDispatch, StatusShipped, StatusDelivered,
	}

	svc := newTestService(newFakeOrderRepo(), nil)
	order := placedOrder(t, svc)
	ctx := context.Background()

	for _, target := range happyPath[1:] {
		updated, err := svc.Transition(ctx, order.ID, target)
		require.NoError(t, err, "transition to %s", target)
		assert.Equal(t, target, updated.Status)
	}
}

func TestTransitionRejectsUnlistedEdges(t *testing.T) {
	svc := newTestService(newFakeOrderRepo(), nil)
	order := placedOrder(t, svc)
	ctx := context.Background()

	// PLACED -> PACKED skips two stages.
	_, err := svc.Transition(ctx, order.ID, StatusPacked)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidTransition, appErr.Code)
	assert.Equal(t, "PLACED", appErr.Details["currentStatus"])
	assert.Equal(t, "PACKED", appErr.Details["targetStatus"])

	// Backward edge.
	_, err = svc.Transition(ctx, order.ID, StatusPlaced)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidTransition(err))

	// Unknown status.
	_, err = svc.Transition(ctx, order.ID, Status("LOST"))
	require.Error(t, err)
	appErr, _ = apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestCancelFromAnyNonTerminalStatus(t *testing.T) {
	ctx := context.Background()

	stages := [][]Status{
		{},
		{StatusProcessing},
		{StatusProcessing, StatusPicked},
		{StatusProcessing, StatusPicked, StatusPacked},
		{StatusProcessing, StatusPicked, StatusPacked, StatusReadyToDispatch},
		{StatusProcessing, StatusPicked, StatusPacked, StatusReadyToDispatch, StatusShipped},
	}

	for _, path := range stages {
		svc := newTestService(newFakeOrderRepo(), nil)
		order := placedOrder(t, svc)
		for _, target := range path {
			_, err := svc.Transition(ctx, order.ID, target)
			require.NoError(t, err)
		}

		canceled, err := svc.Cancel(ctx, order.ID)
		require.NoError(t, err, "cancel after %v", path)
		assert.Equal(t, StatusCancelled, canceled.Status)

		// Terminal: nothing moves out of CANCELLED.
		_, err = svc.Transition(ctx, order.ID, StatusProcessing)
		require.Error(t, err)
	}
}

func TestDeliveredIsTerminal(t *testing.T) {
	svc := newTestService(newFakeOrderRepo(), nil)
	order := placedOrder(t, svc)
	ctx := context.Background()

	for _, target := range []Status{StatusProcessing, StatusPicked, StatusPacked, StatusReadyToDispatch, StatusShipped, StatusDelivered} {
		_, err := svc.Transition(ctx, order.ID, target)
		require.NoError(t, err)
	}

	_, err := svc.Cancel(ctx, order.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidTransition(err))

	for _, target := range []Status{StatusPlaced, StatusProcessing, StatusShipped} {
		_, err := svc.Transition(ctx, order.ID, target)
		require.Error(t, err, "DELIVERED -> %s must be rejected", target)
	}
}

func TestNamedStageOperations(t *testing.T) {
	svc := newTestService(newFakeOrderRepo(), nil)
	order := placedOrder(t, svc)
	ctx := context.Background()

	updated, err := svc.StartPicking(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, updated.Status)

	updated, err = svc.CompletePicking(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPicked, updated.Status)

	updated, err = svc.StartPacking(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPacked, updated.Status)

	// CompletePacking lands directly on READY_TO_DISPATCH.
	updated, err = svc.CompletePacking(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReadyToDispatch, updated.Status)

	updated, err = svc.ScheduleDelivery(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, updated.Status)
}

func TestNamedStageOperationRejectsWrongStage(t *testing.T) {
	svc := newTestService(newFakeOrderRepo(), nil)
	order := placedOrder(t, svc)
	ctx := context.Background()

	// Order is PLACED; packing cannot start.
	_, err := svc.StartPacking(ctx, order.ID)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidTransition, appErr.Code)
	assert.Equal(t, "PLACED", appErr.Details["currentStatus"])
	assert.Equal(t, "PACKED", appErr.Details["targetStatus"])
	assert.Equal(t, "PICKED", appErr.Details["expectedStatus"])
}

func TestInventoryDeductionFiresOnPickingCompletion(t *testing.T) {
	adjuster := &recordingAdjuster{}
	svc := newTestService(newFakeOrderRepo(), adjuster)
	order := placedOrder(t, svc)
	ctx := context.Background()

	_, err := svc.StartPicking(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, adjuster.calls)

	_, err = svc.CompletePicking(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, adjuster.calls, 1)
	assert.Equal(t, order.ID, adjuster.calls[0])

	// No further deductions down the pipeline.
	_, err = svc.StartPacking(ctx, order.ID)
	require.NoError(t, err)
	_, err = svc.CompletePacking(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, adjuster.calls, 1)
}

func TestInventoryFailureDoesNotRollBackTransition(t *testing.T) {
	adjuster := &recordingAdjuster{err: errors.New("inventory unavailable")}
	svc := newTestService(newFakeOrderRepo(), adjuster)
	order := placedOrder(t, svc)
	ctx := context.Background()

	_, err := svc.StartPicking(ctx, order.ID)
	require.NoError(t, err)

	updated, err := svc.CompletePicking(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPicked, updated.Status)

	stored, err := svc.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPicked, stored.Status)
}

func TestConcurrentTransitionLosesWithConflict(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestService(repo, nil)
	order := placedOrder(t, svc)
	ctx := context.Background()

	// A racing writer commits first; our version CAS write must lose.
	repo.updateErr = apperror.NewConcurrentModification("order", order.ID)

	_, err := svc.Transition(ctx, order.ID, StatusCancelled)
	require.Error(t, err)
	assert.True(t, apperror.IsConcurrentModification(err))

	// The losing call left the stored row untouched.
	stored, err := svc.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPlaced, stored.Status)
}

func TestStatusTableProperties(t *testing.T) {
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusShipped.IsTerminal())
	assert.False(t, Status("LOST").IsValid())

	for _, s := range []Status{StatusPlaced, StatusProcessing, StatusPicked, StatusPacked, StatusReadyToDispatch, StatusShipped} {
		assert.True(t, s.CanTransitionTo(StatusCancelled), "%s -> CANCELLED", s)
	}
	assert.False(t, StatusDelivered.CanTransitionTo(StatusCancelled))
}
