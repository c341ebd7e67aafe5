package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercato/internal/core/apperror"
	"mercato/internal/core/id"
	"mercato/internal/core/tx"
	"mercato/internal/core/types"
	"mercato/internal/domain/orders"
)

type fakeMovementRepo struct {
	movements []Movement
}

func (r *fakeMovementRepo) RecordMovements(_ context.Context, movements []Movement) error {
	r.movements = append(r.movements, movements...)
	return nil
}

func (r *fakeMovementRepo) GetByOrder(_ context.Context, orderID id.ID) ([]Movement, error) {
	var out []Movement
	for _, m := range r.movements {
		if m.OrderID == orderID {
			out = append(out, m)
		}
	}
	return out, nil
}

func TestDeductRecordsOneMovementPerLine(t *testing.T) {
	repo := &fakeMovementRepo{}
	svc := NewService(repo, &tx.MockManager{})
	ctx := context.Background()

	orderID := id.New()
	lines := []orders.Line{
		{ProductID: id.New(), Quantity: 3, UnitPrice: types.MustMoney("10.00")},
		{ProductID: id.New(), Quantity: 1, UnitPrice: types.MustMoney("4.50")},
	}

	require.NoError(t, svc.Deduct(ctx, orderID, lines))
	require.Len(t, repo.movements, 2)

	for i, m := range repo.movements {
		assert.Equal(t, orderID, m.OrderID)
		assert.Equal(t, lines[i].ProductID, m.ProductID)
		assert.Equal(t, lines[i].Quantity, m.Quantity)
		assert.False(t, id.IsNil(m.ID))
		assert.False(t, m.RecordedAt.IsZero())
	}

	got, err := svc.GetOrderMovements(ctx, orderID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestDeductEmptyLinesIsNoOp(t *testing.T) {
	repo := &fakeMovementRepo{}
	svc := NewService(repo, &tx.MockManager{})

	require.NoError(t, svc.Deduct(context.Background(), id.New(), nil))
	assert.Empty(t, repo.movements)
}

func TestDeductRejectsNonPositiveQuantity(t *testing.T) {
	repo := &fakeMovementRepo{}
	svc := NewService(repo, &tx.MockManager{})

	err := svc.Deduct(context.Background(), id.New(), []orders.Line{
		{ProductID: id.New(), Quantity: 0},
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Empty(t, repo.movements, "nothing written on validation failure")
}
