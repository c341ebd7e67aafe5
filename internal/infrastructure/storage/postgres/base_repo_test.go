package postgres

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercato/internal/core/apperror"
	"mercato/internal/core/id"
	"mercato/internal/core/types"
	"mercato/internal/domain/orders"
)

// execRecorder satisfies the active-transaction querier and captures the
// statement an update produces. Only Exec is implemented.
type execRecorder struct {
	pgx.Tx

	sql  string
	args []any
	tag  pgconn.CommandTag
	err  error
}

func (e *execRecorder) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	e.sql = sql
	e.args = args
	return e.tag, e.err
}

func ctxWithRecorder(rec *execRecorder) context.Context {
	return context.WithValue(context.Background(), txKey{}, &Tx{Tx: rec})
}

func transitionedOrder() *orders.Order {
	order := orders.NewOrder(id.New(), []orders.Line{
		{ProductID: id.New(), Quantity: 1, UnitPrice: types.MustMoney("10.00")},
	})
	// The stored row is at version 1; the transition bumps the entity to 2.
	order.SetStatus(orders.StatusProcessing)
	return order
}

func TestUpdateMatchesPreviousVersion(t *testing.T) {
	rec := &execRecorder{tag: pgconn.NewCommandTag("UPDATE 1")}
	repo := NewOrderRepo(NewTxManagerFromRawPool(nil))

	order := transitionedOrder()
	require.Equal(t, 2, order.Version)

	err := repo.Update(ctxWithRecorder(rec), order)
	require.NoError(t, err, "a sequential transition must not conflict")

	assert.True(t, strings.HasPrefix(rec.sql, "UPDATE orders SET"))
	// CAS guard is the last placeholder: the row must still hold the
	// version the entity was read at.
	require.NotEmpty(t, rec.args)
	assert.Equal(t, 1, rec.args[len(rec.args)-1])
	// The bumped version is written, not computed in SQL.
	assert.Contains(t, rec.args, 2)
	assert.NotContains(t, rec.sql, "version + 1")
}

func TestUpdateZeroRowsIsConcurrentModification(t *testing.T) {
	rec := &execRecorder{tag: pgconn.NewCommandTag("UPDATE 0")}
	repo := NewOrderRepo(NewTxManagerFromRawPool(nil))

	err := repo.Update(ctxWithRecorder(rec), transitionedOrder())
	require.Error(t, err)
	assert.True(t, apperror.IsConcurrentModification(err))
}
