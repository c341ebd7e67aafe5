package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"mercato/internal/core/id"
	"mercato/internal/domain/inventory"
)

const stockMovementsTable = "stock_movements"

var stockMovementColumns = []string{"id", "order_id", "product_id", "quantity", "recorded_at"}

// Compile-time check.
var _ inventory.Repository = (*StockMovementRepo)(nil)

// StockMovementRepo is the PostgreSQL implementation of inventory.Repository.
type StockMovementRepo struct {
	txManager *TxManager
	batch     *BatchInserter
}

// NewStockMovementRepo creates a new stock movement repository.
func NewStockMovementRepo(txManager *TxManager) *StockMovementRepo {
	return &StockMovementRepo{
		txManager: txManager,
		batch:     NewBatchInserter(txManager),
	}
}

// RecordMovements batch inserts movements via the COPY protocol.
// Requires an active transaction.
func (r *StockMovementRepo) RecordMovements(ctx context.Context, movements []inventory.Movement) error {
	if len(movements) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(movements))
	for _, m := range movements {
		rows = append(rows, []any{m.ID, m.OrderID, m.ProductID, m.Quantity, m.RecordedAt})
	}

	if _, err := r.batch.CopyFromSlice(ctx, stockMovementsTable, stockMovementColumns, rows); err != nil {
		return fmt.Errorf("copy stock movements: %w", err)
	}

	return nil
}

// GetByOrder returns movements recorded for an order.
func (r *StockMovementRepo) GetByOrder(ctx context.Context, orderID id.ID) ([]inventory.Movement, error) {
	q := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select(stockMovementColumns...).
		From(stockMovementsTable).
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("recorded_at", "id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []inventory.Movement
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("get stock movements: %w", err)
	}

	return movements, nil
}
