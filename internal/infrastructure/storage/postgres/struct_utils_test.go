package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercato/internal/domain/orders"
	"mercato/internal/domain/purchasing"
)

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[orders.Order]()

	// Embedded BaseDocument columns come through
	assert.Contains(t, cols, "id")
	assert.Contains(t, cols, "version")
	assert.Contains(t, cols, "created_at")
	assert.Contains(t, cols, "updated_at")

	// Own columns
	assert.Contains(t, cols, "number")
	assert.Contains(t, cols, "customer_id")
	assert.Contains(t, cols, "status")
	assert.Contains(t, cols, "total_amount")

	// db:"-" fields are skipped
	assert.NotContains(t, cols, "-")
	assert.NotContains(t, cols, "lines")
}

func TestStructToMap(t *testing.T) {
	po := &purchasing.PurchaseOrder{}
	po.Number = "PO-2026-00042"
	po.Status = purchasing.StatusCreated
	po.Version = 3

	data := StructToMap(po)
	require.NotEmpty(t, data)

	assert.Equal(t, "PO-2026-00042", data["number"])
	assert.Equal(t, purchasing.StatusCreated, data["status"])
	assert.Equal(t, 3, data["version"])

	// Lines carry db:"-" and must not leak into the map
	_, ok := data["lines"]
	assert.False(t, ok)
}

func TestStructToMapNonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
	assert.Nil(t, StructToMap("hello"))
}
