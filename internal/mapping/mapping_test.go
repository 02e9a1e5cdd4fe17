package mapping

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModel(t *testing.T) {
	ctx := context.Background()
	m := NewModel(
		&Table{Name: "orders", Columns: []string{"id"}, PrimaryKey: &PrimaryKey{Name: "PK_ORDERS", Columns: []string{"id"}}},
		&Table{Name: "audit_log", Columns: []string{"message"}},
	)

	names, err := m.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"audit_log", "orders"}, names)

	orders, err := m.LookupTable(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, "PK_ORDERS", orders.PrimaryKey.Name)

	_, err = m.LookupTable(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTableNotFound))
	assert.Contains(t, err.Error(), "missing")
}

func TestModelAddReplaces(t *testing.T) {
	m := NewModel(&Table{Name: "orders"})
	m.Add(&Table{Name: "orders", Columns: []string{"id", "total"}})

	orders, err := m.LookupTable(context.Background(), "orders")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "total"}, orders.Columns)
}
