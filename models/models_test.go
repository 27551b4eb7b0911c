package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_RejectsDuplicateNames(t *testing.T) {
	_, err := NewRegistry(
		&Config{Name: "orders", Type: TypeSeed},
		&Config{Name: "orders", Type: TypeBuild},
	)
	require.Error(t, err)
}

func TestNewRegistry_GetAndNames(t *testing.T) {
	r, err := NewRegistry(
		&Config{Name: "orders", Type: TypeSeed},
		&Config{Name: "revenue", Type: TypeFederate, QueryFile: SQLQueryFile{Template: "select * from {{ ref('orders') }}"}},
	)
	require.NoError(t, err)

	c, ok := r.Get("revenue")
	require.True(t, ok)
	assert.Equal(t, TypeFederate, c.Type)

	_, ok = r.Get("missing")
	assert.False(t, ok)

	assert.ElementsMatch(t, []string{"orders", "revenue"}, r.Names())
}

func TestQueryFile_Variants(t *testing.T) {
	var qf QueryFile = SQLQueryFile{Template: "select 1"}
	_, isSQL := qf.(SQLQueryFile)
	assert.True(t, isSQL)

	qf = ImperativeQueryFile{}
	_, isImperative := qf.(ImperativeQueryFile)
	assert.True(t, isImperative)
}
