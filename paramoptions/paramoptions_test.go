package paramoptions

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValid_EmptyFiltersNeverExclude(t *testing.T) {
	o := SelectParameterOption{Base: NewBase(nil, nil), ID: "us"}
	assert.True(t, o.IsValid("", nil))
	assert.True(t, o.IsValid("anything", map[string]struct{}{"x": {}}))
}

func TestIsValid_UserGroupFilter(t *testing.T) {
	o := SelectParameterOption{Base: NewBase([]string{"finance", "ops"}, nil), ID: "us"}
	assert.True(t, o.IsValid("finance", nil))
	assert.False(t, o.IsValid("engineering", nil))
	assert.False(t, o.IsValid("", nil))
}

func TestIsValid_ParentIDFilter(t *testing.T) {
	o := SelectParameterOption{Base: NewBase(nil, []string{"US"}), ID: "nyc"}
	assert.True(t, o.IsValid("", map[string]struct{}{"US": {}}))
	assert.False(t, o.IsValid("", map[string]struct{}{"CA": {}}))
	assert.False(t, o.IsValid("", nil))
}

func TestIsValid_BothFiltersMustPass(t *testing.T) {
	o := SelectParameterOption{Base: NewBase([]string{"finance"}, []string{"US"})}
	assert.True(t, o.IsValid("finance", map[string]struct{}{"US": {}}))
	assert.False(t, o.IsValid("finance", map[string]struct{}{"CA": {}}))
	assert.False(t, o.IsValid("engineering", map[string]struct{}{"US": {}}))
}

func TestOnLattice(t *testing.T) {
	o := NumberParameterOption{
		Min:       decimal.NewFromInt(0),
		Max:       decimal.NewFromInt(100),
		Increment: decimal.NewFromInt(5),
	}
	assert.True(t, o.OnLattice(decimal.NewFromInt(25)))
	assert.False(t, o.OnLattice(decimal.NewFromInt(23)))
}

func TestOnLattice_ZeroIncrementAlwaysPasses(t *testing.T) {
	o := NumberParameterOption{Increment: decimal.Zero}
	assert.True(t, o.OnLattice(decimal.NewFromInt(7)))
}

func TestNewBase_NilSlicesYieldEmptyFilters(t *testing.T) {
	b := NewBase(nil, nil)
	require.Empty(t, b.UserGroups)
	require.Empty(t, b.ParentIDs)
}
