package testsets

import (
	"context"
	"testing"

	"github.com/forbearing/flowquery/auth"
	"github.com/forbearing/flowquery/models"
	"github.com/forbearing/flowquery/paramoptions"
	"github.com/forbearing/flowquery/parameters"
	"github.com/forbearing/flowquery/sqlengine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct{}

func (fakeConn) Register(ctx context.Context, relationName string, t sqlengine.Table) error {
	return nil
}
func (fakeConn) Exec(ctx context.Context, query string) error { return nil }
func (fakeConn) Query(ctx context.Context, query string) (sqlengine.Table, error) {
	return sqlengine.Table{Columns: []sqlengine.Column{{Name: "n"}}, Rows: [][]any{{1}}}, nil
}
func (fakeConn) Close() error { return nil }

func TestUser_DefaultsToAccessUser(t *testing.T) {
	ts := TestSet{Name: "finance-us"}
	u := ts.User()
	assert.Equal(t, auth.AccessUser, u.AccessLevel())
	assert.Equal(t, "testset:finance-us", u.Identity())
}

func TestUser_OverridesAccessLevel(t *testing.T) {
	ts := TestSet{Name: "admin-case", UserAttributes: map[string]any{"access_level": int(auth.AccessAdmin)}}
	u := ts.User()
	assert.Equal(t, auth.AccessAdmin, u.AccessLevel())
}

func TestUser_AttributeLookup(t *testing.T) {
	ts := TestSet{UserAttributes: map[string]any{"group": "finance"}}
	u := ts.User()
	v, ok := u.Attribute("group")
	require.True(t, ok)
	assert.Equal(t, "finance", v)

	_, ok = u.Attribute("missing")
	assert.False(t, ok)
}

func TestRunTestSet_ResolvesAndExecutes(t *testing.T) {
	country := &parameters.SelectParameterConfig{
		NameVal: "country",
		Options: []paramoptions.SelectParameterOption{
			{Base: paramoptions.NewBase(nil, nil), ID: "US", Label: "United States"},
		},
	}
	configs, err := parameters.NewConfigSet(country)
	require.NoError(t, err)

	registry, err := models.NewRegistry(
		&models.Config{Name: "orders", Type: models.TypeSource, Table: "orders"},
	)
	require.NoError(t, err)

	ts := TestSet{Name: "us-case", Selections: map[string]string{"country": "US"}}
	result, err := RunTestSet(context.Background(), ts, configs, registry, "orders", fakeConn{}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.NumRows())
}
