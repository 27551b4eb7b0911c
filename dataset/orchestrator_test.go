package dataset

import (
	"context"
	"testing"
	"time"

	"github.com/forbearing/flowquery/auth"
	"github.com/forbearing/flowquery/cache"
	"github.com/forbearing/flowquery/dashboard"
	"github.com/forbearing/flowquery/models"
	"github.com/forbearing/flowquery/parameters"
	"github.com/forbearing/flowquery/sqlengine"
	"github.com/forbearing/flowquery/sqlerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scopeAuth struct {
	allowed map[string]bool
}

func (a scopeAuth) ValidateToken(ctx context.Context, token string) (auth.User, error) {
	return auth.Guest{}, nil
}

func (a scopeAuth) CanUserAccessScope(ctx context.Context, user auth.User, scope string) (bool, error) {
	if a.allowed == nil {
		return true, nil
	}
	return a.allowed[scope], nil
}

type fakeConn struct{ seedTable sqlengine.Table }

func (c *fakeConn) Register(ctx context.Context, relationName string, t sqlengine.Table) error {
	return nil
}
func (c *fakeConn) Exec(ctx context.Context, query string) error { return nil }
func (c *fakeConn) Query(ctx context.Context, query string) (sqlengine.Table, error) {
	return c.seedTable, nil
}
func (c *fakeConn) Close() error { return nil }

type fakeEngine struct {
	seedTable sqlengine.Table
	opens     int
}

func (e *fakeEngine) Open(ctx context.Context) (sqlengine.Connection, error) {
	e.opens++
	return &fakeConn{seedTable: e.seedTable}, nil
}

type fakeRenderer struct{}

func (fakeRenderer) Render(ctx context.Context, name string, selections, configurables map[string]string) (dashboard.Rendered, error) {
	return dashboard.Rendered{ContentType: "text/html", Bytes: []byte("<html/>")}, nil
}

func newTestOrchestrator(t *testing.T, scopes map[string]bool) (*Orchestrator, *fakeEngine) {
	t.Helper()
	registry, err := models.NewRegistry(
		&models.Config{Name: "orders", Type: models.TypeSource, Table: "orders"},
	)
	require.NoError(t, err)

	configs, err := parameters.NewConfigSet()
	require.NoError(t, err)

	engine := &fakeEngine{seedTable: sqlengine.Table{
		Columns: []sqlengine.Column{{Name: "id"}, {Name: "amount"}},
		Rows:    [][]any{{1, 10}, {2, 20}},
	}}

	o := &Orchestrator{
		Entries: map[string]*Entry{
			"orders": {Name: "orders", TargetModel: "orders", Scope: "sales"},
			"board":  {Name: "board", TargetModel: "orders", Scope: "sales", IsDashboard: true},
		},
		Configs:           configs,
		Registry:          registry,
		Engine:            engine,
		Auth:              scopeAuth{allowed: scopes},
		ParamCache:        cache.New[string, *parameters.ParameterSet](10, time.Minute, func(k string) string { return k }),
		ResultCache:       cache.New[string, sqlengine.Table](10, time.Minute, func(k string) string { return k }),
		DashboardRenderer: fakeRenderer{},
		MaxRowsOutput:     1000,
	}
	return o, engine
}

func TestGetDataset_HappyPath(t *testing.T) {
	o, engine := newTestOrchestrator(t, map[string]bool{"sales": true})
	res, err := o.GetDataset(context.Background(), "orders", auth.Guest{}, nil, nil, RenderOptions{Orientation: OrientationRecords, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalNumRows())
	assert.Equal(t, 1, engine.opens)
}

func TestGetDataset_CachesRawResult(t *testing.T) {
	o, engine := newTestOrchestrator(t, map[string]bool{"sales": true})
	_, err := o.GetDataset(context.Background(), "orders", auth.Guest{}, nil, nil, RenderOptions{})
	require.NoError(t, err)
	_, err = o.GetDataset(context.Background(), "orders", auth.Guest{}, nil, nil, RenderOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, engine.opens)
}

func TestGetDataset_ScopeDenied(t *testing.T) {
	o, _ := newTestOrchestrator(t, map[string]bool{"sales": false})
	_, err := o.GetDataset(context.Background(), "orders", auth.Guest{}, nil, nil, RenderOptions{})
	require.Error(t, err)
	se, ok := sqlerr.As(err)
	require.True(t, ok)
	assert.Equal(t, sqlerr.KindForbidden, se.Kind)
}

func TestGetDataset_UnknownEntry(t *testing.T) {
	o, _ := newTestOrchestrator(t, nil)
	_, err := o.GetDataset(context.Background(), "nope", auth.Guest{}, nil, nil, RenderOptions{})
	require.Error(t, err)
	se, ok := sqlerr.As(err)
	require.True(t, ok)
	assert.Equal(t, sqlerr.KindInvalidInput, se.Kind)
}

func TestGetDataset_DashboardRejected(t *testing.T) {
	o, _ := newTestOrchestrator(t, map[string]bool{"sales": true})
	_, err := o.GetDataset(context.Background(), "board", auth.Guest{}, nil, nil, RenderOptions{})
	require.Error(t, err)
}

func TestGetDataset_RowCapExceeded(t *testing.T) {
	o, _ := newTestOrchestrator(t, map[string]bool{"sales": true})
	o.MaxRowsOutput = 1
	_, err := o.GetDataset(context.Background(), "orders", auth.Guest{}, nil, nil, RenderOptions{})
	require.Error(t, err)
	se, ok := sqlerr.As(err)
	require.True(t, ok)
	assert.Equal(t, sqlerr.KindDatasetResultTooLarge, se.Kind)
}

func TestCatalog_FiltersUnauthorizedScopes(t *testing.T) {
	o, _ := newTestOrchestrator(t, map[string]bool{"sales": false})
	items, err := o.Catalog(context.Background(), auth.Guest{})
	require.NoError(t, err)
	assert.Empty(t, items)

	o2, _ := newTestOrchestrator(t, map[string]bool{"sales": true})
	items, err = o2.Catalog(context.Background(), auth.Guest{})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "board", items[0].Name)
	assert.Equal(t, "orders", items[1].Name)
}

func TestRenderDashboard_Delegates(t *testing.T) {
	o, _ := newTestOrchestrator(t, map[string]bool{"sales": true})
	rendered, err := o.RenderDashboard(context.Background(), "board", auth.Guest{}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "text/html", rendered.ContentType)
}

func TestRenderDashboard_ScopeDenied(t *testing.T) {
	o, _ := newTestOrchestrator(t, map[string]bool{"sales": false})
	_, err := o.RenderDashboard(context.Background(), "board", auth.Guest{}, nil, nil)
	require.Error(t, err)
	se, ok := sqlerr.As(err)
	require.True(t, ok)
	assert.Equal(t, sqlerr.KindForbidden, se.Kind)
}
