package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/forbearing/flowquery/auth"
	"github.com/forbearing/flowquery/config"
	"github.com/forbearing/flowquery/dashboard"
	"github.com/forbearing/flowquery/dataset"
	"github.com/forbearing/flowquery/models"
	"github.com/forbearing/flowquery/parameters"
	"github.com/forbearing/flowquery/sqlengine"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type allowAllAuth struct{}

func (allowAllAuth) ValidateToken(ctx context.Context, token string) (auth.User, error) {
	return auth.Guest{}, nil
}
func (allowAllAuth) CanUserAccessScope(ctx context.Context, user auth.User, scope string) (bool, error) {
	return true, nil
}

type denyAllAuth struct{ allowAllAuth }

func (denyAllAuth) CanUserAccessScope(ctx context.Context, user auth.User, scope string) (bool, error) {
	return false, nil
}

type fakeConn struct{ tbl sqlengine.Table }

func (c *fakeConn) Register(ctx context.Context, relationName string, t sqlengine.Table) error {
	return nil
}
func (c *fakeConn) Exec(ctx context.Context, query string) error { return nil }
func (c *fakeConn) Query(ctx context.Context, query string) (sqlengine.Table, error) {
	return c.tbl, nil
}
func (c *fakeConn) Close() error { return nil }

type fakeEngine struct{ tbl sqlengine.Table }

func (e *fakeEngine) Open(ctx context.Context) (sqlengine.Connection, error) {
	return &fakeConn{tbl: e.tbl}, nil
}

func newTestHandlers(t *testing.T, authn auth.Authenticator) *Handlers {
	t.Helper()
	require.NoError(t, config.Init())

	registry, err := models.NewRegistry(&models.Config{Name: "orders", Type: models.TypeSource, Table: "orders"})
	require.NoError(t, err)
	configs, err := parameters.NewConfigSet()
	require.NoError(t, err)

	o := &dataset.Orchestrator{
		Entries: map[string]*dataset.Entry{
			"orders": {Name: "orders", TargetModel: "orders", Scope: "sales"},
		},
		Configs:           configs,
		Registry:          registry,
		Engine:            &fakeEngine{tbl: sqlengine.Table{Columns: []sqlengine.Column{{Name: "id"}}, Rows: [][]any{{1}, {2}}}},
		Auth:              authn,
		DashboardRenderer: dashboardStub{},
		MaxRowsOutput:     1000,
	}
	return &Handlers{Orchestrator: o, Configs: configs}
}

type dashboardStub struct{}

func (dashboardStub) Render(ctx context.Context, name string, selections, configurables map[string]string) (dashboard.Rendered, error) {
	return dashboard.Rendered{ContentType: "text/html", Bytes: []byte("ok")}, nil
}

func newCtx(method, url string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, url, nil)
	return c, w
}

func TestDataset_HappyPath(t *testing.T) {
	h := newTestHandlers(t, allowAllAuth{})
	c, w := newCtx(http.MethodGet, "/dataset/orders?x_limit=10")
	c.Params = gin.Params{{Key: "name", Value: "orders"}}

	h.Dataset(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 2, data["total_num_rows"])
}

func TestDataset_ScopeDenied(t *testing.T) {
	h := newTestHandlers(t, denyAllAuth{})
	c, w := newCtx(http.MethodGet, "/dataset/orders")
	c.Params = gin.Params{{Key: "name", Value: "orders"}}

	h.Dataset(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDataset_UnknownName(t *testing.T) {
	h := newTestHandlers(t, allowAllAuth{})
	c, w := newCtx(http.MethodGet, "/dataset/nope")
	c.Params = gin.Params{{Key: "name", Value: "nope"}}

	h.Dataset(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDataset_VerifyParamsShortCircuits(t *testing.T) {
	h := newTestHandlers(t, allowAllAuth{})
	c, w := newCtx(http.MethodGet, "/dataset/orders?x_verify_params=true")
	c.Params = gin.Params{{Key: "name", Value: "orders"}}

	h.Dataset(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	data := body["data"].(map[string]any)
	_, hasParameters := data["parameters"]
	assert.True(t, hasParameters)
}

func TestDataset_InvalidReservedKey(t *testing.T) {
	h := newTestHandlers(t, allowAllAuth{})
	c, w := newCtx(http.MethodGet, "/dataset/orders?x_bogus=1")
	c.Params = gin.Params{{Key: "name", Value: "orders"}}

	h.Dataset(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboard_ReturnsRenderedBytes(t *testing.T) {
	h := newTestHandlers(t, allowAllAuth{})
	c, w := newCtx(http.MethodGet, "/dashboard/orders")
	c.Params = gin.Params{{Key: "name", Value: "orders"}}

	h.Dashboard(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestDataCatalog_ListsAuthorizedEntries(t *testing.T) {
	h := newTestHandlers(t, allowAllAuth{})
	c, w := newCtx(http.MethodGet, "/data-catalog")

	h.DataCatalog(c)

	assert.Equal(t, http.StatusOK, w.Code)
}
