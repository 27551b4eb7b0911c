// Package dataset implements the Dataset/Dashboard Orchestrator (C6):
// the entry point that invokes C2 (parameter resolution) then C4 (DAG
// execution), enforces scope and size limits, and shapes the output per
// spec section 4.6.
package dataset

import (
	"context"

	"github.com/forbearing/flowquery/auth"
	"github.com/forbearing/flowquery/cache"
	"github.com/forbearing/flowquery/dag"
	"github.com/forbearing/flowquery/dashboard"
	"github.com/forbearing/flowquery/models"
	"github.com/forbearing/flowquery/parameters"
	"github.com/forbearing/flowquery/reqctx"
	"github.com/forbearing/flowquery/sqlengine"
	"github.com/forbearing/flowquery/sqlerr"
)

// Entry is one declared dataset or dashboard: the model it targets (for
// dashboards, the model backing its parameter set), its authorization
// scope, and the subset of project parameters it exposes.
type Entry struct {
	Name           string
	TargetModel    string
	Scope          string
	ParameterNames []string // nil: expose every project parameter
	IsDashboard    bool
}

// Orchestrator wires together every collaborator GetDataset needs.
type Orchestrator struct {
	Entries  map[string]*Entry
	Configs  *parameters.ConfigSet
	Registry *models.Registry
	Engine   sqlengine.Engine
	Auth     auth.Authenticator

	ParamCache  *cache.Cache[string, *parameters.ParameterSet]
	ResultCache *cache.Cache[string, sqlengine.Table]

	DashboardRenderer dashboard.Renderer

	MaxRowsOutput int
	DefaultLimit  int
	MaxLimit      int
	DatalakePath  string
	NoCache       bool

	ProjVars map[string]any
	EnvVars  map[string]any
}

// RenderOptions carries the reserved x_ query keys from spec section 6
// that shape output without affecting the cache key.
type RenderOptions struct {
	Orientation Orientation
	Offset      int
	Limit       int
	PostSQL     string
	Select      []string
}

func (o *Orchestrator) entry(name string) (*Entry, error) {
	e, ok := o.Entries[name]
	if !ok {
		return nil, sqlerr.InvalidInput("unknown dataset or dashboard %q", name)
	}
	return e, nil
}

// ResolveParameters resolves the named entry's declared parameters
// (spec section 4.6 step 3): the full project config set is resolved,
// then projected down to the entry's declared subset, if any.
func (o *Orchestrator) ResolveParameters(ctx context.Context, name string, user auth.User, selections map[string]string) (*parameters.ParameterSet, error) {
	e, err := o.entry(name)
	if err != nil {
		return nil, err
	}
	return o.resolveParametersCached(e, user, selections)
}

// ResolveParameterUpdates implements the x_parent_param "updates" mode.
func (o *Orchestrator) ResolveParameterUpdates(ctx context.Context, parentName string, user auth.User, selections map[string]string) (*parameters.ParameterSet, error) {
	return o.Configs.ResolveUpdates(parentName, selections, user)
}

func (o *Orchestrator) resolveParametersCached(e *Entry, user auth.User, selections map[string]string) (*parameters.ParameterSet, error) {
	tuple := cache.SelectionTuple{
		EntityType:   "parameters",
		EntityName:   e.Name,
		UserIdentity: userIdentity(user),
		Selections:   selections,
	}
	compute := func() (*parameters.ParameterSet, error) {
		full, err := o.Configs.Resolve(nil, selections, user)
		if err != nil {
			return nil, err
		}
		if e.ParameterNames != nil {
			return full.Project(e.ParameterNames), nil
		}
		return full, nil
	}
	if o.NoCache || o.ParamCache == nil {
		return compute()
	}
	return o.ParamCache.GetOrCompute(tuple.Key(), compute)
}

func userIdentity(user auth.User) string {
	if user == nil {
		return auth.Guest{}.Identity()
	}
	return user.Identity()
}

// GetDataset implements C6's main entry point, per spec section 4.6.
func (o *Orchestrator) GetDataset(ctx context.Context, name string, user auth.User, selections, configurables map[string]string, opts RenderOptions) (*Result, error) {
	e, err := o.entry(name)
	if err != nil {
		return nil, err
	}
	if e.IsDashboard {
		return nil, sqlerr.InvalidInput("%q is a dashboard; use RenderDashboard", name)
	}

	ok, err := o.Auth.CanUserAccessScope(ctx, user, e.Scope)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, sqlerr.Forbidden("user does not have access to dataset %q", name)
	}

	params, err := o.resolveParametersCached(e, user, selections)
	if err != nil {
		return nil, err
	}

	resultTuple := cache.SelectionTuple{
		EntityType:    "dataset_result",
		EntityName:    name,
		UserIdentity:  userIdentity(user),
		Selections:    selections,
		Configurables: configurables,
	}
	compute := func() (sqlengine.Table, error) {
		return o.execute(ctx, e, params, user, configurables)
	}
	var rawTable sqlengine.Table
	if o.NoCache || o.ResultCache == nil {
		rawTable, err = compute()
	} else {
		rawTable, err = o.ResultCache.GetOrCompute(resultTuple.Key(), compute)
	}
	if err != nil {
		return nil, err
	}

	finalTable := rawTable
	if opts.PostSQL != "" {
		finalTable, err = o.applyPostSQL(ctx, rawTable, opts.PostSQL)
		if err != nil {
			return nil, err
		}
	}
	if len(finalTable.Rows) > o.MaxRowsOutput {
		return nil, sqlerr.DatasetResultTooLarge(len(finalTable.Rows), o.MaxRowsOutput)
	}

	modelConfig, _ := o.Registry.Get(e.TargetModel)
	return NewResult(finalTable, modelConfig), nil
}

func (o *Orchestrator) execute(ctx context.Context, e *Entry, params *parameters.ParameterSet, user auth.User, configurables map[string]string) (sqlengine.Table, error) {
	conn, err := o.Engine.Open(ctx)
	if err != nil {
		return sqlengine.Table{}, err
	}
	defer conn.Close()

	rc := reqctx.New(o.ProjVars, o.EnvVars, params, user, configurables)
	d, err := dag.Build(ctx, e.TargetModel, o.Registry, rc, o.DatalakePath)
	if err != nil {
		return sqlengine.Table{}, err
	}
	if err := d.Execute(ctx, conn); err != nil {
		return sqlengine.Table{}, err
	}
	result, _ := d.Result(e.TargetModel)
	return result, nil
}

func (o *Orchestrator) applyPostSQL(ctx context.Context, base sqlengine.Table, postSQL string) (sqlengine.Table, error) {
	conn, err := o.Engine.Open(ctx)
	if err != nil {
		return sqlengine.Table{}, err
	}
	defer conn.Close()
	if err := conn.Register(ctx, "result", base); err != nil {
		return sqlengine.Table{}, err
	}
	return conn.Query(ctx, postSQL)
}
