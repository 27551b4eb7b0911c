// Package project wires together the collaborators a running flowquery
// project needs: the parameter config set, the model registry, the
// dataset orchestrator, and its two caches. Route registration itself is
// the embedding HTTP framework's responsibility (spec section 1
// Non-goals); this package stops at constructing the handlers.Handlers
// the embedder mounts.
package project

import (
	"github.com/forbearing/flowquery/auth"
	"github.com/forbearing/flowquery/cache"
	"github.com/forbearing/flowquery/config"
	"github.com/forbearing/flowquery/dashboard"
	"github.com/forbearing/flowquery/dataset"
	"github.com/forbearing/flowquery/handlers"
	"github.com/forbearing/flowquery/models"
	"github.com/forbearing/flowquery/parameters"
	"github.com/forbearing/flowquery/sqlengine"
)

// Project is the fully-wired, ready-to-serve instance of one analytics
// project: its parameter configs, model registry, and orchestrator.
type Project struct {
	Configs      *parameters.ConfigSet
	Registry     *models.Registry
	Orchestrator *dataset.Orchestrator
	Handlers     *handlers.Handlers
}

// Options collects the external collaborators and declared entries the
// embedding application supplies — the inputs a project loader would
// otherwise read from a project directory (spec section 1 treats the
// project directory as out of scope; this is its in-memory equivalent).
type Options struct {
	ParameterConfigs []parameters.ParameterConfig
	ModelConfigs     []*models.Config
	Entries          []*dataset.Entry

	Engine            sqlengine.Engine
	Authenticator     auth.Authenticator
	DashboardRenderer dashboard.Renderer

	ProjVars map[string]any
	EnvVars  map[string]any
}

// New builds a Project from Options, applying config.App's cache/limits
// sections, per spec section 4.7.
func New(opts Options) (*Project, error) {
	configs, err := parameters.NewConfigSet(opts.ParameterConfigs...)
	if err != nil {
		return nil, err
	}
	registry, err := models.NewRegistry(opts.ModelConfigs...)
	if err != nil {
		return nil, err
	}

	entries := make(map[string]*dataset.Entry, len(opts.Entries))
	for _, e := range opts.Entries {
		entries[e.Name] = e
	}

	paramCache := cache.New[string, *parameters.ParameterSet](
		config.App.Cache.ParametersSize, config.App.Cache.ParametersTTL, identityKey)
	resultCache := cache.New[string, sqlengine.Table](
		config.App.Cache.ResultsSize, config.App.Cache.ResultsTTL, identityKey)

	orch := &dataset.Orchestrator{
		Entries:           entries,
		Configs:           configs,
		Registry:          registry,
		Engine:            opts.Engine,
		Auth:              opts.Authenticator,
		ParamCache:        paramCache,
		ResultCache:       resultCache,
		DashboardRenderer: opts.DashboardRenderer,
		MaxRowsOutput:     config.App.Limits.MaxRowsOutput,
		DefaultLimit:      config.App.Limits.DefaultLimit,
		MaxLimit:          config.App.Limits.MaxLimit,
		DatalakePath:      config.App.Engine.DatalakePath,
		NoCache:           config.App.Server.NoCache,
		ProjVars:          opts.ProjVars,
		EnvVars:           opts.EnvVars,
	}

	return &Project{
		Configs:      configs,
		Registry:     registry,
		Orchestrator: orch,
		Handlers:     &handlers.Handlers{Orchestrator: orch, Configs: configs},
	}, nil
}

func identityKey(k string) string { return k }
