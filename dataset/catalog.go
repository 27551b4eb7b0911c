package dataset

import (
	"context"
	"sort"

	"github.com/forbearing/flowquery/auth"
	"github.com/forbearing/flowquery/dashboard"
	"github.com/forbearing/flowquery/sqlerr"
)

// CatalogItem is one dataset or dashboard visible to the requesting
// user, per the data-catalog supplemented feature in SPEC_FULL.md.
type CatalogItem struct {
	Name        string
	Path        string
	IsDashboard bool
}

// Catalog lists every entry whose scope the user can access, sorted by
// name for deterministic responses.
func (o *Orchestrator) Catalog(ctx context.Context, user auth.User) ([]CatalogItem, error) {
	items := make([]CatalogItem, 0, len(o.Entries))
	for name, e := range o.Entries {
		ok, err := o.Auth.CanUserAccessScope(ctx, user, e.Scope)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		kind := "dataset"
		if e.IsDashboard {
			kind = "dashboard"
		}
		items = append(items, CatalogItem{Name: name, Path: kind + "/" + name, IsDashboard: e.IsDashboard})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

// RenderDashboard delegates to the configured DashboardRenderer after
// the same scope check GetDataset performs, per the supplemented
// dashboard-routes feature.
func (o *Orchestrator) RenderDashboard(ctx context.Context, name string, user auth.User, selections, configurables map[string]string) (dashboard.Rendered, error) {
	e, err := o.entry(name)
	if err != nil {
		return dashboard.Rendered{}, err
	}
	ok, err := o.Auth.CanUserAccessScope(ctx, user, e.Scope)
	if err != nil {
		return dashboard.Rendered{}, err
	}
	if !ok {
		return dashboard.Rendered{}, sqlerr.Forbidden("user does not have access to dashboard %q", name)
	}
	return o.DashboardRenderer.Render(ctx, name, selections, configurables)
}
