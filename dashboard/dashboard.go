// Package dashboard declares the dashboard-rendering capability named
// only by interface: PNG/HTML generation is an explicit Non-goal (spec
// section 1), so the core only owns the parameter-resolution half of a
// dashboard's routes and passes rendering through to this external
// collaborator, per the supplemented-features design in SPEC_FULL.md.
package dashboard

import "context"

// Rendered is the opaque output of rendering one dashboard.
type Rendered struct {
	ContentType string
	Bytes       []byte
}

// Renderer renders a named dashboard's declared content for a given
// selection/configurable set, grounded on the original implementation's
// _dashboards.py / _dashboard_types.py.
type Renderer interface {
	Render(ctx context.Context, dashboardName string, selections, configurables map[string]string) (Rendered, error)
}
