// Package reqctx implements the per-request Query Execution Context
// (C5): resolved parameters, user, configurables, and a placeholder sink
// that templates and imperative models use instead of string
// interpolation, per spec section 4.5.
package reqctx

import (
	"sync"

	"github.com/forbearing/flowquery/auth"
	"github.com/forbearing/flowquery/parameters"
)

// TextValue wraps free text entered by an end user. It deliberately has
// no String() method and no exported accessor returning a bare string
// from outside this package's trust boundary — callers are forced
// through SetPlaceholder and a bind parameter rather than splicing text
// into SQL, per the placeholder-vs-interpolation design note.
type TextValue struct {
	raw string
}

// NewTextValue constructs a TextValue from trusted input (the HTTP
// layer parsing a request body), the only place raw end-user text should
// ever be read.
func NewTextValue(s string) TextValue { return TextValue{raw: s} }

// Context is the per-request render context threaded through template
// rendering and imperative model execution. It is created once per
// request and discarded at request end, per spec section 3's lifecycle
// invariants.
type Context struct {
	ProjVars      map[string]any
	EnvVars       map[string]any
	Params        *parameters.ParameterSet
	User          auth.User
	Configurables map[string]string

	mu           sync.Mutex
	placeholders map[string]any
}

// New constructs a Context. configurables should already be filtered to
// the names declared by the project, per spec section 4.5.
func New(projVars, envVars map[string]any, params *parameters.ParameterSet, user auth.User, configurables map[string]string) *Context {
	return &Context{
		ProjVars:      projVars,
		EnvVars:       envVars,
		Params:        params,
		User:          user,
		Configurables: configurables,
		placeholders:  make(map[string]any),
	}
}

// SetPlaceholder records value under name for later binding through the
// embedded engine's parameterized-statement mechanism. Safe to call
// concurrently from multiple imperative models.
func (c *Context) SetPlaceholder(name string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.placeholders[name] = value
}

// GetPlaceholderValue returns the bound value for name, if any.
func (c *Context) GetPlaceholderValue(name string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.placeholders[name]
	return v, ok
}

// IsPlaceholder reports whether name has been bound.
func (c *Context) IsPlaceholder(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.placeholders[name]
	return ok
}

// Placeholders returns a snapshot of every bound placeholder, consumed by
// the engine's prepared-statement path at execution time.
func (c *Context) Placeholders() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]any, len(c.placeholders))
	for k, v := range c.placeholders {
		out[k] = v
	}
	return out
}

// ToTemplateVars builds the read-only variable set exposed to SQL
// templates during compilation (C4): proj_vars, env_vars, prms, user,
// ctx, configurables. The ref() hook itself is bound separately by the
// caller per compilation frame, since it must not be global state.
func (c *Context) ToTemplateVars() map[string]any {
	prms := make(map[string]any)
	if c.Params != nil {
		for _, p := range c.Params.Ordered() {
			prms[p.Name()] = p
		}
	}
	return map[string]any{
		"proj_vars":     c.ProjVars,
		"env_vars":      c.EnvVars,
		"prms":          prms,
		"user":          c.User,
		"ctx":           c,
		"configurables": c.Configurables,
	}
}
