package parameters

import (
	"github.com/forbearing/flowquery/paramoptions"
	"github.com/forbearing/flowquery/sqlerr"
)

// ConfigSet holds every known ParameterConfig by name, immutable after
// Validate succeeds — the project-load-time singleton described in spec
// section 3's lifecycle invariants.
type ConfigSet struct {
	byName   map[string]ParameterConfig
	children map[string][]string
}

// NewConfigSet builds and validates a ConfigSet, wiring trigger_refresh
// flags and checking the parent-relationship invariants from spec
// section 3/4.1.
func NewConfigSet(configs ...ParameterConfig) (*ConfigSet, error) {
	s := &ConfigSet{
		byName:   make(map[string]ParameterConfig, len(configs)),
		children: make(map[string][]string),
	}
	for _, c := range configs {
		if _, dup := s.byName[c.Name()]; dup {
			return nil, sqlerr.ConfigurationError("duplicate parameter name %q", c.Name())
		}
		s.byName[c.Name()] = c
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ConfigSet) validate() error {
	for _, c := range s.byName {
		parentName, hasParent := c.ParentName()
		if !hasParent {
			continue
		}
		parent, ok := s.byName[parentName]
		if !ok {
			return sqlerr.ConfigurationError("parameter %q declares unknown parent %q", c.Name(), parentName)
		}
		sc, isSelect := parent.(*SelectParameterConfig)
		if !isSelect {
			return sqlerr.ConfigurationError("parameter %q has non-select parent %q", c.Name(), parentName)
		}
		if _, childIsSelect := c.(*SelectParameterConfig); !childIsSelect {
			if sc.Multi {
				return sqlerr.ConfigurationError("only single-select parents may parent non-select child %q", c.Name())
			}
			if err := validateOptionKeyDisjointness(c); err != nil {
				return err
			}
		}
		sc.SetTriggerRefresh()
		s.children[parentName] = append(s.children[parentName], c.Name())
	}
	return nil
}

// validateOptionKeyDisjointness enforces that a non-select child's
// options don't reuse the same (parent-id, user-group) key: each such
// key must select at most one option, or resolution against that key
// would be ambiguous.
func validateOptionKeyDisjointness(c ParameterConfig) error {
	seen := make(map[string]struct{})
	for _, b := range optionBases(c) {
		for _, key := range lookupKeys(b) {
			if _, dup := seen[key]; dup {
				return sqlerr.ConfigurationError(
					"parameter %q has options that reuse the same parent option id (per user group)", c.Name())
			}
			seen[key] = struct{}{}
		}
	}
	return nil
}

// lookupKeys mirrors the original's lookup key derivation: a cartesian
// product of parent ids and user groups when the option declares user
// groups, otherwise just the parent ids.
func lookupKeys(b paramoptions.Base) []string {
	if len(b.UserGroups) == 0 {
		keys := make([]string, 0, len(b.ParentIDs))
		for id := range b.ParentIDs {
			keys = append(keys, id)
		}
		return keys
	}
	keys := make([]string, 0, len(b.ParentIDs)*len(b.UserGroups))
	for id := range b.ParentIDs {
		for g := range b.UserGroups {
			keys = append(keys, id+"\x00"+g)
		}
	}
	return keys
}

// optionBases extracts the shared Base filters from a non-select
// config's options, regardless of widget variant.
func optionBases(c ParameterConfig) []paramoptions.Base {
	switch cfg := c.(type) {
	case *DateParameterConfig:
		bases := make([]paramoptions.Base, len(cfg.Options))
		for i, o := range cfg.Options {
			bases[i] = o.Base
		}
		return bases
	case *DateRangeParameterConfig:
		bases := make([]paramoptions.Base, len(cfg.Options))
		for i, o := range cfg.Options {
			bases[i] = o.Base
		}
		return bases
	case *NumberParameterConfig:
		bases := make([]paramoptions.Base, len(cfg.Options))
		for i, o := range cfg.Options {
			bases[i] = o.Base
		}
		return bases
	case *NumberRangeParameterConfig:
		bases := make([]paramoptions.Base, len(cfg.Options))
		for i, o := range cfg.Options {
			bases[i] = o.Base
		}
		return bases
	case *TextParameterConfig:
		bases := make([]paramoptions.Base, len(cfg.Options))
		for i, o := range cfg.Options {
			bases[i] = o.Base
		}
		return bases
	default:
		return nil
	}
}

// Get returns the named config.
func (s *ConfigSet) Get(name string) (ParameterConfig, bool) {
	c, ok := s.byName[name]
	return c, ok
}

// Names returns every known parameter name, in no particular order; C2
// uses this when the caller requests "all".
func (s *ConfigSet) Names() []string {
	names := make([]string, 0, len(s.byName))
	for n := range s.byName {
		names = append(names, n)
	}
	return names
}

// Children returns the direct dependents of a select parameter, per
// spec section 4.1's post-load registration.
func (s *ConfigSet) Children(name string) []string {
	return s.children[name]
}
