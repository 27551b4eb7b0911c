package parameters

import "github.com/forbearing/flowquery/auth"

// ParameterSet is the resolved, ordered mapping from name to Parameter
// produced by one C2 resolution, per spec section 4.2. Order follows the
// original request order, not resolution order.
type ParameterSet struct {
	order  []string
	byName map[string]Parameter
}

func newParameterSet() *ParameterSet {
	return &ParameterSet{byName: make(map[string]Parameter)}
}

func (ps *ParameterSet) set(name string, p Parameter) {
	if _, exists := ps.byName[name]; !exists {
		ps.order = append(ps.order, name)
	}
	ps.byName[name] = p
}

// Get returns the resolved Parameter by name.
func (ps *ParameterSet) Get(name string) (Parameter, bool) {
	p, ok := ps.byName[name]
	return p, ok
}

// Ordered returns every resolved parameter in request order.
func (ps *ParameterSet) Ordered() []Parameter {
	out := make([]Parameter, 0, len(ps.order))
	for _, n := range ps.order {
		out = append(out, ps.byName[n])
	}
	return out
}

// Project restricts the set to the named subset, preserving their
// relative order within this set — used by the dataset orchestrator to
// narrow a full-project resolution down to a dataset's declared
// parameter list (spec section 4.6 step 3).
func (ps *ParameterSet) Project(names []string) *ParameterSet {
	out := newParameterSet()
	for _, n := range names {
		if p, ok := ps.byName[n]; ok {
			out.set(n, p)
		}
	}
	return out
}

// resolveNode resolves name, recursively resolving its parent first if
// needed, and memoizes into resolved. It mutates stack to push newly
// discovered children of a resolved select node, per the original
// implementation's apply_selections.
type resolveState struct {
	configs     *ConfigSet
	selections  map[string]string
	user        auth.User
	resolved    map[string]Parameter
	originalSet map[string]bool
	stack       []string
}

func (rs *resolveState) resolveNode(name string) (Parameter, error) {
	if p, ok := rs.resolved[name]; ok {
		return p, nil
	}
	cfg, ok := rs.configs.Get(name)
	if !ok {
		return Parameter{}, unknownParameterErr(name)
	}

	var parent *Parameter
	if parentName, hasParent := cfg.ParentName(); hasParent {
		p, err := rs.resolveNode(parentName)
		if err != nil {
			return Parameter{}, err
		}
		parent = &p
	}

	raw := rs.selections[name]
	param, err := cfg.WithSelection(raw, rs.user, parent)
	if err != nil {
		return Parameter{}, err
	}
	rs.resolved[name] = param

	if param.Enabled {
		if _, isSelect := cfg.(*SelectParameterConfig); isSelect {
			for _, child := range rs.configs.Children(name) {
				if rs.originalSet[child] {
					rs.stack = append(rs.stack, child)
				}
			}
		}
	}
	return param, nil
}

func unknownParameterErr(name string) error {
	return configErrUnknownParameter(name)
}

// Resolve implements C2 for the plain (non-update) entry points: it
// resolves `required` (or every known name when nil) against selections
// and user, following the stack-based work-list algorithm from the
// original implementation.
func (s *ConfigSet) Resolve(required []string, selections map[string]string, user auth.User) (*ParameterSet, error) {
	if required == nil {
		required = s.Names()
	}
	originalSet := make(map[string]bool, len(required))
	for _, n := range required {
		originalSet[n] = true
	}

	rs := &resolveState{
		configs:     s,
		selections:  selections,
		user:        user,
		resolved:    make(map[string]Parameter),
		originalSet: originalSet,
		stack:       append([]string{}, required...),
	}
	for len(rs.stack) > 0 {
		name := rs.stack[len(rs.stack)-1]
		rs.stack = rs.stack[:len(rs.stack)-1]
		if _, done := rs.resolved[name]; done {
			continue
		}
		if _, err := rs.resolveNode(name); err != nil {
			return nil, err
		}
	}

	out := newParameterSet()
	for _, n := range required {
		if p, ok := rs.resolved[n]; ok {
			out.set(n, p)
		}
	}
	return out, nil
}

// ResolveUpdates implements the "updates on parameter change" endpoint
// (spec section 4.2's parent hint semantics): resolve parentName first,
// then resolve only its direct children. selections may carry at most one
// key; more than one is a client error.
func (s *ConfigSet) ResolveUpdates(parentName string, selections map[string]string, user auth.User) (*ParameterSet, error) {
	if len(selections) > 1 {
		return nil, invalidInputTooManyKeys()
	}
	parentCfg, ok := s.Get(parentName)
	if !ok {
		return nil, unknownParameterErr(parentName)
	}

	raw, present := selections[parentName]
	if !present {
		if sc, isSelect := parentCfg.(*SelectParameterConfig); isSelect && sc.Multi {
			raw = "[]" // explicit empty selection, distinct from "absent -> defaults"
		}
	}

	parentParam, err := parentCfg.WithSelection(raw, user, nil)
	if err != nil {
		return nil, err
	}

	out := newParameterSet()
	out.set(parentName, parentParam)
	for _, childName := range s.Children(parentName) {
		childCfg, ok := s.Get(childName)
		if !ok {
			continue
		}
		childParam, err := childCfg.WithSelection(selections[childName], user, &parentParam)
		if err != nil {
			return nil, err
		}
		out.set(childName, childParam)
	}
	return out, nil
}
