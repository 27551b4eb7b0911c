package dag

import (
	"context"

	"github.com/forbearing/flowquery/models"
	"github.com/forbearing/flowquery/reqctx"
	"github.com/forbearing/flowquery/sqlerr"
)

// DAG is the compiled, per-request dependency graph rooted at Target.
// Its Nodes are owned by the DAG and discarded at request end, per spec
// section 3's lifecycle invariant.
type DAG struct {
	Target       string
	Nodes        map[string]*Node
	Registry     *models.Registry
	DatalakePath string

	visited map[string]struct{}
}

// Build compiles the transitive closure of target's dependencies,
// propagating materialization needs and validating acyclicity, per spec
// section 4.4.
func Build(ctx context.Context, target string, registry *models.Registry, rc *reqctx.Context, datalakePath string) (*DAG, error) {
	d := &DAG{Target: target, Nodes: make(map[string]*Node), Registry: registry, DatalakePath: datalakePath, visited: make(map[string]struct{})}
	if err := d.visit(ctx, target, rc); err != nil {
		return nil, err
	}
	target_, ok := d.Nodes[target]
	if !ok {
		return nil, sqlerr.ConfigurationError("target model %q not found", target)
	}
	target_.IsTarget = true
	target_.NeedsHostDataframe = true

	if err := d.validateNoCycles(target); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *DAG) getOrCreate(name string) (*Node, error) {
	if n, ok := d.Nodes[name]; ok {
		return n, nil
	}
	cfg, ok := d.Registry.Get(name)
	if !ok {
		return nil, sqlerr.ConfigurationError("model %q references unknown dependency", name)
	}
	n := newNode(name, cfg)
	d.Nodes[name] = n
	return n, nil
}

func (d *DAG) visit(ctx context.Context, name string, rc *reqctx.Context) error {
	if _, ok := d.visited[name]; ok {
		// Already expanded on this or another path; edges into it were
		// linked by the caller. Re-descending here would recurse forever
		// on a cycle, which validateNoCycles reports properly afterward.
		return nil
	}
	d.visited[name] = struct{}{}

	n, err := d.getOrCreate(name)
	if err != nil {
		return err
	}
	deps, err := compileNode(ctx, n, rc)
	if err != nil {
		return err
	}

	isSQL := isSQLModel(n)
	for _, dep := range deps {
		depNode, err := d.getOrCreate(dep)
		if err != nil {
			return err
		}
		n.addUpstream(dep)
		depNode.addDownstream(name)
		if isSQL {
			depNode.NeedsEngineTable = true
		} else {
			depNode.NeedsHostDataframe = true
		}
		if err := d.visit(ctx, dep, rc); err != nil {
			return err
		}
	}
	return nil
}

func isSQLModel(n *Node) bool {
	_, ok := n.Config.QueryFile.(models.SQLQueryFile)
	return ok
}

// Roots returns the zero-upstream terminal set execution starts from,
// per spec section 4.4.
func (d *DAG) Roots() []*Node {
	var roots []*Node
	for _, n := range d.Nodes {
		if len(n.Upstreams) == 0 {
			roots = append(roots, n)
		}
	}
	return roots
}
