package dag

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/forbearing/flowquery/logger"
	"github.com/forbearing/flowquery/models"
	"github.com/forbearing/flowquery/sqlengine"
	"github.com/forbearing/flowquery/sqlerr"
	"golang.org/x/sync/errgroup"
)

// execState carries the mutable scheduling state for one Execute call,
// kept separate from Node so a DAG could in principle be re-executed
// (not currently done, but keeps Node's shape stable).
type execState struct {
	conn      sqlengine.Connection
	writeMu   sync.Mutex // serializes engine writes (Register/Exec), per spec section 4.4
	waitCount map[string]*atomic.Int32
	g         *errgroup.Group
}

// Execute runs every node in the DAG's closure to completion, dispatching
// runnable nodes concurrently as their upstream counters reach zero, per
// spec section 4.4. The embedded engine connection is request-scoped;
// Execute never closes it — callers own that via Build's caller.
func (d *DAG) Execute(ctx context.Context, conn sqlengine.Connection) error {
	g, gctx := errgroup.WithContext(ctx)
	es := &execState{
		conn:      conn,
		waitCount: make(map[string]*atomic.Int32, len(d.Nodes)),
		g:         g,
	}
	for name, n := range d.Nodes {
		c := &atomic.Int32{}
		c.Store(int32(len(n.Upstreams)))
		es.waitCount[name] = c
	}

	for _, n := range d.Roots() {
		n := n
		g.Go(func() error { return d.runAndTrigger(gctx, es, n) })
	}

	return g.Wait()
}

func (d *DAG) runAndTrigger(ctx context.Context, es *execState, n *Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.runNode(ctx, es, n); err != nil {
		logger.DAG.Errorw("model execution failed", "model", n.Name, "error", err)
		return err
	}
	for down := range n.Downstreams {
		downNode := d.Nodes[down]
		if es.waitCount[down].Add(-1) == 0 {
			downNode := downNode
			es.g.Go(func() error { return d.runAndTrigger(ctx, es, downNode) })
		}
	}
	return nil
}

func (d *DAG) runNode(ctx context.Context, es *execState, n *Node) error {
	var result sqlengine.Table
	var err error

	switch n.Config.Type {
	case models.TypeSeed:
		if n.Config.Seed != nil {
			result = *n.Config.Seed
		}
		if n.NeedsEngineTable {
			err = es.registerLocked(ctx, n.Name, result)
		}

	case models.TypeSource:
		query := n.CompiledQuery
		if query == "" {
			query = "SELECT * FROM " + n.Config.Table
		}
		result, err = es.conn.Query(ctx, query)
		if err == nil && n.NeedsEngineTable {
			err = es.registerLocked(ctx, n.Name, result)
		}

	case models.TypeDbview:
		result, err = es.conn.Query(ctx, n.CompiledQuery)
		if err == nil && n.NeedsEngineTable {
			err = es.registerLocked(ctx, n.Name, result)
		}

	case models.TypeFederate:
		qf, _ := n.Config.QueryFile.(models.SQLQueryFile)
		err = es.execLocked(ctx, federateDDL(n.Name, n.CompiledQuery, qf.AsView))
		if err == nil && n.NeedsHostDataframe {
			result, err = es.conn.Query(ctx, "SELECT * FROM "+n.Name)
		}

	case models.TypeBuild:
		qf, ok := n.Config.QueryFile.(models.ImperativeQueryFile)
		if !ok || qf.Run == nil {
			return sqlerr.ConfigurationError("build model %q has no Run callable", n.Name)
		}
		result, err = qf.Run(ctx)
		if err == nil && n.NeedsEngineTable {
			err = es.registerLocked(ctx, n.Name, result)
		}

	default:
		return sqlerr.ConfigurationError("model %q has an unrecognized model type", n.Name)
	}

	if err != nil {
		return sqlerr.ExecutionError(n.Name, err)
	}

	n.mu.Lock()
	n.result = result
	n.resultSet = true
	n.mu.Unlock()
	return nil
}

func federateDDL(name, query string, asView bool) string {
	kind := "TABLE"
	if asView {
		kind = "VIEW"
	}
	return "CREATE " + kind + " " + name + " AS " + query
}

func (es *execState) registerLocked(ctx context.Context, name string, t sqlengine.Table) error {
	es.writeMu.Lock()
	defer es.writeMu.Unlock()
	return es.conn.Register(ctx, name, t)
}

func (es *execState) execLocked(ctx context.Context, query string) error {
	es.writeMu.Lock()
	defer es.writeMu.Unlock()
	return es.conn.Exec(ctx, query)
}

// Result returns the materialized host-side value for a completed node.
func (d *DAG) Result(name string) (sqlengine.Table, bool) {
	n, ok := d.Nodes[name]
	if !ok {
		return sqlengine.Table{}, false
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.result, n.resultSet
}
