// Package dag implements the model DAG builder and executor (C4), the
// hard core of the system: template compilation, acyclicity validation,
// and concurrent topological execution against a single embedded engine
// connection, grounded on the original implementation's _models.py.
package dag

import (
	"sync"

	"github.com/forbearing/flowquery/models"
	"github.com/forbearing/flowquery/sqlengine"
)

type compileState int32

const (
	compilePending compileState = iota
	compileInProgress
	compileDone
)

// Node is a per-DAG-execution instance of a model, owned by the DAG and
// discarded at request end (query files themselves are shared,
// read-only), per spec section 3's lifecycle invariant.
type Node struct {
	Name   string
	Config *models.Config

	Upstreams   map[string]struct{}
	Downstreams map[string]struct{}

	NeedsEngineTable   bool
	NeedsHostDataframe bool
	IsTarget           bool

	// CompiledQuery holds the rendered SQL for SQL models after compile.
	CompiledQuery string

	mu            sync.Mutex
	state         compileState
	done          chan struct{}
	dependencies  []string
	compileErr    error
	confirmedAcyc bool

	// waitCount is not maintained: Execute keeps each node's count of
	// not-yet-finished upstreams in execState.waitCount instead.
	waitCount int32

	result    sqlengine.Table
	resultSet bool
}

func newNode(name string, cfg *models.Config) *Node {
	return &Node{
		Name:        name,
		Config:      cfg,
		Upstreams:   make(map[string]struct{}),
		Downstreams: make(map[string]struct{}),
		done:        make(chan struct{}),
	}
}

func (n *Node) addUpstream(name string) {
	n.Upstreams[name] = struct{}{}
}

func (n *Node) addDownstream(name string) {
	n.Downstreams[name] = struct{}{}
}
