// Package models implements the data model registry (C3), grounded on
// the original implementation's _models.py Model/QueryFile split.
package models

import (
	"context"

	"github.com/forbearing/flowquery/sqlengine"
	"github.com/forbearing/flowquery/sqlerr"
)

// Type discriminates a model's materialization strategy, per spec
// section 3's ModelNode variant.
type Type string

const (
	TypeSeed     Type = "seed"
	TypeSource   Type = "source"
	TypeDbview   Type = "dbview"
	TypeFederate Type = "federate"
	TypeBuild    Type = "build"
)

// QueryFile is the declared query artifact for a non-leaf model: either a
// raw SQL template or an imperative callable pair, mirroring _models.py's
// RawSqlQuery/RawPyQuery split.
type QueryFile interface {
	isQueryFile()
}

// SQLQueryFile holds the raw Jinja-style template text rendered at
// compile time (C4).
type SQLQueryFile struct {
	Template string
	// AsView, when true, materializes a federate model with CREATE VIEW
	// instead of CREATE TABLE AS, per spec section 4.4.
	AsView bool
}

func (SQLQueryFile) isQueryFile() {}

// ImperativeQueryFile holds an imperative model's dependency-discovery
// and execution callables. Go has no dynamic module loading, so these
// are registered as plain closures by the embedding project rather than
// discovered from a file on disk, per SPEC_FULL's C3 design note.
type ImperativeQueryFile struct {
	Dependencies func(ctx context.Context) ([]string, error)
	Run          func(ctx context.Context) (sqlengine.Table, error)
}

func (ImperativeQueryFile) isQueryFile() {}

// Config is the static, load-time declaration of one model: its type,
// connection (for source/dbview), declared output schema, and query
// artifact. Seeds carry their data directly as Seed.
type Config struct {
	Name       string
	Type       Type
	Connection string // external connection name, for source/dbview
	Table      string // external table name, for source
	Columns    []sqlengine.Column
	QueryFile  QueryFile // nil for seed/source
	Seed       *sqlengine.Table
}

// Registry holds every known model Config by unique name, the
// project-load-time singleton described in spec section 4.3.
type Registry struct {
	byName map[string]*Config
}

// NewRegistry validates name uniqueness across every model type, per
// spec section 4.3.
func NewRegistry(configs ...*Config) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Config, len(configs))}
	for _, c := range configs {
		if _, dup := r.byName[c.Name]; dup {
			return nil, sqlerr.ConfigurationError("duplicate model name %q", c.Name)
		}
		r.byName[c.Name] = c
	}
	return r, nil
}

func (r *Registry) Get(name string) (*Config, bool) {
	c, ok := r.byName[name]
	return c, ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	return names
}
