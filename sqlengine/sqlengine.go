// Package sqlengine declares the embedded analytical query capability
// the core consumes (spec section 1/4.4): run a query string against
// named relations, register tabular values as relations, and produce
// tabular results. The engine implementation itself — DuckDB, SQLite,
// an in-process columnar store, whatever the embedding project picks —
// is an external collaborator named only by this interface.
package sqlengine

import "context"

// Table is the tabular value models materialize, sourced from an
// EmbeddedSQL query or an imperative model's callable. Columns preserve
// declaration order; Rows are positional per Columns.
type Table struct {
	Columns []Column
	Rows    [][]any
}

// Column describes one output field, mirrored into DatasetResultModel's
// schema.fields per spec section 6.
type Column struct {
	Name        string
	Type        string
	Description string
	Category    string
}

func (t Table) NumRows() int { return len(t.Rows) }

// Connection is a single per-request handle to the embedded engine,
// matching spec section 4.4's "one embedded connection per request,
// opened on entry, closed on all exits" rule. Implementations must
// serialize calls to Exec/Register against each other but may allow
// Query to run concurrently with them.
type Connection interface {
	// Register makes t available under relationName for subsequent
	// queries, overwriting any existing relation of that name.
	Register(ctx context.Context, relationName string, t Table) error

	// Exec runs a statement that does not return rows (CREATE TABLE AS,
	// CREATE VIEW). Must be serialized against other writes.
	Exec(ctx context.Context, query string) error

	// Query runs a read-only statement and returns its result. Safe to
	// call concurrently with other Query calls.
	Query(ctx context.Context, query string) (Table, error)

	// Close releases the connection. Always called, even on error paths.
	Close() error
}

// Engine opens per-request connections.
type Engine interface {
	Open(ctx context.Context) (Connection, error)
}
