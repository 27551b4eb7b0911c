package dataset

import (
	"strings"
	"sync"

	"github.com/forbearing/flowquery/models"
	"github.com/forbearing/flowquery/sqlengine"
	"github.com/forbearing/flowquery/sqlerr"
)

// Orientation shapes DatasetResultModel.data, per spec section 6.
type Orientation string

const (
	OrientationRecords Orientation = "records"
	OrientationRows    Orientation = "rows"
	OrientationColumns Orientation = "columns"
)

// Result wraps one dataset's materialized table, implementing the
// pagination/orientation projection from the original implementation's
// _dataset_types.py DatasetResult.to_json, with a small memo cache per
// (offset, limit, orientation, select) tuple mirroring its lru_cache.
type Result struct {
	table sqlengine.Table

	// declaredColumns is the target model's declared column metadata
	// (Config.Columns), keyed by name, per spec section 4.6 step 6:
	// schema.fields describes the model's declared columns, not
	// whatever the raw engine query happened to name its outputs.
	declaredColumns map[string]sqlengine.Column

	mu   sync.Mutex
	memo map[renderKey]map[string]any
}

type renderKey struct {
	offset, limit int
	orientation   Orientation
	selectKey     string
}

// NewResult wraps a finalized table (post cap, post post-SQL) for
// rendering. modelConfig is the target model's declaration; its Columns
// supply schema metadata (type/description/category) by name, falling
// back to the engine-reported column for anything the model doesn't
// declare. modelConfig may be nil.
func NewResult(t sqlengine.Table, modelConfig *models.Config) *Result {
	declared := make(map[string]sqlengine.Column)
	if modelConfig != nil {
		for _, c := range modelConfig.Columns {
			declared[c.Name] = c
		}
	}
	return &Result{table: t, declaredColumns: declared, memo: make(map[renderKey]map[string]any)}
}

// TotalNumRows is the row count before pagination, per spec section 6.
func (r *Result) TotalNumRows() int { return len(r.table.Rows) }

// Render produces the DatasetResultModel shape for one
// (offset, limit, orientation, select) request, per spec sections 4.6
// and 6. limit=0 returns empty data alongside a non-zero
// total_num_rows, satisfying the pagination law in spec section 8.
func (r *Result) Render(offset, limit int, orientation Orientation, selectCols []string) (map[string]any, error) {
	key := renderKey{offset: offset, limit: limit, orientation: orientation, selectKey: strings.Join(selectCols, ",")}

	r.mu.Lock()
	if cached, ok := r.memo[key]; ok {
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	cols, colIdx, err := r.projectColumns(selectCols)
	if err != nil {
		return nil, err
	}

	page := r.page(offset, limit)
	data := shape(page, colIdx, cols, orientation)

	fields := make([]map[string]any, 0, len(cols))
	for _, c := range cols {
		c := r.mergeDeclared(c)
		fields = append(fields, map[string]any{
			"name":        c.Name,
			"type":        c.Type,
			"description": c.Description,
			"category":    c.Category,
		})
	}

	out := map[string]any{
		"schema":         map[string]any{"fields": fields},
		"total_num_rows": r.TotalNumRows(),
		"data_details": map[string]any{
			"num_rows":    len(page),
			"orientation": string(orientation),
		},
		"data": data,
	}

	r.mu.Lock()
	r.memo[key] = out
	r.mu.Unlock()
	return out, nil
}

// mergeDeclared overlays the target model's declared metadata for c.Name
// onto c, falling back to the engine-reported column for any field the
// model doesn't declare.
func (r *Result) mergeDeclared(c sqlengine.Column) sqlengine.Column {
	d, ok := r.declaredColumns[c.Name]
	if !ok {
		return c
	}
	if d.Type != "" {
		c.Type = d.Type
	}
	if d.Description != "" {
		c.Description = d.Description
	}
	if d.Category != "" {
		c.Category = d.Category
	}
	return c
}

// page slices the underlying rows to [offset, offset+limit), clamped to
// the table's bounds. limit=0 yields an empty slice.
func (r *Result) page(offset, limit int) [][]any {
	rows := r.table.Rows
	if offset < 0 {
		offset = 0
	}
	if offset > len(rows) {
		offset = len(rows)
	}
	if limit <= 0 {
		return rows[offset:offset]
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func (r *Result) projectColumns(selectCols []string) ([]sqlengine.Column, []int, error) {
	if len(selectCols) == 0 {
		idx := make([]int, len(r.table.Columns))
		for i := range idx {
			idx[i] = i
		}
		return r.table.Columns, idx, nil
	}
	cols := make([]sqlengine.Column, 0, len(selectCols))
	idx := make([]int, 0, len(selectCols))
	for _, name := range selectCols {
		found := false
		for i, c := range r.table.Columns {
			if c.Name == name {
				cols = append(cols, c)
				idx = append(idx, i)
				found = true
				break
			}
		}
		if !found {
			return nil, nil, sqlerr.InvalidInput("x_select references unknown column %q", name)
		}
	}
	return cols, idx, nil
}

// shape implements the orientation law from spec section 8: records,
// rows, and columns carry identical row content and differ only in
// container shape.
func shape(rows [][]any, colIdx []int, cols []sqlengine.Column, orientation Orientation) any {
	switch orientation {
	case OrientationColumns:
		out := make([][]any, len(colIdx))
		for i := range out {
			out[i] = make([]any, 0, len(rows))
		}
		for _, row := range rows {
			for i, ci := range colIdx {
				out[i] = append(out[i], row[ci])
			}
		}
		return out
	case OrientationRows:
		out := make([][]any, 0, len(rows))
		for _, row := range rows {
			projected := make([]any, len(colIdx))
			for i, ci := range colIdx {
				projected[i] = row[ci]
			}
			out = append(out, projected)
		}
		return out
	default: // records
		out := make([]map[string]any, 0, len(rows))
		for _, row := range rows {
			record := make(map[string]any, len(colIdx))
			for i, ci := range colIdx {
				record[cols[i].Name] = row[ci]
			}
			out = append(out, record)
		}
		return out
	}
}
