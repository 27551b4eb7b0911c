package dataset

import (
	"testing"

	"github.com/forbearing/flowquery/models"
	"github.com/forbearing/flowquery/sqlengine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() sqlengine.Table {
	return sqlengine.Table{
		Columns: []sqlengine.Column{{Name: "id"}, {Name: "name"}},
		Rows: [][]any{
			{1, "a"},
			{2, "b"},
			{3, "c"},
		},
	}
}

func TestResult_TotalNumRowsIndependentOfPaging(t *testing.T) {
	r := NewResult(sampleTable(), nil)
	assert.Equal(t, 3, r.TotalNumRows())

	out, err := r.Render(0, 1, OrientationRecords, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, out["total_num_rows"])
}

func TestResult_ZeroLimitYieldsEmptyData(t *testing.T) {
	r := NewResult(sampleTable(), nil)
	out, err := r.Render(0, 0, OrientationRecords, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, out["total_num_rows"])
	data := out["data"].([]map[string]any)
	assert.Empty(t, data)
}

func TestResult_OrientationLaw_SameContentDifferentShape(t *testing.T) {
	r := NewResult(sampleTable(), nil)

	records, err := r.Render(0, 10, OrientationRecords, nil)
	require.NoError(t, err)
	rows, err := r.Render(0, 10, OrientationRows, nil)
	require.NoError(t, err)
	cols, err := r.Render(0, 10, OrientationColumns, nil)
	require.NoError(t, err)

	recData := records["data"].([]map[string]any)
	rowData := rows["data"].([][]any)
	colData := cols["data"].([][]any)

	require.Len(t, recData, 3)
	require.Len(t, rowData, 3)
	require.Len(t, colData, 2)

	assert.Equal(t, 1, recData[0]["id"])
	assert.Equal(t, "a", recData[0]["name"])
	assert.Equal(t, []any{1, "a"}, rowData[0])
	assert.Equal(t, []any{1, 2, 3}, colData[0])
	assert.Equal(t, []any{"a", "b", "c"}, colData[1])
}

func TestResult_PaginationClampsToBounds(t *testing.T) {
	r := NewResult(sampleTable(), nil)
	out, err := r.Render(10, 5, OrientationRows, nil)
	require.NoError(t, err)
	data := out["data"].([][]any)
	assert.Empty(t, data)
}

func TestResult_SelectProjectsColumns(t *testing.T) {
	r := NewResult(sampleTable(), nil)
	out, err := r.Render(0, 10, OrientationRecords, []string{"name"})
	require.NoError(t, err)
	data := out["data"].([]map[string]any)
	assert.Equal(t, map[string]any{"name": "a"}, data[0])
}

func TestResult_SelectUnknownColumnFails(t *testing.T) {
	r := NewResult(sampleTable(), nil)
	_, err := r.Render(0, 10, OrientationRecords, []string{"missing"})
	require.Error(t, err)
}

func TestResult_SchemaMergesDeclaredModelColumns(t *testing.T) {
	modelConfig := &models.Config{
		Name: "widgets",
		Columns: []sqlengine.Column{
			{Name: "id", Type: "integer", Description: "primary key", Category: "dimension"},
		},
	}
	r := NewResult(sampleTable(), modelConfig)
	out, err := r.Render(0, 10, OrientationRecords, nil)
	require.NoError(t, err)

	fields := out["schema"].(map[string]any)["fields"].([]map[string]any)
	require.Len(t, fields, 2)
	assert.Equal(t, map[string]any{
		"name": "id", "type": "integer", "description": "primary key", "category": "dimension",
	}, fields[0])
	// "name" has no declared column, so it falls back to the engine-reported column.
	assert.Equal(t, map[string]any{
		"name": "name", "type": "", "description": "", "category": "",
	}, fields[1])
}

func TestResult_RenderIsMemoized(t *testing.T) {
	r := NewResult(sampleTable(), nil)
	first, err := r.Render(0, 2, OrientationRecords, nil)
	require.NoError(t, err)
	second, err := r.Render(0, 2, OrientationRecords, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
