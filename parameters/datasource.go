package parameters

import (
	"fmt"
	"sort"

	"github.com/forbearing/flowquery/paramoptions"
	"github.com/forbearing/flowquery/sqlengine"
	"github.com/forbearing/flowquery/sqlerr"
)

// DataSourceConfig is the deferred variant from spec section 3: at load
// time it names a table/query and column mappings; Convert materializes
// it into a concrete ParameterConfig from an already-fetched Table,
// grouping rows by IDCol and aggregating the widget-specific columns, per
// spec section 4.1's DataSource conversion rule.
type DataSourceConfig struct {
	NameVal        string
	LabelVal       string
	DescriptionVal string
	UserAttr       string
	HasUserAttr    bool
	ParentNameVal  string
	HasParent      bool
	Widget         WidgetType

	IDCol        string
	LabelCol     string
	OrderByCol   string
	UserGroupCol string
	ParentIDCol  string

	// IsDefaultCol names the column whose "1" value marks an option as
	// the default selection; empty means no option defaults.
	IsDefaultCol string
	// CustomCols maps a SelectParameterOption.Extra field name to the
	// source column supplying its value.
	CustomCols map[string]string
}

func colIndex(t sqlengine.Table, name string) (int, bool) {
	if name == "" {
		return -1, false
	}
	for i, c := range t.Columns {
		if c.Name == name {
			return i, true
		}
	}
	return -1, false
}

type groupedRow struct {
	id         string
	label      string
	orderBy    string
	isDefault  bool
	custom     map[string]any
	userGroups map[string]struct{}
	parentIDs  map[string]struct{}
}

// group implements the "group rows by id_col (or keep as-is if unset),
// first-non-null for option columns, ordered set for user_group_col /
// parent_id_col" rule.
func (d *DataSourceConfig) group(t sqlengine.Table) ([]groupedRow, error) {
	idIdx, hasID := colIndex(t, d.IDCol)
	labelIdx, _ := colIndex(t, d.LabelCol)
	orderIdx, hasOrder := colIndex(t, d.OrderByCol)
	userGroupIdx, hasUserGroup := colIndex(t, d.UserGroupCol)
	parentIdx, hasParentCol := colIndex(t, d.ParentIDCol)
	isDefaultIdx, hasIsDefault := colIndex(t, d.IsDefaultCol)
	customIdx := make(map[string]int, len(d.CustomCols))
	for field, col := range d.CustomCols {
		if idx, ok := colIndex(t, col); ok {
			customIdx[field] = idx
		}
	}

	order := make([]string, 0, len(t.Rows))
	byID := make(map[string]*groupedRow)
	defaultSeen := make(map[string]bool)
	for i, row := range t.Rows {
		id := ""
		if hasID {
			id = asString(row[idIdx])
		} else {
			id = asString(i)
		}
		gr, seen := byID[id]
		if !seen {
			gr = &groupedRow{id: id, custom: map[string]any{}, userGroups: map[string]struct{}{}, parentIDs: map[string]struct{}{}}
			byID[id] = gr
			order = append(order, id)
		}
		if gr.label == "" && labelIdx >= 0 {
			gr.label = asString(row[labelIdx])
		}
		if gr.orderBy == "" && hasOrder {
			gr.orderBy = asString(row[orderIdx])
		}
		if hasUserGroup {
			gr.userGroups[asString(row[userGroupIdx])] = struct{}{}
		}
		if hasParentCol {
			gr.parentIDs[asString(row[parentIdx])] = struct{}{}
		}
		if hasIsDefault && !defaultSeen[id] && row[isDefaultIdx] != nil {
			gr.isDefault = asString(row[isDefaultIdx]) == "1"
			defaultSeen[id] = true
		}
		for field, idx := range customIdx {
			if _, exists := gr.custom[field]; !exists && row[idx] != nil {
				gr.custom[field] = row[idx]
			}
		}
	}

	out := make([]groupedRow, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	if d.OrderByCol != "" {
		sort.SliceStable(out, func(i, j int) bool { return out[i].orderBy < out[j].orderBy })
	} else {
		sort.SliceStable(out, func(i, j int) bool { return out[i].id < out[j].id })
	}
	return out, nil
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func groupSets(g groupedRow) ([]string, []string) {
	ug := make([]string, 0, len(g.userGroups))
	for v := range g.userGroups {
		ug = append(ug, v)
	}
	pid := make([]string, 0, len(g.parentIDs))
	for v := range g.parentIDs {
		pid = append(pid, v)
	}
	return ug, pid
}

// Convert materializes a concrete ParameterConfig from the data source's
// fetched table. Only the select widget family is supported; any other
// widget type (date, number, text and their ranges) returns a
// configuration_error.
func (d *DataSourceConfig) Convert(t sqlengine.Table) (ParameterConfig, error) {
	rows, err := d.group(t)
	if err != nil {
		return nil, err
	}
	switch d.Widget {
	case WidgetSingleSelect, WidgetMultiSelect:
		opts := make([]paramoptions.SelectParameterOption, 0, len(rows))
		for _, r := range rows {
			ug, pid := groupSets(r)
			opts = append(opts, paramoptions.SelectParameterOption{
				Base:    paramoptions.NewBase(ug, pid),
				ID:      r.id,
				Label:   r.label,
				Default: r.isDefault,
				Extra:   r.custom,
			})
		}
		return &SelectParameterConfig{
			NameVal: d.NameVal, LabelVal: d.LabelVal, DescriptionVal: d.DescriptionVal,
			UserAttr: d.UserAttr, HasUserAttr: d.HasUserAttr,
			ParentNameVal: d.ParentNameVal, HasParent: d.HasParent,
			Options: opts, Multi: d.Widget == WidgetMultiSelect,
		}, nil
	default:
		return nil, sqlerr.ConfigurationError("data source parameter %q has an unsupported widget type for generic conversion", d.NameVal)
	}
}
