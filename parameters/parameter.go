// Package parameters implements the parameter configuration layer (C1)
// and the per-request selection resolver (C2), grounded on the original
// implementation's _parameter_configs.py and _parameter_sets.py.
package parameters

import (
	"github.com/forbearing/flowquery/paramoptions"
	"github.com/shopspring/decimal"
)

// WidgetType discriminates a ParameterConfig/Parameter variant. It is used
// for wire encoding and by DataSourceConfig.Convert to pick the variant it
// builds; selection resolution dispatches through the ParameterConfig
// interface.
type WidgetType string

const (
	WidgetSingleSelect WidgetType = "single_select"
	WidgetMultiSelect  WidgetType = "multi_select"
	WidgetDate         WidgetType = "date"
	WidgetDateRange    WidgetType = "date_range"
	WidgetNumber       WidgetType = "number"
	WidgetNumberRange  WidgetType = "number_range"
	WidgetText         WidgetType = "text"
	WidgetNone         WidgetType = "none"
)

// Parameter is the resolved, per-request runtime variant: a config, its
// currently-visible options, and a selection. It is disabled when
// VisibleOptions is empty and no date/number default applies, per spec
// section 3.
type Parameter struct {
	Config         ParameterConfig
	Enabled        bool
	VisibleOptions []paramoptions.Option

	// Selection payloads; only the one matching Config's widget type is
	// populated.
	SelectedIDs       []string
	SelectedDate      string
	SelectedDateStart string
	SelectedDateEnd   string
	SelectedNumber    decimal.Decimal
	SelectedLower     decimal.Decimal
	SelectedUpper     decimal.Decimal
	SelectedText      string
}

// Name reads through to the underlying config, so a disabled Parameter
// can still be located by name.
func (p Parameter) Name() string { return p.Config.Name() }

// visibleParentIDs collects the id set of selected options on a select
// parameter, the form child parameters filter against.
func visibleParentIDs(p Parameter) map[string]struct{} {
	ids := make(map[string]struct{}, len(p.SelectedIDs))
	for _, id := range p.SelectedIDs {
		ids[id] = struct{}{}
	}
	return ids
}

// ToWire renders the parameter into the ParametersModel per-variant
// shape described in spec section 6. Disabled parameters always render
// with widget_type "none".
func (p Parameter) ToWire() map[string]any {
	if !p.Enabled {
		return map[string]any{
			"name":        p.Config.Name(),
			"label":       p.Config.Label(),
			"description": p.Config.Description(),
			"widget_type": string(WidgetNone),
		}
	}
	out := map[string]any{
		"name":        p.Config.Name(),
		"label":       p.Config.Label(),
		"description": p.Config.Description(),
		"widget_type": string(p.Config.WidgetType()),
	}
	switch p.Config.WidgetType() {
	case WidgetSingleSelect, WidgetMultiSelect:
		options := make([]map[string]any, 0, len(p.VisibleOptions))
		for _, o := range p.VisibleOptions {
			so, ok := o.(paramoptions.SelectParameterOption)
			if !ok {
				continue
			}
			options = append(options, map[string]any{
				"id":    so.ID,
				"label": so.Label,
				"extra": so.Extra,
			})
		}
		out["options"] = options
		out["selected_ids"] = p.SelectedIDs
		if sc, ok := p.Config.(*SelectParameterConfig); ok {
			out["trigger_refresh"] = sc.triggerRefresh
			if sc.Multi {
				out["show_select_all"] = sc.ShowSelectAll
				out["order_matters"] = sc.OrderMatters
				out["none_is_all"] = sc.NoneIsAll
			}
		}
	case WidgetDate:
		out["selected_date"] = p.SelectedDate
	case WidgetDateRange:
		out["selected_start"] = p.SelectedDateStart
		out["selected_end"] = p.SelectedDateEnd
	case WidgetNumber:
		out["selected_value"] = p.SelectedNumber.String()
	case WidgetNumberRange:
		out["selected_lower"] = p.SelectedLower.String()
		out["selected_upper"] = p.SelectedUpper.String()
	case WidgetText:
		out["selected_text"] = p.SelectedText
	}
	return out
}
