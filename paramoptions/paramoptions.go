// Package paramoptions defines the immutable option variants for widget
// parameters (spec section 3/4.1), grounded on the original
// implementation's option classes in _parameter_configs.py. Each variant
// is a small struct implementing Option; there is no shared base class,
// per the variant-dispatch design note.
package paramoptions

import "github.com/shopspring/decimal"

// Option is the shared behavior across every widget option variant.
type Option interface {
	// IsValid reports whether this option should be visible given the
	// requesting user's group attribute value and the set of currently
	// selected parent option ids. An empty UserGroups or ParentIDs set on
	// the option always passes that half of the check.
	IsValid(userGroupValue string, selectedParentIDs map[string]struct{}) bool
}

// Base carries the two filters shared by every variant, matching
// _parameter_configs.py's common ParameterOption fields.
type Base struct {
	UserGroups map[string]struct{}
	ParentIDs  map[string]struct{}
}

func (b Base) isValid(userGroupValue string, selectedParentIDs map[string]struct{}) bool {
	if len(b.UserGroups) > 0 {
		if _, ok := b.UserGroups[userGroupValue]; !ok {
			return false
		}
	}
	if len(b.ParentIDs) > 0 {
		matched := false
		for id := range selectedParentIDs {
			if _, ok := b.ParentIDs[id]; ok {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// SelectParameterOption backs single- and multi-select widgets.
type SelectParameterOption struct {
	Base
	ID      string
	Label   string
	Default bool
	Extra   map[string]any
}

func (o SelectParameterOption) IsValid(userGroupValue string, selectedParentIDs map[string]struct{}) bool {
	return o.isValid(userGroupValue, selectedParentIDs)
}

// DateParameterOption backs the single-date widget.
type DateParameterOption struct {
	Base
	Default    string
	MinDate    string
	MaxDate    string
	DateFormat string
}

func (o DateParameterOption) IsValid(userGroupValue string, selectedParentIDs map[string]struct{}) bool {
	return o.isValid(userGroupValue, selectedParentIDs)
}

// DateRangeParameterOption backs the date-range widget.
type DateRangeParameterOption struct {
	Base
	DefaultStart string
	DefaultEnd   string
	MinDate      string
	MaxDate      string
	DateFormat   string
}

func (o DateRangeParameterOption) IsValid(userGroupValue string, selectedParentIDs map[string]struct{}) bool {
	return o.isValid(userGroupValue, selectedParentIDs)
}

// NumberParameterOption backs the single-number widget. Bounds use
// decimal.Decimal so increment-lattice checks are exact.
type NumberParameterOption struct {
	Base
	Default   decimal.Decimal
	Min       decimal.Decimal
	Max       decimal.Decimal
	Increment decimal.Decimal
}

func (o NumberParameterOption) IsValid(userGroupValue string, selectedParentIDs map[string]struct{}) bool {
	return o.isValid(userGroupValue, selectedParentIDs)
}

// OnLattice reports whether v lies on the increment lattice starting at
// Min, i.e. (v-Min) is an exact multiple of Increment.
func (o NumberParameterOption) OnLattice(v decimal.Decimal) bool {
	if o.Increment.IsZero() {
		return true
	}
	diff := v.Sub(o.Min)
	quotient := diff.Div(o.Increment)
	return quotient.Equal(quotient.Truncate(0))
}

// NumberRangeParameterOption backs the number-range widget.
type NumberRangeParameterOption struct {
	Base
	DefaultLower decimal.Decimal
	DefaultUpper decimal.Decimal
	Min          decimal.Decimal
	Max          decimal.Decimal
	Increment    decimal.Decimal
}

func (o NumberRangeParameterOption) IsValid(userGroupValue string, selectedParentIDs map[string]struct{}) bool {
	return o.isValid(userGroupValue, selectedParentIDs)
}

func (o NumberRangeParameterOption) OnLattice(v decimal.Decimal) bool {
	if o.Increment.IsZero() {
		return true
	}
	diff := v.Sub(o.Min)
	quotient := diff.Div(o.Increment)
	return quotient.Equal(quotient.Truncate(0))
}

// InputType constrains the parse/validation grammar a TextParameterOption
// applies to a submitted value, per spec section 6.
type InputType string

const (
	InputText         InputType = "text"
	InputTextarea     InputType = "textarea"
	InputNumber       InputType = "number"
	InputDate         InputType = "date"
	InputDateTimeLocal InputType = "datetime-local"
	InputMonth        InputType = "month"
	InputTime         InputType = "time"
	InputColor        InputType = "color"
	InputPassword     InputType = "password"
)

// TextParameterOption backs the free-text widget.
type TextParameterOption struct {
	Base
	Default   string
	InputType InputType
}

func (o TextParameterOption) IsValid(userGroupValue string, selectedParentIDs map[string]struct{}) bool {
	return o.isValid(userGroupValue, selectedParentIDs)
}

// NewBase constructs the shared Base filters from plain string slices,
// the shape DataSourceParameterConfig conversion and project config
// loading both start from.
func NewBase(userGroups, parentIDs []string) Base {
	b := Base{}
	if len(userGroups) > 0 {
		b.UserGroups = make(map[string]struct{}, len(userGroups))
		for _, g := range userGroups {
			b.UserGroups[g] = struct{}{}
		}
	}
	if len(parentIDs) > 0 {
		b.ParentIDs = make(map[string]struct{}, len(parentIDs))
		for _, id := range parentIDs {
			b.ParentIDs[id] = struct{}{}
		}
	}
	return b
}
