package parameters

import (
	"github.com/forbearing/flowquery/auth"
	"github.com/forbearing/flowquery/paramoptions"
	"github.com/forbearing/flowquery/sqlerr"
	"github.com/shopspring/decimal"
)

// ParameterConfig is the immutable, per-variant declaration of a named
// parameter (spec section 3). Config instances are created once at
// project load and shared read-only across every request, per the
// lifecycle invariant in spec section 3.
type ParameterConfig interface {
	Name() string
	Label() string
	Description() string
	WidgetType() WidgetType
	// UserAttribute names the user record field consulted for cascading
	// by user group; ok is false when the parameter has no such filter.
	UserAttribute() (attr string, ok bool)
	// ParentName names the parent parameter this config cascades from;
	// ok is false for root parameters.
	ParentName() (name string, ok bool)
	// WithSelection resolves this config against a raw selection string,
	// the requesting user, and the already-resolved parent Parameter (nil
	// for roots), per spec section 4.1.
	WithSelection(raw string, user auth.User, parent *Parameter) (Parameter, error)
}

// userGroupValue looks up the config's user_attribute on user. Per spec
// section 4.1, a config declaring user_attribute with no user present
// (public/guest scope) yields disabled rather than an error — callers
// detect that case themselves by checking the returned ok.
func userGroupValue(attr string, ok bool, user auth.User) (string, bool) {
	if !ok {
		return "", true // no filter declared: always passes
	}
	if user == nil {
		return "", false
	}
	v, present := user.Attribute(attr)
	if !present {
		return "", false
	}
	return v, true
}

// parentSelectedIDs extracts the id set a child filters against from its
// resolved parent Parameter. A nil parent (root) means no filter.
func parentSelectedIDs(parent *Parameter) map[string]struct{} {
	if parent == nil {
		return nil
	}
	return visibleParentIDs(*parent)
}

func filterOptions[T paramoptions.Option](opts []T, userVal string, parentIDs map[string]struct{}) []T {
	out := make([]T, 0, len(opts))
	for _, o := range opts {
		if o.IsValid(userVal, parentIDs) {
			out = append(out, o)
		}
	}
	return out
}

// --- Select (single/multi) --------------------------------------------

// SelectParameterConfig backs both single- and multi-select widgets,
// discriminated by Multi, mirroring the original's SelectionParameterConfig
// base with a multi-select subclass.
type SelectParameterConfig struct {
	NameVal        string
	LabelVal       string
	DescriptionVal string
	UserAttr       string
	HasUserAttr    bool
	ParentNameVal  string
	HasParent      bool
	Options        []paramoptions.SelectParameterOption

	Multi         bool
	ShowSelectAll bool
	OrderMatters  bool
	NoneIsAll     bool

	// triggerRefresh is set true by the registry once it discovers another
	// config naming this one as ParentName, per spec section 4.1.
	triggerRefresh bool
}

func (c *SelectParameterConfig) Name() string        { return c.NameVal }
func (c *SelectParameterConfig) Label() string        { return c.LabelVal }
func (c *SelectParameterConfig) Description() string  { return c.DescriptionVal }
func (c *SelectParameterConfig) UserAttribute() (string, bool) { return c.UserAttr, c.HasUserAttr }
func (c *SelectParameterConfig) ParentName() (string, bool)   { return c.ParentNameVal, c.HasParent }
func (c *SelectParameterConfig) SetTriggerRefresh()           { c.triggerRefresh = true }

func (c *SelectParameterConfig) WidgetType() WidgetType {
	if c.Multi {
		return WidgetMultiSelect
	}
	return WidgetSingleSelect
}

func (c *SelectParameterConfig) WithSelection(raw string, user auth.User, parent *Parameter) (Parameter, error) {
	userVal, ok := userGroupValue(c.UserAttr, c.HasUserAttr, user)
	if !ok {
		return Parameter{Config: c, Enabled: false}, nil
	}
	visible := filterOptions(c.Options, userVal, parentSelectedIDs(parent))
	if len(visible) == 0 {
		return Parameter{Config: c, Enabled: false}, nil
	}
	anyOpts := make([]paramoptions.Option, len(visible))
	for i, o := range visible {
		anyOpts[i] = o
	}

	if raw == "" {
		var defaults []string
		for _, o := range visible {
			if o.Default {
				defaults = append(defaults, o.ID)
			}
		}
		if len(defaults) == 0 && !c.Multi && !c.NoneIsAll {
			defaults = []string{visible[0].ID}
		}
		return Parameter{Config: c, Enabled: true, VisibleOptions: anyOpts, SelectedIDs: defaults}, nil
	}

	ids, err := splitList(raw)
	if err != nil {
		return Parameter{}, err
	}
	if !c.Multi && len(ids) != 1 {
		return Parameter{}, sqlerr.InvalidParameterSelection(raw, "single-select parameter requires exactly one id")
	}
	visibleSet := make(map[string]struct{}, len(visible))
	for _, o := range visible {
		visibleSet[o.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := visibleSet[id]; !ok {
			return Parameter{}, sqlerr.InvalidParameterSelection(raw, "id "+id+" is not among the visible options")
		}
	}
	return Parameter{Config: c, Enabled: true, VisibleOptions: anyOpts, SelectedIDs: ids}, nil
}

// --- Date ---------------------------------------------------------------

type DateParameterConfig struct {
	NameVal        string
	LabelVal       string
	DescriptionVal string
	UserAttr       string
	HasUserAttr    bool
	ParentNameVal  string
	HasParent      bool
	Options        []paramoptions.DateParameterOption
}

func (c *DateParameterConfig) Name() string                   { return c.NameVal }
func (c *DateParameterConfig) Label() string                  { return c.LabelVal }
func (c *DateParameterConfig) Description() string            { return c.DescriptionVal }
func (c *DateParameterConfig) WidgetType() WidgetType          { return WidgetDate }
func (c *DateParameterConfig) UserAttribute() (string, bool)   { return c.UserAttr, c.HasUserAttr }
func (c *DateParameterConfig) ParentName() (string, bool)      { return c.ParentNameVal, c.HasParent }

func (c *DateParameterConfig) WithSelection(raw string, user auth.User, parent *Parameter) (Parameter, error) {
	userVal, ok := userGroupValue(c.UserAttr, c.HasUserAttr, user)
	if !ok {
		return Parameter{Config: c, Enabled: false}, nil
	}
	visible := filterOptions(c.Options, userVal, parentSelectedIDs(parent))
	if len(visible) == 0 {
		return Parameter{Config: c, Enabled: false}, nil
	}
	opt := visible[0]

	date := raw
	if date == "" {
		date = opt.Default
	} else {
		parsed, err := parseISODate(date)
		if err != nil {
			return Parameter{}, err
		}
		date = parsed
		if opt.MinDate != "" && date < opt.MinDate {
			return Parameter{}, sqlerr.InvalidParameterSelection(raw, "date is before the minimum "+opt.MinDate)
		}
		if opt.MaxDate != "" && date > opt.MaxDate {
			return Parameter{}, sqlerr.InvalidParameterSelection(raw, "date is after the maximum "+opt.MaxDate)
		}
	}
	anyOpts := []paramoptions.Option{opt}
	return Parameter{Config: c, Enabled: true, VisibleOptions: anyOpts, SelectedDate: date}, nil
}

// --- Date range -----------------------------------------------------------

type DateRangeParameterConfig struct {
	NameVal        string
	LabelVal       string
	DescriptionVal string
	UserAttr       string
	HasUserAttr    bool
	ParentNameVal  string
	HasParent      bool
	Options        []paramoptions.DateRangeParameterOption
}

func (c *DateRangeParameterConfig) Name() string                 { return c.NameVal }
func (c *DateRangeParameterConfig) Label() string                { return c.LabelVal }
func (c *DateRangeParameterConfig) Description() string          { return c.DescriptionVal }
func (c *DateRangeParameterConfig) WidgetType() WidgetType       { return WidgetDateRange }
func (c *DateRangeParameterConfig) UserAttribute() (string, bool) { return c.UserAttr, c.HasUserAttr }
func (c *DateRangeParameterConfig) ParentName() (string, bool)    { return c.ParentNameVal, c.HasParent }

func (c *DateRangeParameterConfig) WithSelection(raw string, user auth.User, parent *Parameter) (Parameter, error) {
	userVal, ok := userGroupValue(c.UserAttr, c.HasUserAttr, user)
	if !ok {
		return Parameter{Config: c, Enabled: false}, nil
	}
	visible := filterOptions(c.Options, userVal, parentSelectedIDs(parent))
	if len(visible) == 0 {
		return Parameter{Config: c, Enabled: false}, nil
	}
	opt := visible[0]

	start, end := opt.DefaultStart, opt.DefaultEnd
	if raw != "" {
		parts, err := splitList(raw)
		if err != nil {
			return Parameter{}, err
		}
		if len(parts) != 2 {
			return Parameter{}, sqlerr.InvalidParameterSelection(raw, "date range requires exactly two values")
		}
		s, err := parseISODate(parts[0])
		if err != nil {
			return Parameter{}, err
		}
		e, err := parseISODate(parts[1])
		if err != nil {
			return Parameter{}, err
		}
		if s > e {
			return Parameter{}, sqlerr.InvalidParameterSelection(raw, "range start must not be after end")
		}
		if opt.MinDate != "" && s < opt.MinDate {
			return Parameter{}, sqlerr.InvalidParameterSelection(raw, "start is before the minimum "+opt.MinDate)
		}
		if opt.MaxDate != "" && e > opt.MaxDate {
			return Parameter{}, sqlerr.InvalidParameterSelection(raw, "end is after the maximum "+opt.MaxDate)
		}
		start, end = s, e
	}
	anyOpts := []paramoptions.Option{opt}
	return Parameter{Config: c, Enabled: true, VisibleOptions: anyOpts, SelectedDateStart: start, SelectedDateEnd: end}, nil
}

// --- Number ---------------------------------------------------------------

type NumberParameterConfig struct {
	NameVal        string
	LabelVal       string
	DescriptionVal string
	UserAttr       string
	HasUserAttr    bool
	ParentNameVal  string
	HasParent      bool
	Options        []paramoptions.NumberParameterOption
}

func (c *NumberParameterConfig) Name() string                 { return c.NameVal }
func (c *NumberParameterConfig) Label() string                { return c.LabelVal }
func (c *NumberParameterConfig) Description() string          { return c.DescriptionVal }
func (c *NumberParameterConfig) WidgetType() WidgetType       { return WidgetNumber }
func (c *NumberParameterConfig) UserAttribute() (string, bool) { return c.UserAttr, c.HasUserAttr }
func (c *NumberParameterConfig) ParentName() (string, bool)    { return c.ParentNameVal, c.HasParent }

func (c *NumberParameterConfig) WithSelection(raw string, user auth.User, parent *Parameter) (Parameter, error) {
	userVal, ok := userGroupValue(c.UserAttr, c.HasUserAttr, user)
	if !ok {
		return Parameter{Config: c, Enabled: false}, nil
	}
	visible := filterOptions(c.Options, userVal, parentSelectedIDs(parent))
	if len(visible) == 0 {
		return Parameter{Config: c, Enabled: false}, nil
	}
	opt := visible[0]

	val := opt.Default
	if raw != "" {
		d, err := parseDecimal(raw)
		if err != nil {
			return Parameter{}, err
		}
		if d.LessThan(opt.Min) || d.GreaterThan(opt.Max) {
			return Parameter{}, sqlerr.InvalidParameterSelection(raw, "value is outside the configured bounds")
		}
		if !opt.OnLattice(d) {
			return Parameter{}, sqlerr.InvalidParameterSelection(raw, "value does not lie on the configured increment")
		}
		val = d
	}
	anyOpts := []paramoptions.Option{opt}
	return Parameter{Config: c, Enabled: true, VisibleOptions: anyOpts, SelectedNumber: val}, nil
}

// --- Number range -----------------------------------------------------------

type NumberRangeParameterConfig struct {
	NameVal        string
	LabelVal       string
	DescriptionVal string
	UserAttr       string
	HasUserAttr    bool
	ParentNameVal  string
	HasParent      bool
	Options        []paramoptions.NumberRangeParameterOption
}

func (c *NumberRangeParameterConfig) Name() string                 { return c.NameVal }
func (c *NumberRangeParameterConfig) Label() string                { return c.LabelVal }
func (c *NumberRangeParameterConfig) Description() string          { return c.DescriptionVal }
func (c *NumberRangeParameterConfig) WidgetType() WidgetType       { return WidgetNumberRange }
func (c *NumberRangeParameterConfig) UserAttribute() (string, bool) { return c.UserAttr, c.HasUserAttr }
func (c *NumberRangeParameterConfig) ParentName() (string, bool)    { return c.ParentNameVal, c.HasParent }

func (c *NumberRangeParameterConfig) WithSelection(raw string, user auth.User, parent *Parameter) (Parameter, error) {
	userVal, ok := userGroupValue(c.UserAttr, c.HasUserAttr, user)
	if !ok {
		return Parameter{Config: c, Enabled: false}, nil
	}
	visible := filterOptions(c.Options, userVal, parentSelectedIDs(parent))
	if len(visible) == 0 {
		return Parameter{Config: c, Enabled: false}, nil
	}
	opt := visible[0]

	lower, upper := opt.DefaultLower, opt.DefaultUpper
	if raw != "" {
		parts, err := splitList(raw)
		if err != nil {
			return Parameter{}, err
		}
		if len(parts) != 2 {
			return Parameter{}, sqlerr.InvalidParameterSelection(raw, "number range requires exactly two values")
		}
		lo, err := parseDecimal(parts[0])
		if err != nil {
			return Parameter{}, err
		}
		hi, err := parseDecimal(parts[1])
		if err != nil {
			return Parameter{}, err
		}
		if lo.GreaterThan(hi) {
			return Parameter{}, sqlerr.InvalidParameterSelection(raw, "lower must not exceed upper")
		}
		if lo.LessThan(opt.Min) || hi.GreaterThan(opt.Max) {
			return Parameter{}, sqlerr.InvalidParameterSelection(raw, "range is outside the configured bounds")
		}
		if !opt.OnLattice(lo) || !opt.OnLattice(hi) {
			return Parameter{}, sqlerr.InvalidParameterSelection(raw, "range bounds do not lie on the configured increment")
		}
		lower, upper = lo, hi
	}
	anyOpts := []paramoptions.Option{opt}
	return Parameter{Config: c, Enabled: true, VisibleOptions: anyOpts, SelectedLower: lower, SelectedUpper: upper}, nil
}

// --- Text -------------------------------------------------------------------

type TextParameterConfig struct {
	NameVal        string
	LabelVal       string
	DescriptionVal string
	UserAttr       string
	HasUserAttr    bool
	ParentNameVal  string
	HasParent      bool
	Options        []paramoptions.TextParameterOption
}

func (c *TextParameterConfig) Name() string                 { return c.NameVal }
func (c *TextParameterConfig) Label() string                { return c.LabelVal }
func (c *TextParameterConfig) Description() string          { return c.DescriptionVal }
func (c *TextParameterConfig) WidgetType() WidgetType       { return WidgetText }
func (c *TextParameterConfig) UserAttribute() (string, bool) { return c.UserAttr, c.HasUserAttr }
func (c *TextParameterConfig) ParentName() (string, bool)    { return c.ParentNameVal, c.HasParent }

func (c *TextParameterConfig) WithSelection(raw string, user auth.User, parent *Parameter) (Parameter, error) {
	userVal, ok := userGroupValue(c.UserAttr, c.HasUserAttr, user)
	if !ok {
		return Parameter{Config: c, Enabled: false}, nil
	}
	visible := filterOptions(c.Options, userVal, parentSelectedIDs(parent))
	if len(visible) == 0 {
		return Parameter{Config: c, Enabled: false}, nil
	}
	opt := visible[0]

	text := opt.Default
	if raw != "" {
		if err := validateTextInput(string(opt.InputType), raw); err != nil {
			return Parameter{}, err
		}
		text = raw
	}
	anyOpts := []paramoptions.Option{opt}
	return Parameter{Config: c, Enabled: true, VisibleOptions: anyOpts, SelectedText: text}, nil
}
