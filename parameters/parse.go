package parameters

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/forbearing/flowquery/sqlerr"
	"github.com/shopspring/decimal"
)

// splitList parses spec section 6's "JSON array OR comma-delimited
// list" grammar, used by multi-select and the two range widgets.
func splitList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "[") {
		var items []string
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return nil, sqlerr.InvalidParameterSelection(raw, "malformed JSON array")
		}
		return items, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out, nil
}

const isoDateLayout = "2006-01-02"

func parseISODate(raw string) (string, error) {
	if _, err := time.Parse(isoDateLayout, raw); err != nil {
		return "", sqlerr.InvalidParameterSelection(raw, "expected date in YYYY-MM-DD format")
	}
	return raw, nil
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, sqlerr.InvalidParameterSelection(raw, "expected a decimal number")
	}
	return d, nil
}

// textInputFormats maps the date/time input_type tags from spec section 6
// to the Go time layout that validates a TextParameterOption's value; the
// number and color tags are checked separately in validateTextInput.
var textInputFormats = map[string]string{
	"date":           "2006-01-02",
	"datetime-local": "2006-01-02T15:04",
	"month":          "2006-01",
	"time":           "15:04",
}

var colorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func validateTextInput(inputType, raw string) error {
	switch inputType {
	case "number":
		if _, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err != nil {
			return sqlerr.InvalidParameterSelection(raw, "must be an integer, without decimals")
		}
	case "color":
		if !colorRe.MatchString(raw) {
			return sqlerr.InvalidParameterSelection(raw, "expected a #RRGGBB color")
		}
	default:
		if layout, ok := textInputFormats[inputType]; ok {
			if _, err := time.Parse(layout, raw); err != nil {
				return sqlerr.InvalidParameterSelection(raw, "value does not match the "+inputType+" format")
			}
		}
	}
	return nil
}
