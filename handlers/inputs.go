// Package handlers implements the thin C8 request handlers: parse
// inputs, resolve the user, invoke C2/C6, return response DTOs, per spec
// section 4.8 and the route table in spec section 6. Grounded on the
// teacher's controller/response pairing style.
package handlers

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/forbearing/flowquery/config"
	"github.com/forbearing/flowquery/dataset"
	"github.com/forbearing/flowquery/sqlerr"
	"github.com/gin-gonic/gin"
)

const reservedPrefix = "x_"

// requestInputs is every reserved key plus the free-form selection map
// parsed from one request, per spec section 6.
type requestInputs struct {
	selections   map[string]string
	verifyParams bool
	parentParam  string
	hasParent    bool
	opts         dataset.RenderOptions
}

func parseInputs(c *gin.Context) (requestInputs, error) {
	raw := make(map[string]string)
	for k, v := range c.Request.URL.Query() {
		if len(v) > 0 {
			raw[k] = v[0]
		}
	}
	if c.Request.Method == "POST" && strings.Contains(c.GetHeader("Content-Type"), "application/json") {
		var body map[string]string
		if err := c.ShouldBindJSON(&body); err == nil {
			for k, v := range body {
				raw[k] = v
			}
		}
	}

	in := requestInputs{selections: make(map[string]string)}
	in.opts.Orientation = dataset.OrientationRecords
	in.opts.Limit = config.App.Limits.DefaultLimit

	for k, v := range raw {
		if !strings.HasPrefix(k, reservedPrefix) {
			in.selections[k] = v
			continue
		}
		switch k {
		case "x_verify_params":
			in.verifyParams = v == "true" || v == "1"
		case "x_parent_param":
			in.parentParam = v
			in.hasParent = true
		case "x_orientation":
			in.opts.Orientation = dataset.Orientation(v)
		case "x_offset":
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return in, sqlerr.InvalidInput("x_offset must be a non-negative integer")
			}
			in.opts.Offset = n
		case "x_limit":
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return in, sqlerr.InvalidInput("x_limit must be a non-negative integer")
			}
			if n > config.App.Limits.MaxLimit {
				n = config.App.Limits.MaxLimit
			}
			in.opts.Limit = n
		case "x_sql_query":
			in.opts.PostSQL = v
		case "x_select":
			cols, err := splitSelect(v)
			if err != nil {
				return in, err
			}
			in.opts.Select = cols
		default:
			return in, sqlerr.InvalidInput("unrecognized reserved key %q", k)
		}
	}

	if o := c.GetHeader("x-orientation"); o != "" {
		in.opts.Orientation = dataset.Orientation(o)
	}

	switch in.opts.Orientation {
	case dataset.OrientationRecords, dataset.OrientationRows, dataset.OrientationColumns:
	default:
		return in, sqlerr.InvalidInput("x_orientation must be one of records|rows|columns")
	}

	return in, nil
}

func splitSelect(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "[") {
		var items []string
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return nil, sqlerr.InvalidInput("x_select is not a valid JSON array")
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
