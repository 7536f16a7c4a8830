package validate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/quantrelay/trade-advisor/internal/advisor/domain"
)

// checker accumulates field errors against one requirement mapping. Every
// accessor normalizes the field in place so downstream code sees typed
// values even when the field was rejected.
type checker struct {
	req  domain.Requirement
	errs []string
}

func (c *checker) fail(field, msg string) {
	c.errs = append(c.errs, field+": "+msg)
}

func (c *checker) failf(field, format string, args ...any) {
	c.fail(field, fmt.Sprintf(format, args...))
}

// requireString trims the field and requires a non-empty string.
func (c *checker) requireString(field string) string {
	raw, ok := c.req[field]
	s, isStr := raw.(string)
	s = strings.TrimSpace(s)
	if !ok || !isStr || s == "" {
		c.fail(field, "must be a non-empty string")
		c.req[field] = ""
		return ""
	}
	c.req[field] = s
	return s
}

// optionalString trims the field, falling back to def when absent or empty.
func (c *checker) optionalString(field, def string) string {
	raw, ok := c.req[field]
	if !ok {
		c.req[field] = def
		return def
	}
	s, isStr := raw.(string)
	s = strings.TrimSpace(s)
	if !isStr || s == "" {
		c.req[field] = def
		return def
	}
	c.req[field] = s
	return s
}

// enum matches the field case-insensitively against allowed values and
// stores the lowercase form. Required enums error when missing; optional
// enums default silently.
func (c *checker) enum(field string, allowed []string, def string, required bool) string {
	raw, present := c.req[field]
	s, isStr := raw.(string)
	s = strings.ToLower(strings.TrimSpace(s))

	if !present || (isStr && s == "") {
		if required {
			c.failf(field, "must be one of: %s", strings.Join(allowed, ", "))
		}
		c.req[field] = def
		return def
	}
	if !isStr {
		c.failf(field, "must be one of: %s", strings.Join(allowed, ", "))
		c.req[field] = def
		return def
	}
	for _, a := range allowed {
		if s == a {
			c.req[field] = s
			return s
		}
	}
	c.failf(field, "must be one of: %s", strings.Join(allowed, ", "))
	c.req[field] = def
	return def
}

// chain validates the chain tag. Unknown chains list the allowed set so the
// caller can self-correct.
func (c *checker) chain(field string) string {
	raw, present := c.req[field]
	s, isStr := raw.(string)
	s = strings.ToLower(strings.TrimSpace(s))

	if !present || !isStr || s == "" {
		c.failf(field, "must be one of: %s", strings.Join(supportedChains, ", "))
		c.req[field] = ""
		return ""
	}
	for _, a := range supportedChains {
		if s == a {
			c.req[field] = s
			return s
		}
	}
	c.failf(field, "unsupported chain %q (allowed: %s)", s, strings.Join(supportedChains, ", "))
	c.req[field] = s
	return s
}

// number parses a lenient numeric field and checks the declared range. The
// coerced value is stored even when out of range so synthesis never sees a
// non-number; unparseable values fall back to def.
func (c *checker) number(field string, min, max, def float64, required bool) float64 {
	raw, present := c.req[field]
	if !present || raw == nil {
		if required {
			c.fail(field, "must be a number")
		}
		c.req[field] = def
		return def
	}
	n, ok := parseLenientNumber(raw)
	if !ok {
		c.fail(field, "must be a finite number")
		c.req[field] = def
		return def
	}
	if n < min || n > max {
		c.failf(field, "must be between %s and %s", formatNum(min), formatNum(max))
	}
	c.req[field] = n
	return n
}

// stringArray requires a non-empty array of non-empty strings and stores
// the trimmed copy. allowed, when non-nil, restricts elements to a fixed
// set (lowercased); offenders are reported as one aggregated error.
func (c *checker) stringArray(field string, allowed []string) []string {
	items, ok := anySlice(c.req[field])
	if !ok || len(items) == 0 {
		c.fail(field, "must be a non-empty array")
		c.req[field] = []string{}
		return nil
	}

	out := make([]string, 0, len(items))
	var unsupported []string
	for i, item := range items {
		s, isStr := item.(string)
		s = strings.TrimSpace(s)
		if !isStr || s == "" {
			c.failf(field, "element %d must be a non-empty string", i)
			continue
		}
		if allowed != nil {
			s = strings.ToLower(s)
			if !contains(allowed, s) {
				unsupported = append(unsupported, s)
				continue
			}
		}
		out = append(out, s)
	}
	if len(unsupported) > 0 {
		c.failf(field, "unsupported values: %s (allowed: %s)",
			strings.Join(unsupported, ", "), strings.Join(allowed, ", "))
	}
	c.req[field] = out
	return out
}

// anySlice widens the slice shapes that arrive from JSON decoding.
func anySlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	default:
		return nil, false
	}
}

func contains(set []string, s string) bool {
	for _, a := range set {
		if a == s {
			return true
		}
	}
	return false
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
