package models

import (
	"fmt"
	"strings"
)

// Sort is a feed ordering understood by the feed sources. Compound top
// sorts carry the time period they cover.
type Sort struct {
	Order  string `json:"order" yaml:"order"`
	Period string `json:"period,omitempty" yaml:"period,omitempty"`
}

var plainSorts = map[string]struct{}{
	"hot":           {},
	"top":           {},
	"new":           {},
	"rising":        {},
	"controversial": {},
}

var topPeriods = map[string]struct{}{
	"hour":  {},
	"day":   {},
	"week":  {},
	"month": {},
	"year":  {},
	"all":   {},
}

// DefaultSort is the ordering used when none is given.
var DefaultSort = Sort{Order: "hot"}

// ConfigError reports invalid configuration: a bad sort value or an
// unreadable extraction rule table.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ParseSort accepts hot, top, new, rising, controversial and the
// top<period> forms (topday, topweek, ...).
func ParseSort(s string) (Sort, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return DefaultSort, nil
	}
	if _, ok := plainSorts[s]; ok {
		return Sort{Order: s}, nil
	}
	if period, ok := strings.CutPrefix(s, "top"); ok {
		if _, known := topPeriods[period]; known {
			return Sort{Order: "top", Period: period}, nil
		}
	}
	return Sort{}, &ConfigError{Field: "sort", Value: s}
}

func (s Sort) String() string {
	return s.Order + s.Period
}
