// Package http serves the JSON API.
//
// This file holds the query-string helpers shared by the handlers: month
// selection with fallback to the current month, employee selection and date
// parsing.
package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pankti/internal/core"
)

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams extracts year and month from query parameters, using the
// month of now as default. Out of range months fall back to now as well.
func ParseMonthParams(query url.Values, now time.Time) MonthParams {
	params := MonthParams{
		Year:  now.Year(),
		Month: int(now.Month()),
	}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil && y > 0 {
			params.Year = y
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			params.Month = m
		}
	}

	return params
}

// Contains reports whether d falls inside the month.
func (p MonthParams) Contains(d core.Date) bool {
	return d.Year() == p.Year && int(d.Time.Month()) == p.Month
}

// ParseSelected returns the employee ids selected by repeated or comma
// separated "employee" parameters, without blanks or duplicates.
func ParseSelected(query url.Values) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, raw := range query["employee"] {
		for _, id := range strings.Split(raw, ",") {
			id = sanitizeInput(id)
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// ParseDateParam parses an optional YYYY-MM-DD parameter.
func ParseDateParam(query url.Values, key string) (core.Date, bool, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return core.Date{}, false, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, false, fmt.Errorf("%w: %s must be YYYY-MM-DD", errBadQuery, key)
	}
	return d, true, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
