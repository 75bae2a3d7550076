package clients

import (
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// parseDate accepts ISO-8601 timestamps, with or without zone, and plain dates.
// Values without a zone are read as UTC.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// later reports whether a is strictly after b. A missing or unparsable date on
// either side makes the comparison false, so such a record never takes over a
// profile and is never taken over by date either.
func later(a, b string) bool {
	ta, okA := parseDate(a)
	tb, okB := parseDate(b)
	return okA && okB && ta.After(tb)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
