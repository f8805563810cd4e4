// Package timex holds the canonical timestamp encoding used by the
// repositories. Timestamps are stored as fixed-width UTC text so that
// lexicographic comparison in SQL matches chronological order on both
// PostgreSQL and SQLite.
package timex

import (
	"fmt"
	"time"
)

// Layout is fixed-width: every position is zero-padded, so string order
// equals time order for UTC values.
const Layout = "2006-01-02T15:04:05.000000000Z"

// Format renders t in the canonical storage encoding.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Parse reads a timestamp in the canonical storage encoding.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("timex: parse %q: %w", s, err)
	}
	return t, nil
}

// FormatPtr renders an optional timestamp; nil maps to the empty string.
func FormatPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return Format(*t)
}

// ParsePtr reads an optional timestamp; the empty string maps to nil.
func ParsePtr(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
