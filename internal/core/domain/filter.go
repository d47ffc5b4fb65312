package domain

import (
	"strconv"
	"time"

	"go.trai.ch/zerr"
)

// DateLayout is the wire format of date-only filter values.
const DateLayout = "2006-01-02"

// zerr.With copies a sentinel instead of wrapping it, so the filter errors wrap
// ErrInvalidFilter first to keep errors.Is working.
func invalidFilter(field, value string) error {
	return zerr.With(zerr.Wrap(ErrInvalidFilter, field), "value", value)
}

func unknownFilter(field string) error {
	return zerr.With(zerr.Wrap(ErrInvalidFilter, "unknown field "+field), "field", field)
}

func parsePositive(field, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, invalidFilter(field, value)
	}
	return n, nil
}

func parseBool(field, value string) (*bool, error) {
	if value == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, invalidFilter(field, value)
	}
	return &b, nil
}

func parseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, invalidFilter(field, value)
	}
	return &t, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

// Bool returns a pointer to b, for optional boolean fields and filters.
func Bool(b bool) *bool {
	return &b
}

// String returns a pointer to s, for partial updates.
func String(s string) *string {
	return &s
}

// Int returns a pointer to n, for partial updates.
func Int(n int) *int {
	return &n
}
