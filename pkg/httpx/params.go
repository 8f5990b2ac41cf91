package httpx

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// DateLayout is the wire format for date query parameters.
const DateLayout = "2006-01-02"

// PositiveIntParam parses a required positive integer query parameter.
func PositiveIntParam(q url.Values, name string) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, raw)
	}
	return v, nil
}

// DateParam parses a required ISO date (YYYY-MM-DD) query parameter.
func DateParam(q url.Values, name string) (time.Time, error) {
	raw := q.Get(name)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", name)
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be a valid date in %s format, got %q", name, DateLayout, raw)
	}
	return t, nil
}
