package metric

import (
	"errors"
	"fmt"
	"time"
)

// InvalidMetricID is the sentinel stored when an input metric id could not be
// parsed or was non-positive. It is indistinguishable from a real "metric 0"
// on the wire, which is intentional for compatibility with existing data;
// code that wants to reject such rows should compare against this constant
// rather than a literal.
const InvalidMetricID = 0

// ErrNoData is returned by the aggregation engine and the report exporter
// when the request was valid but no stored record matched. Callers must
// treat it as a distinct condition, never as an empty successful result.
var ErrNoData = errors.New("no data found for the requested period")

// Record is a single persisted metric sample. Records are append-only:
// once stored they are never updated or deleted.
type Record struct {
	// ID is the surrogate identifier assigned by the store on insert.
	ID uint64 `json:"id"`

	// MetricID identifies the logical metric this sample belongs to.
	// InvalidMetricID (0) marks rows whose input id was unusable.
	MetricID int `json:"metricId"`

	// DateTime is the sample timestamp, minute precision.
	DateTime time.Time `json:"dateTime"`

	// Aggregation values carried by the sample. Each defaults to 1
	// (AggDay, AggMonth) or the import-time calendar year (AggYear)
	// when missing from the input.
	AggDay   int `json:"aggDay"`
	AggMonth int `json:"aggMonth"`
	AggYear  int `json:"aggYear"`
}

// Granularity is the aggregation unit requested by a caller.
type Granularity string

const (
	GranularityDay   Granularity = "DAY"
	GranularityMonth Granularity = "MONTH"
	GranularityYear  Granularity = "YEAR"
)

// ParseGranularity converts a query-parameter literal into a Granularity.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case GranularityDay, GranularityMonth, GranularityYear:
		return Granularity(s), nil
	default:
		return "", fmt.Errorf("invalid aggregation type %q (want DAY, MONTH or YEAR)", s)
	}
}

// Truncate returns the start of the period containing t at this granularity,
// in t's own calendar and location.
func (g Granularity) Truncate(t time.Time) time.Time {
	switch g {
	case GranularityDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	case GranularityMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	case GranularityYear:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
	default:
		return t
	}
}
