package ingest

import (
	"fmt"
	"strconv"
	"time"

	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/metric"
)

// TimeLayout is the strict timestamp format required in uploaded files,
// e.g. "31/12/2024 23:59". Rows that don't match it are discarded.
const TimeLayout = "02/01/2006 15:04"

// Expected column names in the CSV header row.
const (
	colMetricID = "metricId"
	colDateTime = "dateTime"
	colAggDay   = "aggDay"
	colAggMonth = "aggMonth"
	colAggYear  = "aggYear"
)

// NormalizeRow converts one parsed CSV row (column name → raw text) into a
// record ready to store. A non-nil error is a discard signal for that row
// only, never a reason to abort the import.
//
// Only the timestamp can cause a discard. Everything else is normalized:
// an unusable metricId becomes the 0 sentinel, unusable aggregation fields
// fall back to their defaults (1 for day/month, now's calendar year for year).
func NormalizeRow(row map[string]string, now time.Time) (metric.Record, error) {
	ts, err := time.Parse(TimeLayout, row[colDateTime])
	if err != nil {
		return metric.Record{}, fmt.Errorf("invalid dateTime %q: %w", row[colDateTime], err)
	}

	return metric.Record{
		MetricID: normalizeMetricID(row[colMetricID]),
		DateTime: ts,
		AggDay:   normalizeAgg(row[colAggDay], 1),
		AggMonth: normalizeAgg(row[colAggMonth], 1),
		AggYear:  normalizeAgg(row[colAggYear], now.Year()),
	}, nil
}

func normalizeMetricID(raw string) int {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return metric.InvalidMetricID
	}
	return id
}

func normalizeAgg(raw string, def int) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
