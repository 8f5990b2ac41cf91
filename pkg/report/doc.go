// Package report renders stored metric records as downloadable xlsx
// workbooks.
//
// # Overview
//
// The report package serves GET /v1/report: every record for a metric
// inside a date range, one row per record, in the order the records
// were ingested. Reports are for business consumers who want the raw
// rows in a spreadsheet rather than aggregated figures.
//
// # Report Format
//
// A single worksheet named "Metrics" with five fixed columns:
//
//	MetricId | DateTime | Aggday | AggMonth | AggYear
//
// DateTime cells are formatted DD/MM/YYYY and AggYear is rendered as
// the last two digits of the year. The "Aggday" header spelling is
// part of the established report format and must not change.
//
// # HTTP API
//
// Query parameters:
//   - metricId: positive integer
//   - dateInitial: YYYY-MM-DD, inclusive
//   - finalDate: YYYY-MM-DD, inclusive (covers the whole day)
//
// Example:
//
//	curl "http://localhost:8080/v1/report?metricId=7&dateInitial=2024-01-01&finalDate=2024-01-31" \
//	  -o report.xlsx
//
// Each successful request produces a distinct attachment filename, so
// saving two downloads side by side never clobbers one with the other.
// A range with no records answers 404 and produces no workbook at all.
//
// # Programmatic Usage
//
//	exporter := report.NewExporter(store)
//	var buf bytes.Buffer
//	result, err := exporter.ExportToXLSX(ctx, &buf, report.ExportOptions{
//	    MetricID: 7,
//	    Start:    start,
//	    End:      end,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Exported %d records\n", result.RecordsExported)
package report
