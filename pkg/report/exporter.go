package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/metric"
	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/storage"
)

const (
	// SheetName is the worksheet that holds the exported rows
	SheetName = "Metrics"

	// CellDateLayout is how record timestamps appear in the sheet
	CellDateLayout = "02/01/2006"
)

// columnHeaders are the fixed report columns, in sheet order.
// "Aggday" keeps the lowercase d that downstream consumers of
// historical reports already parse against.
var columnHeaders = []string{"MetricId", "DateTime", "Aggday", "AggMonth", "AggYear"}

var columnWidths = []float64{15, 20, 15, 15, 15}

// Exporter renders stored records for a metric as an xlsx workbook
type Exporter struct {
	storage storage.Store
}

// NewExporter creates a new exporter
func NewExporter(store storage.Store) *Exporter {
	return &Exporter{storage: store}
}

// ExportOptions configures the export operation
type ExportOptions struct {
	MetricID int

	// Time range to export. End is exclusive.
	Start time.Time
	End   time.Time
}

// ExportResult describes a completed export
type ExportResult struct {
	RecordsExported int
	TimeRange       string
}

// ExportToXLSX writes a workbook with every record for the requested
// metric in the time range to w. Returns metric.ErrNoData without
// touching w when the range holds no records.
func (e *Exporter) ExportToXLSX(ctx context.Context, w io.Writer, opts ExportOptions) (*ExportResult, error) {
	records, err := e.storage.Query(ctx, storage.QueryRequest{
		MetricID: opts.MetricID,
		Start:    opts.Start,
		End:      opts.End,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	if len(records) == 0 {
		return nil, metric.ErrNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for i, header := range columnHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(SheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(SheetName, col, col, columnWidths[i]); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, rec := range records {
		if i%1000 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		row := i + 2
		values := []interface{}{
			rec.MetricID,
			rec.DateTime.Format(CellDateLayout),
			rec.AggDay,
			rec.AggMonth,
			fmt.Sprintf("%02d", rec.AggYear%100), // two-digit year, historical report format
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	return &ExportResult{
		RecordsExported: len(records),
		TimeRange: fmt.Sprintf("%s to %s",
			opts.Start.Format("2006-01-02"),
			opts.End.AddDate(0, 0, -1).Format("2006-01-02")),
	}, nil
}
