package report

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/metric"
	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/storage/memory"
)

func TestHandleReport_Success(t *testing.T) {
	store := memory.New()
	defer store.Close()

	err := store.Insert(context.Background(), []metric.Record{
		{MetricID: 7, DateTime: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), AggDay: 10, AggMonth: 1, AggYear: 2024},
	})
	require.NoError(t, err)

	handler := NewHandler(store)
	req := httptest.NewRequest("GET", "/v1/report?metricId=7&dateInitial=2024-01-01&finalDate=2024-01-31", nil)
	w := httptest.NewRecorder()

	handler.HandleReport(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	require.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=metrics-report-")
	require.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(w.Body)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestHandleReport_UniqueFilenames(t *testing.T) {
	store := memory.New()
	defer store.Close()

	err := store.Insert(context.Background(), []metric.Record{
		{MetricID: 7, DateTime: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), AggDay: 10, AggMonth: 1, AggYear: 2024},
	})
	require.NoError(t, err)

	handler := NewHandler(store)
	dispositions := make(map[string]bool)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/v1/report?metricId=7&dateInitial=2024-01-01&finalDate=2024-01-31", nil)
		w := httptest.NewRecorder()
		handler.HandleReport(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		dispositions[w.Header().Get("Content-Disposition")] = true
	}
	require.Len(t, dispositions, 3, "each download should carry a distinct filename")
}

func TestHandleReport_NoData(t *testing.T) {
	store := memory.New()
	defer store.Close()

	handler := NewHandler(store)
	req := httptest.NewRequest("GET", "/v1/report?metricId=42&dateInitial=2024-01-01&finalDate=2024-01-31", nil)
	w := httptest.NewRecorder()

	handler.HandleReport(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Empty(t, w.Header().Get("Content-Disposition"))
}

func TestHandleReport_BadRequests(t *testing.T) {
	store := memory.New()
	defer store.Close()
	handler := NewHandler(store)

	tests := []struct {
		name  string
		query string
	}{
		{"missing metricId", "dateInitial=2024-01-01&finalDate=2024-01-31"},
		{"bad date", "metricId=7&dateInitial=not-a-date&finalDate=2024-01-31"},
		{"inverted range", "metricId=7&dateInitial=2024-02-01&finalDate=2024-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/v1/report?"+tt.query, nil)
			w := httptest.NewRecorder()

			handler.HandleReport(w, req)

			require.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
