package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/config"
	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/httpx"
	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/metric"
	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/storage"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler handles report download requests
type Handler struct {
	exporter *Exporter
}

// NewHandler creates a new report handler
func NewHandler(store storage.Store) *Handler {
	return &Handler{exporter: NewExporter(store)}
}

// HandleReport handles GET /v1/report
// Query params:
//   - metricId: positive integer
//   - dateInitial: ISO date (inclusive)
//   - finalDate: ISO date (inclusive, covers the whole day)
//
// Responds with an xlsx attachment under a request-unique filename.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.RespondErrorString(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()

	metricID, err := httpx.PositiveIntParam(q, "metricId")
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, err)
		return
	}
	start, err := httpx.DateParam(q, "dateInitial")
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, err)
		return
	}
	final, err := httpx.DateParam(q, "finalDate")
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, err)
		return
	}
	if final.Before(start) {
		httpx.RespondErrorString(w, http.StatusBadRequest, "dateInitial must not be after finalDate")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), config.ReportTimeout)
	defer cancel()

	// Render into memory first so error responses never follow a
	// partially written attachment.
	var buf bytes.Buffer
	result, err := h.exporter.ExportToXLSX(ctx, &buf, ExportOptions{
		MetricID: metricID,
		Start:    start,
		End:      final.AddDate(0, 0, 1), // finalDate is inclusive of its whole day
	})
	if err != nil {
		if errors.Is(err, metric.ErrNoData) {
			httpx.RespondError(w, http.StatusNotFound, err)
			return
		}
		log.Printf("❌ Report generation failed: %v", err)
		httpx.RespondErrorString(w, http.StatusInternalServerError, fmt.Sprintf("report generation failed: %v", err))
		return
	}

	filename := fmt.Sprintf("metrics-report-%s.xlsx", uuid.NewString())
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("⚠️  Report download interrupted: %v", err)
		return
	}

	log.Printf("✅ Exported %d records for metric %d (%s) as %s",
		result.RecordsExported, metricID, result.TimeRange, filename)
}
