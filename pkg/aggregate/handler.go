package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/config"
	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/httpx"
	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/metric"
	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/storage"
)

// Handler handles aggregation query requests
type Handler struct {
	engine *Engine
}

// NewHandler creates a new aggregation handler
func NewHandler(store storage.Store) *Handler {
	return &Handler{engine: NewEngine(store)}
}

// HandleAggregate handles GET /v1/aggregate
// Query params:
//   - metricId: positive integer
//   - aggType: DAY, MONTH or YEAR
//   - dateInitial: ISO date (inclusive)
//   - finalDate: ISO date (inclusive, covers the whole day)
func (h *Handler) HandleAggregate(w http.ResponseWriter, r *http.Request) {
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

	granularity, err := metric.ParseGranularity(q.Get("aggType"))
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
	// Evaluated on every request, not left to an optional check
	if final.Before(start) {
		httpx.RespondErrorString(w, http.StatusBadRequest, "dateInitial must not be after finalDate")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), config.AggregateTimeout)
	defer cancel()

	buckets, err := h.engine.Aggregate(ctx, Params{
		MetricID:    metricID,
		Granularity: granularity,
		Start:       start,
		End:         final.AddDate(0, 0, 1), // finalDate is inclusive of its whole day
	})
	if err != nil {
		if errors.Is(err, metric.ErrNoData) {
			httpx.RespondError(w, http.StatusNotFound, err)
			return
		}
		log.Printf("❌ Aggregation failed: %v", err)
		httpx.RespondErrorString(w, http.StatusInternalServerError, fmt.Sprintf("aggregation failed: %v", err))
		return
	}

	httpx.RespondJSON(w, http.StatusOK, buckets)
}
