package ingest

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/config"
	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/httpx"
	"github.com/SuperMendes/greenyellow-metrics-hub/pkg/storage"
)

// Handler handles CSV import requests
type Handler struct {
	pipeline *Pipeline
	hub      *Hub
}

// NewHandler creates an import handler. hub may be nil when no WebSocket
// clients need import notifications (tests, CLI use).
func NewHandler(store storage.Store, batchSize int, hub *Hub) *Handler {
	return &Handler{
		pipeline: NewPipeline(store, batchSize),
		hub:      hub,
	}
}

// ImportEvent is broadcast to WebSocket clients when an import completes.
type ImportEvent struct {
	Type           string    `json:"type"`
	RecordsWritten int       `json:"recordsWritten"`
	RowsDiscarded  int       `json:"rowsDiscarded"`
	CompletedAt    time.Time `json:"completedAt"`
}

// HandleImport handles POST /v1/import. The upload is a multipart form
// with the CSV file in the "file" field.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.RespondErrorString(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.RespondErrorString(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	log.Printf("📥 Import started: %s (%d bytes)", header.Filename, header.Size)

	start := time.Now()
	result, err := h.pipeline.Run(r.Context(), file)
	if err != nil {
		if errors.Is(err, ErrEmptyUpload) {
			httpx.RespondError(w, http.StatusBadRequest, err)
			return
		}
		log.Printf("❌ Import of %s failed after %d batches: %v", header.Filename, result.BatchesWritten, err)
		httpx.RespondError(w, http.StatusInternalServerError, err)
		return
	}

	log.Printf("✅ Imported %d records (%d rows discarded) from %s in %v",
		result.RecordsWritten, result.RowsDiscarded, header.Filename, time.Since(start).Round(time.Millisecond))

	// Skip marshalling the event when nobody is listening
	if h.hub != nil && h.hub.HasClients() {
		h.hub.Broadcast(ImportEvent{
			Type:           "import_completed",
			RecordsWritten: result.RecordsWritten,
			RowsDiscarded:  result.RowsDiscarded,
			CompletedAt:    time.Now(),
		})
	}

	httpx.RespondJSON(w, http.StatusOK, result)
}
