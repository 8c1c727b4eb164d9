package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Amadou-dot/infrasight-sub002/internal/domain"
	"github.com/Amadou-dot/infrasight-sub002/internal/ingest"
)

// Request bodies are bounded well above the 10k-item batch ceiling.
const maxIngestBodyBytes = 32 << 20

// IngestionHandler exposes the bulk readings endpoint.
type IngestionHandler struct {
	pipeline *ingest.Pipeline
	logger   *zap.Logger
}

func NewIngestionHandler(pipeline *ingest.Pipeline, logger *zap.Logger) *IngestionHandler {
	return &IngestionHandler{pipeline: pipeline, logger: logger}
}

// IngestBatch handles POST /data/api/v1/readings/batch. Per-item failures
// come back inside a success envelope; only a malformed or oversized request
// is a request-level error.
func (h *IngestionHandler) IngestBatch(w http.ResponseWriter, r *http.Request) {
	var req domain.IngestRequest
	if err := readBodyJSON(r, maxIngestBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if req.Readings == nil {
		writeJSON(w, http.StatusBadRequest, Fail("readings is required"))
		return
	}

	report, err := h.pipeline.Ingest(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ingest.ErrBatchTooLarge) {
			writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
			return
		}
		h.logger.Error("ingestion failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("ingestion failed"))
		return
	}

	writeJSON(w, http.StatusOK, Ok(report))
}
