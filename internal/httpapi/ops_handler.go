package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Amadou-dot/infrasight-sub002/internal/audit"
)

// OpsHandler exposes the internal consistency surface to operational
// tooling. Plain JSON, no frontend envelope.
type OpsHandler struct {
	auditor *audit.Auditor
	logger  *zap.Logger
}

func NewOpsHandler(auditor *audit.Auditor, logger *zap.Logger) *OpsHandler {
	return &OpsHandler{auditor: auditor, logger: logger}
}

// Health handles GET /ops/api/v1/health.
func (h *OpsHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := h.auditor.Health(r.Context())
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

// Drift handles GET /ops/api/v1/drift.
func (h *OpsHandler) Drift(w http.ResponseWriter, r *http.Request) {
	stats, err := h.auditor.DriftStats(r.Context())
	if err != nil {
		h.logger.Error("drift stats failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "drift stats unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
