package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router wraps the standard library ServeMux; no third-party routing needed
// for this surface.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler supports the http.Handler interface (used for /metrics).
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterIngestionRoutes wires the bulk readings endpoint.
func (r *Router) RegisterIngestionRoutes(h *IngestionHandler) {
	r.Handle("/data/api/v1/readings/batch", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.IngestBatch(w, req)
	})
}

// RegisterDeviceRoutes wires entity mutations through the dual-write path.
func (r *Router) RegisterDeviceRoutes(h *DevicesHandler) {
	r.Handle("/data/api/v1/devices", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.CreateDevice(w, req)
	})

	r.Handle("/data/api/v1/devices/", func(w http.ResponseWriter, req *http.Request) {
		id := strings.TrimPrefix(req.URL.Path, "/data/api/v1/devices/")
		if id == "" || strings.Contains(id, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch req.Method {
		case http.MethodPatch:
			h.UpdateDevice(w, req, id)
		case http.MethodDelete:
			h.DeleteDevice(w, req, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

// RegisterOpsRoutes wires the internal consistency surface.
func (r *Router) RegisterOpsRoutes(h *OpsHandler) {
	r.Handle("/ops/api/v1/health", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Health(w, req)
	})

	r.Handle("/ops/api/v1/drift", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Drift(w, req)
	})
}
