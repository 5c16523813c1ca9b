package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yndnr/validator-node/internal/telemetry/logger"
)

// HealthSource reports whether the node's network client has shut down.
type HealthSource interface {
	IsShutdown() bool
}

// MetricsExporter renders one buffered metrics batch.
type MetricsExporter interface {
	Export() (string, error)
}

// Handler serves the operational endpoints.
type Handler struct {
	health  HealthSource
	metrics MetricsExporter
	logger  *slog.Logger
	mux     *http.ServeMux
}

// New creates a new Handler. A nil health source always reports healthy;
// a nil exporter makes /metrics answer 500.
func New(health HealthSource, metrics MetricsExporter, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	h := &Handler{
		health:  health,
		metrics: metrics,
		logger:  log,
		mux:     http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /metrics", h.handleMetrics)
}

// writeJSON writes data as a JSON body.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	if reqID := logger.RequestIDFromContext(r.Context()); reqID != "" {
		w.Header().Set("X-Request-ID", reqID)
	}
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
