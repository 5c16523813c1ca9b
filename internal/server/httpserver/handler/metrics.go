package handler

import (
	"io"
	"net/http"

	"github.com/prometheus/common/expfmt"

	"github.com/yndnr/validator-node/internal/core/domain"
)

// metricsUnavailable is the body returned when no batch can be exported.
const metricsUnavailable = "unable to pop metrics from HistogramRelay"

// handleMetrics handles GET /metrics.
func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if h.metrics == nil {
		h.writeMetricsError(w)
		return
	}

	body, err := h.metrics.Export()
	if err != nil {
		h.logger.Debug("metrics export failed", "error", err)
		h.writeMetricsError(w)
		return
	}

	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, body)
}

func (h *Handler) writeMetricsError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Error-Code", domain.ErrInternal.Code)
	w.WriteHeader(http.StatusInternalServerError)
	io.WriteString(w, metricsUnavailable)
}
