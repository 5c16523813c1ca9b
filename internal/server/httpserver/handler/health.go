package handler

import "net/http"

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.health != nil && h.health.IsShutdown() {
		h.writeJSON(w, r, http.StatusServiceUnavailable, HealthResponse{Status: "shutting_down"})
		return
	}
	h.writeJSON(w, r, http.StatusOK, HealthResponse{Status: "healthy"})
}
