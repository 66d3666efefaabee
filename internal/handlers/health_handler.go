package handlers

import (
	"net/http"

	"bably/internal/health"
)

// HealthHandler reports liveness for load balancers
type HealthHandler struct {
	checker *health.Checker
}

func NewHealthHandler(checker *health.Checker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	status := h.checker.Check(r.Context())
	code := http.StatusOK
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, status)
}
