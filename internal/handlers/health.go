package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/cactilia/api/internal/platform/httpx"
)

// ReadinessChecker reports whether a backing dependency can serve traffic.
type ReadinessChecker func(ctx context.Context) error

// HealthHandlers serves liveness and readiness probes.
type HealthHandlers struct {
	startedAt time.Time
	ready     ReadinessChecker
}

// NewHealthHandlers constructs health handlers; a nil checker makes readiness
// unconditional.
func NewHealthHandlers(ready ReadinessChecker) *HealthHandlers {
	return &HealthHandlers{startedAt: time.Now().UTC(), ready: ready}
}

// Healthz reports process liveness.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    time.Since(h.startedAt).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Readyz reports whether backing dependencies are reachable.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			httpx.WriteError(r.Context(), w, httpx.NewError("not_ready", err.Error(), http.StatusServiceUnavailable))
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}
