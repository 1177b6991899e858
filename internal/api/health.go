package api

import (
	"context"
	"net/http"
	"time"

	"github.com/mindstash/mindstash/internal/api/respond"
)

// HealthHandler reports service liveness and storage reachability.
type HealthHandler struct {
	ping func(ctx context.Context) error
}

// NewHealthHandler wires the storage ping used by the health probe.
func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

// CheckHealth handles GET /api/health.
// Always returns 200; body reports healthy/unhealthy. 500 indicates handler failure only.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if h.ping != nil {
		if err := h.ping(r.Context()); err != nil {
			status = "unhealthy"
		}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
