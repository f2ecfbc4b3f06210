package handlers

import (
	"context"
	"net/http"
	"time"

	"steam4all/internal/logger"
)

// Pinger is anything the health check should reach
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports whether the stores behind the player respond
type HealthHandler struct {
	checks map[string]Pinger
	log    *logger.Logger
}

// NewHealthHandler creates a health handler over the named checks
func NewHealthHandler(checks map[string]Pinger, log *logger.Logger) *HealthHandler {
	return &HealthHandler{checks: checks, log: log}
}

// Health answers 200 when every check passes and 503 otherwise
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check.PingContext(ctx); err != nil {
			h.log.Warn("health check failed", "check", name, "error", err)
			results[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	writeJSON(w, h.log, status, map[string]interface{}{"status": overall, "checks": results})
}
