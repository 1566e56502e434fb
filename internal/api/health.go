package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const healthCheckTimeout = 5 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	archive   Pinger
	employees func() int
}

// NewHealthHandler creates a health handler. archive may be nil when the
// SQLite archive is disabled.
func NewHealthHandler(archive Pinger, employees func() int) *HealthHandler {
	return &HealthHandler{archive: archive, employees: employees}
}

// Health returns the health status of the API and its dependencies.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	checks := map[string]string{"api": "ok"}
	status := map[string]interface{}{
		"status": "healthy",
		"checks": checks,
	}
	statusCode := http.StatusOK

	if h.employees != nil {
		status["employees"] = h.employees()
	}

	switch {
	case h.archive == nil:
		checks["archive"] = "disabled"
	case h.archive.Ping(ctx) != nil:
		slog.Error("Health check failed", "dependency", "archive")
		status["status"] = "degraded"
		checks["archive"] = "unreachable"
		statusCode = http.StatusServiceUnavailable
	default:
		checks["archive"] = "ok"
	}

	JSON(w, statusCode, status)
}

// RegisterHealth registers the health check route.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/health", h.Health)
}
