package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"retrocli/internal/infrastructure"
)

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	logger    *slog.Logger
	startedAt time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		logger:    logger.With(slog.String("handler", "health")),
		startedAt: time.Now(),
	}
}

// LivenessCheck handles GET /healthz
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":  "ok",
		"service": infrastructure.ServiceName,
		"version": infrastructure.ServiceVersion,
		"uptime":  time.Since(h.startedAt).String(),
	})
}

// ReadinessCheck handles GET /readyz. The service is stateless with no
// backing dependencies, so readiness equals liveness.
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	h.LivenessCheck(w, r)
}
