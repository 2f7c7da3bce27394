package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Counter reports how many records are currently stored.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// HealthHandler serves the health-check endpoint.
type HealthHandler struct {
	counter Counter
	logger  *slog.Logger
}

// NewHealthHandler creates a HealthHandler. counter may be nil.
func NewHealthHandler(counter Counter, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{counter: counter, logger: logger}
}

// HealthCheck responds with a simple JSON status and the stored record count.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if h.counter != nil {
		if count, err := h.counter.Count(r.Context()); err == nil {
			body["markets"] = count
		} else {
			body["status"] = "degraded"
			h.logger.WarnContext(r.Context(), "health count failed", slog.String("error", err.Error()))
		}
	}

	writeJSON(w, http.StatusOK, body)
}
