package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dshen0/predboard/internal/domain"
)

// CycleRunner triggers one synchronous refresh cycle.
type CycleRunner interface {
	RunCycle(ctx context.Context) (domain.CycleSummary, error)
}

// RefreshHandler serves the manual-refresh endpoint.
type RefreshHandler struct {
	runner  CycleRunner
	markets MarketLister
	logger  *slog.Logger
}

// NewRefreshHandler creates a RefreshHandler.
func NewRefreshHandler(runner CycleRunner, markets MarketLister, logger *slog.Logger) *RefreshHandler {
	return &RefreshHandler{
		runner:  runner,
		markets: markets,
		logger:  logger.With(slog.String("handler", "refresh")),
	}
}

// refreshResponse pairs the cycle outcome with the refreshed snapshot.
type refreshResponse struct {
	Cycle   domain.CycleSummary   `json:"cycle"`
	Markets []domain.MarketRecord `json:"markets"`
}

// TriggerRefresh runs one refresh cycle synchronously and returns the cycle
// summary together with the refreshed snapshot. Returns 409 when a cycle is
// already in flight.
// POST /api/refresh
func (h *RefreshHandler) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	summary, err := h.runner.RunCycle(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrCycleInProgress) {
			writeError(w, http.StatusConflict, "refresh already in progress")
			return
		}
		h.logger.ErrorContext(r.Context(), "manual refresh failed", slog.String("error", err.Error()))
		writeError(w, http.StatusBadGateway, "refresh cycle failed")
		return
	}

	records, err := h.markets.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list after refresh failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to load markets")
		return
	}

	writeJSON(w, http.StatusOK, refreshResponse{
		Cycle:   summary,
		Markets: records,
	})
}
