package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dshen0/predboard/internal/domain"
)

// MarketLister is the read path into the market snapshot.
type MarketLister interface {
	List(ctx context.Context) ([]domain.MarketRecord, error)
}

// MarketHandler serves the market snapshot endpoints.
type MarketHandler struct {
	markets MarketLister
	logger  *slog.Logger
}

// NewMarketHandler creates a MarketHandler.
func NewMarketHandler(markets MarketLister, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		markets: markets,
		logger:  logger.With(slog.String("handler", "markets")),
	}
}

// ListMarkets returns the current snapshot as a bare JSON array, ordered by
// total volume descending with ended markets filtered out.
// GET /api/markets
func (h *MarketHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	records, err := h.markets.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list markets failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to load markets")
		return
	}

	writeJSON(w, http.StatusOK, records)
}
