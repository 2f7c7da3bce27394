// Package service holds the read-side application services.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dshen0/predboard/internal/domain"
)

// MarketService is the query view over the market store. Reads go straight to
// the store with no caching layer, so every call reflects the latest
// committed upserts.
type MarketService struct {
	markets domain.MarketStore
	logger  *slog.Logger
}

// NewMarketService creates a MarketService.
func NewMarketService(markets domain.MarketStore, logger *slog.Logger) *MarketService {
	return &MarketService{
		markets: markets,
		logger:  logger.With(slog.String("component", "market_service")),
	}
}

// List returns the current snapshot: every record whose end date has not
// passed, ordered by total volume descending. Cold starts return an empty
// slice, never nil, so the API always serves a JSON array.
func (s *MarketService) List(ctx context.Context) ([]domain.MarketRecord, error) {
	records, err := s.markets.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("market_service: list: %w", err)
	}
	if records == nil {
		records = []domain.MarketRecord{}
	}
	return records, nil
}

// Count returns the total number of stored records, including those hidden
// from List by the end-date filter.
func (s *MarketService) Count(ctx context.Context) (int64, error) {
	count, err := s.markets.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("market_service: count: %w", err)
	}
	return count, nil
}
