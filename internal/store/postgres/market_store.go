package postgres

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dshen0/predboard/internal/domain"
)

// upsertChunkSize bounds how many statements are queued per batch round trip.
// Each chunk is sent as one pgx.Batch; a failing chunk propagates its error
// without rolling back previously applied chunks.
const upsertChunkSize = 500

// MarketStore implements domain.MarketStore using PostgreSQL. Rows are keyed
// by (platform, external_id) and last_updated is stamped server side on every
// write.
type MarketStore struct {
	pool *pgxpool.Pool
}

// NewMarketStore creates a MarketStore backed by the given connection pool.
func NewMarketStore(pool *pgxpool.Pool) *MarketStore {
	return &MarketStore{pool: pool}
}

const upsertQuery = `
	INSERT INTO markets (
		platform, external_id, question, url,
		total_volume, volume_24h, start_date, end_date,
		resolution_rules, last_updated
	) VALUES (
		$1, $2, $3, $4,
		$5, $6, $7, $8,
		$9, NOW()
	)
	ON CONFLICT (platform, external_id) DO UPDATE SET
		question         = EXCLUDED.question,
		url              = EXCLUDED.url,
		total_volume     = EXCLUDED.total_volume,
		volume_24h       = EXCLUDED.volume_24h,
		start_date       = EXCLUDED.start_date,
		end_date         = EXCLUDED.end_date,
		resolution_rules = EXCLUDED.resolution_rules,
		last_updated     = NOW()`

// UpsertMany inserts or refreshes records in chunked batches. Calling with
// zero records is a no-op.
func (s *MarketStore) UpsertMany(ctx context.Context, records []domain.MarketRecord) error {
	if len(records) == 0 {
		return nil
	}

	for chunk := range slices.Chunk(records, upsertChunkSize) {
		batch := &pgx.Batch{}
		for _, m := range chunk {
			batch.Queue(upsertQuery,
				string(m.Platform), m.ExternalID, m.Question, m.URL,
				m.TotalVolume, m.Volume24h, m.StartDate, m.EndDate,
				m.ResolutionRules,
			)
		}

		br := s.pool.SendBatch(ctx, batch)
		for i := range chunk {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("postgres: upsert market %s/%s: %w",
					chunk[i].Platform, chunk[i].ExternalID, err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("postgres: close upsert batch: %w", err)
		}
	}
	return nil
}

const marketCols = `platform, external_id, question, url,
	total_volume::text, volume_24h::text, start_date, end_date,
	resolution_rules, last_updated`

// GetAll returns records whose end date has not passed relative to the start
// of the current day, ordered by total volume descending. NULL end dates are
// always included; NUMERIC ordering, not lexicographic.
func (s *MarketStore) GetAll(ctx context.Context) ([]domain.MarketRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+marketCols+`
		FROM markets
		WHERE end_date IS NULL OR end_date >= date_trunc('day', NOW())
		ORDER BY total_volume DESC`)
	if err != nil {
		return nil, fmt.Errorf("postgres: get all markets: %w", err)
	}
	defer rows.Close()

	return scanMarkets(rows)
}

// ListOlderThan returns records whose last_updated precedes cutoff, oldest
// first. A limit <= 0 returns all matching records.
func (s *MarketStore) ListOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]domain.MarketRecord, error) {
	query := `
		SELECT ` + marketCols + `
		FROM markets
		WHERE last_updated < $1
		ORDER BY last_updated ASC`
	args := []any{cutoff}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list markets older than %v: %w", cutoff, err)
	}
	defer rows.Close()

	return scanMarkets(rows)
}

// DeleteOlderThan purges records whose last_updated precedes cutoff.
func (s *MarketStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, "DELETE FROM markets WHERE last_updated < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete markets older than %v: %w", cutoff, err)
	}
	return tag.RowsAffected(), nil
}

// DeleteStale purges records not touched within the trailing threshold
// window.
func (s *MarketStore) DeleteStale(ctx context.Context, threshold time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-threshold)
	tag, err := s.pool.Exec(ctx, "DELETE FROM markets WHERE last_updated < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete stale markets: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Count returns the total number of stored records.
func (s *MarketStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM markets").Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres: count markets: %w", err)
	}
	return count, nil
}

func scanMarkets(rows pgx.Rows) ([]domain.MarketRecord, error) {
	var records []domain.MarketRecord
	for rows.Next() {
		var m domain.MarketRecord
		var platform string
		if err := rows.Scan(
			&platform, &m.ExternalID, &m.Question, &m.URL,
			&m.TotalVolume, &m.Volume24h, &m.StartDate, &m.EndDate,
			&m.ResolutionRules, &m.LastUpdated,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan market: %w", err)
		}
		m.Platform = domain.Platform(platform)
		records = append(records, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: market rows: %w", err)
	}
	return records, nil
}
