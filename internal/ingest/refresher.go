// Package ingest drives the fetch, merge, upsert, evict cycle that keeps the
// market snapshot current.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshen0/predboard/internal/domain"
	"github.com/dshen0/predboard/internal/notify"
)

// refreshLockKey is the distributed lock guarding a refresh cycle. Holding
// it across replicas keeps two processes from upserting the same snapshot
// concurrently.
const refreshLockKey = "predboard:refresh"

// SourceAdapter fetches listings from one external platform and normalizes
// them into canonical records. Fetch returns an error on any transport or
// shape failure; the refresher decides how to degrade.
type SourceAdapter interface {
	Platform() domain.Platform
	Fetch(ctx context.Context) ([]domain.MarketRecord, error)
}

// Alerter raises operator notifications for pipeline-level conditions.
type Alerter interface {
	Notify(ctx context.Context, event, title, message string) error
}

// Refresher runs refresh cycles: it fans out to every adapter concurrently,
// waits for all of them to settle, merges the results in adapter registration
// order, bulk-upserts the batch, and evicts records not seen within the
// staleness window.
//
// Cycles are serialized. The in-process mutex covers ticker ticks racing
// manual triggers; the optional distributed lock covers multiple replicas.
type Refresher struct {
	store     domain.MarketStore
	adapters  []SourceAdapter
	locks     domain.LockManager
	bus       domain.SignalBus
	alerter   Alerter
	interval  time.Duration
	timeout   time.Duration
	staleness time.Duration
	logger    *slog.Logger

	mu sync.Mutex
}

// Options configures a Refresher. Locks, Bus, and Alerter are optional.
type Options struct {
	Store     domain.MarketStore
	Adapters  []SourceAdapter
	Locks     domain.LockManager
	Bus       domain.SignalBus
	Alerter   Alerter
	Interval  time.Duration
	Timeout   time.Duration
	Staleness time.Duration
	Logger    *slog.Logger
}

// NewRefresher creates a Refresher.
func NewRefresher(opts Options) *Refresher {
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Staleness <= 0 {
		opts.Staleness = 24 * time.Hour
	}
	return &Refresher{
		store:     opts.Store,
		adapters:  opts.Adapters,
		locks:     opts.Locks,
		bus:       opts.Bus,
		alerter:   opts.Alerter,
		interval:  opts.Interval,
		timeout:   opts.Timeout,
		staleness: opts.Staleness,
		logger:    opts.Logger.With(slog.String("component", "refresher")),
	}
}

// RunLoop runs refresh cycles until the context is cancelled. The first cycle
// starts immediately; subsequent cycles fire on the interval ticker. A failed
// cycle is logged and the next tick fires regardless.
func (r *Refresher) RunLoop(ctx context.Context) error {
	if _, err := r.RunCycle(ctx); err != nil {
		r.logger.Error("refresh cycle failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("refresh loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.RunCycle(ctx); err != nil {
				r.logger.Error("refresh cycle failed", slog.String("error", err.Error()))
			}
		}
	}
}

// RunCycle executes one full cycle and reports its outcome. Adapter failures
// are absorbed (the failing source contributes zero records this cycle); a
// store write failure abandons the cycle and is returned to the caller.
func (r *Refresher) RunCycle(ctx context.Context) (domain.CycleSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.locks != nil {
		unlock, err := r.locks.Acquire(ctx, refreshLockKey, r.interval)
		if err != nil {
			if errors.Is(err, domain.ErrLockHeld) {
				return domain.CycleSummary{}, domain.ErrCycleInProgress
			}
			// A lock backend outage must not halt ingestion; the in-process
			// mutex still serializes this replica.
			r.logger.Warn("refresh lock unavailable, proceeding unlocked",
				slog.String("error", err.Error()),
			)
		} else {
			defer unlock()
		}
	}

	summary := domain.CycleSummary{
		CycleID:   uuid.NewString(),
		Sources:   len(r.adapters),
		StartedAt: time.Now().UTC(),
	}
	logger := r.logger.With(slog.String("cycle_id", summary.CycleID))

	batch, failed := r.fetchAll(ctx, logger)
	summary.Failed = failed
	summary.Records = len(batch)

	if len(batch) == 0 {
		logger.Warn("cycle produced zero records across all sources",
			slog.Int("sources", summary.Sources),
			slog.Int("failed", failed),
		)
		r.alert(ctx, notify.EventSystemicOutage, "No market data this cycle",
			fmt.Sprintf("All %d sources returned zero records (%d failed outright).", summary.Sources, failed))
		summary.Duration = time.Since(summary.StartedAt).String()
		r.publish(ctx, summary)
		return summary, nil
	}

	if err := r.store.UpsertMany(ctx, batch); err != nil {
		r.alert(ctx, notify.EventStoreError, "Market upsert failed", err.Error())
		return summary, fmt.Errorf("ingest: upsert %d records: %w", len(batch), err)
	}

	evicted, err := r.store.DeleteStale(ctx, r.staleness)
	if err != nil {
		// The snapshot is already committed; eviction retries next cycle.
		logger.Error("stale eviction failed", slog.String("error", err.Error()))
	}
	summary.Evicted = evicted
	summary.Duration = time.Since(summary.StartedAt).String()

	logger.Info("refresh cycle complete",
		slog.Int("records", summary.Records),
		slog.Int("failed_sources", summary.Failed),
		slog.Int64("evicted", summary.Evicted),
		slog.String("duration", summary.Duration),
	)

	r.publish(ctx, summary)
	return summary, nil
}

// fetchAll invokes every adapter concurrently and waits for all of them to
// settle. Results are merged in adapter registration order; a failing adapter
// contributes an empty slice.
func (r *Refresher) fetchAll(ctx context.Context, logger *slog.Logger) ([]domain.MarketRecord, int) {
	results := make([][]domain.MarketRecord, len(r.adapters))

	var wg sync.WaitGroup
	var failedMu sync.Mutex
	failed := 0

	for i, adapter := range r.adapters {
		wg.Add(1)
		go func(i int, adapter SourceAdapter) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()

			records, err := adapter.Fetch(fetchCtx)
			if err != nil {
				logger.Error("source fetch failed",
					slog.String("platform", string(adapter.Platform())),
					slog.String("error", err.Error()),
				)
				failedMu.Lock()
				failed++
				failedMu.Unlock()
				return
			}
			logger.Debug("source fetch complete",
				slog.String("platform", string(adapter.Platform())),
				slog.Int("records", len(records)),
			)
			results[i] = records
		}(i, adapter)
	}
	wg.Wait()

	var batch []domain.MarketRecord
	for _, records := range results {
		batch = append(batch, records...)
	}
	return batch, failed
}

// publish announces the cycle outcome on the signal bus. Loss of a summary is
// tolerable; clients re-sync on the next one.
func (r *Refresher) publish(ctx context.Context, summary domain.CycleSummary) {
	if r.bus == nil {
		return
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		r.logger.Error("marshal cycle summary", slog.String("error", err.Error()))
		return
	}
	if err := r.bus.Publish(ctx, domain.MarketsChannel, payload); err != nil {
		r.logger.Error("publish cycle summary", slog.String("error", err.Error()))
	}
}

func (r *Refresher) alert(ctx context.Context, event, title, message string) {
	if r.alerter == nil {
		return
	}
	if err := r.alerter.Notify(ctx, event, title, message); err != nil {
		r.logger.Error("alert delivery failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}
