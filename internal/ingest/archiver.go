package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/dshen0/predboard/internal/domain"
	"github.com/dshen0/predboard/internal/notify"
)

// Archiver moves records past the retention window out of the database and
// into cold storage. Each run writes one JSON-lines object per cutoff, then
// purges the archived rows.
type Archiver struct {
	store         domain.MarketStore
	blob          domain.BlobWriter
	alerter       Alerter
	retentionDays int
	logger        *slog.Logger
}

// NewArchiver creates an Archiver. blob may be nil, in which case Run purges
// without archiving.
func NewArchiver(store domain.MarketStore, blob domain.BlobWriter, alerter Alerter, retentionDays int, logger *slog.Logger) *Archiver {
	return &Archiver{
		store:         store,
		blob:          blob,
		alerter:       alerter,
		retentionDays: retentionDays,
		logger:        logger.With(slog.String("component", "archiver")),
	}
}

// Run executes a single archive pass against records whose last_updated
// precedes now minus the retention window.
func (a *Archiver) Run(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-time.Duration(a.retentionDays) * 24 * time.Hour)
	a.logger.Info("starting archive run",
		slog.Time("cutoff", cutoff),
		slog.Int("retention_days", a.retentionDays),
	)

	if a.blob != nil {
		archived, err := a.writeArchive(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("ingest: archive markets before %v: %w", cutoff, err)
		}
		if archived == 0 {
			a.logger.Info("nothing to archive")
			return nil
		}
		a.logger.Info("archived markets", slog.Int("count", archived))
	}

	purged, err := a.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("ingest: purge markets before %v: %w", cutoff, err)
	}

	a.logger.Info("archive run complete", slog.Int64("purged", purged))
	return nil
}

// writeArchive streams all records older than cutoff into one JSON-lines
// object and updates the latest-run manifest. Returns the record count.
func (a *Archiver) writeArchive(ctx context.Context, cutoff time.Time) (int, error) {
	records, err := a.store.ListOlderThan(ctx, cutoff, 0)
	if err != nil {
		return 0, fmt.Errorf("list older than %v: %w", cutoff, err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	path := fmt.Sprintf("markets/%s.jsonl", cutoff.Format("2006-01-02T15-04-05Z"))

	pr, pw := io.Pipe()
	go func() {
		enc := json.NewEncoder(pw)
		for _, rec := range records {
			if err := enc.Encode(rec); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		pw.Close()
	}()

	if err := a.blob.PutStream(ctx, path, pr); err != nil {
		return 0, fmt.Errorf("upload %s: %w", path, err)
	}

	manifest, err := json.Marshal(map[string]any{
		"path":       path,
		"cutoff":     cutoff,
		"count":      len(records),
		"archivedAt": time.Now().UTC(),
	})
	if err != nil {
		return 0, fmt.Errorf("marshal manifest: %w", err)
	}
	if err := a.blob.Put(ctx, "markets/latest.json", strings.NewReader(string(manifest)), "application/json"); err != nil {
		// The archive object itself landed; a stale manifest is recoverable.
		a.logger.Error("manifest upload failed", slog.String("error", err.Error()))
	}

	return len(records), nil
}

// RunCron runs the archiver on a 5-field cron schedule until the context is
// cancelled. Failed runs alert and the schedule keeps going.
func (a *Archiver) RunCron(ctx context.Context, cronExpr string) error {
	a.logger.Info("archiver cron started", slog.String("cron", cronExpr))

	for {
		next, err := nextRun(cronExpr, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("ingest: %w", err)
		}

		a.logger.Info("archiver waiting for next trigger",
			slog.Time("next_run", next),
			slog.Duration("wait", time.Until(next)),
		)

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			a.logger.Info("archiver cron stopped")
			return ctx.Err()
		case <-timer.C:
			if err := a.Run(ctx); err != nil {
				a.logger.Error("archive run failed", slog.String("error", err.Error()))
				if a.alerter != nil {
					if nerr := a.alerter.Notify(ctx, notify.EventArchiveError, "Archive run failed", err.Error()); nerr != nil {
						a.logger.Error("alert delivery failed", slog.String("error", nerr.Error()))
					}
				}
			}
		}
	}
}
