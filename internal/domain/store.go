package domain

import (
	"context"
	"io"
	"time"
)

// MarketStore persists canonical market records keyed by (platform, external
// id). Implementations must treat UpsertMany as idempotent: re-writing an
// identical record leaves one row and only advances last_updated.
type MarketStore interface {
	// UpsertMany bulk-writes records, inserting new (platform, external id)
	// pairs and refreshing existing ones. Safe to call with zero records.
	UpsertMany(ctx context.Context, records []MarketRecord) error

	// GetAll returns every record whose end date has not passed (relative to
	// the start of the current day; NULL end dates always included), ordered
	// by total volume descending.
	GetAll(ctx context.Context) ([]MarketRecord, error)

	// DeleteOlderThan purges records whose last_updated precedes cutoff and
	// returns the number removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteStale purges records not touched within the trailing threshold
	// window and returns the number removed.
	DeleteStale(ctx context.Context, threshold time.Duration) (int64, error)

	// ListOlderThan returns records whose last_updated precedes cutoff,
	// oldest first, for archival before an age-based purge. A limit <= 0
	// returns all matching records.
	ListOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]MarketRecord, error)

	// Count returns the total number of stored records.
	Count(ctx context.Context) (int64, error)
}

// SignalBus is a lightweight pub/sub fabric between the ingestion pipeline
// and the dashboard push layer.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// LockManager hands out expiring mutual-exclusion locks so a refresh cycle is
// never run twice concurrently, including across replicas.
type LockManager interface {
	// Acquire returns an unlock func on success, or ErrLockHeld when another
	// holder owns the key.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// BlobWriter writes objects to cold storage.
type BlobWriter interface {
	// Put uploads a small object in one request.
	Put(ctx context.Context, path string, data io.Reader, contentType string) error

	// PutStream uploads an object of unknown size via multipart upload.
	PutStream(ctx context.Context, path string, data io.Reader) error
}
