package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/dshen0/predboard/internal/blob/s3"
	"github.com/dshen0/predboard/internal/cache/redis"
	"github.com/dshen0/predboard/internal/config"
	"github.com/dshen0/predboard/internal/domain"
	"github.com/dshen0/predboard/internal/ingest"
	"github.com/dshen0/predboard/internal/notify"
	"github.com/dshen0/predboard/internal/platform/kalshi"
	"github.com/dshen0/predboard/internal/platform/polymarket"
	"github.com/dshen0/predboard/internal/store/postgres"
)

// Dependencies bundles the concrete implementations the application needs.
// It is constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	MarketStore domain.MarketStore
	LockManager domain.LockManager
	SignalBus   domain.SignalBus
	BlobWriter  domain.BlobWriter
	Notifier    *notify.Notifier
	Adapters    []ingest.SourceAdapter
}

// Wire constructs all dependencies from the configuration. The returned
// cleanup function releases resources in reverse order and must be called on
// shutdown.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- PostgreSQL ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Database.DSN,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Database: cfg.Database.Database,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: cfg.Database.PoolMaxConns,
		MinConns: cfg.Database.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Database.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}
	deps.MarketStore = postgres.NewMarketStore(pgClient.Pool())

	// --- Redis ---
	redisClient, err := redis.Connect(ctx, redis.Options{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	deps.LockManager = redis.NewLockManager(redisClient)
	deps.SignalBus = redis.NewSignalBus(redisClient)

	// --- S3 (archival only) ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		deps.BlobWriter = s3blob.NewWriter(s3Client)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	if len(senders) > 0 {
		deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)
	}

	// --- Source adapters, in registration order ---
	timeout := cfg.Refresh.RequestTimeoutDuration()
	if cfg.Sources.Polymarket.Enabled {
		deps.Adapters = append(deps.Adapters, polymarket.NewClient(polymarket.Config{
			BaseURL: cfg.Sources.Polymarket.BaseURL,
			SiteURL: cfg.Sources.Polymarket.SiteURL,
			Limit:   cfg.Sources.Polymarket.Limit,
			Timeout: timeout,
		}))
	}
	if cfg.Sources.Kalshi.Enabled {
		deps.Adapters = append(deps.Adapters, kalshi.NewClient(kalshi.Config{
			BaseURL: cfg.Sources.Kalshi.BaseURL,
			SiteURL: cfg.Sources.Kalshi.SiteURL,
			Limit:   cfg.Sources.Kalshi.Limit,
			Timeout: timeout,
		}))
	}

	return deps, cleanup, nil
}
