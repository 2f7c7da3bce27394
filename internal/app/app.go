// Package app wires the ingestion pipeline, storage, and API server together
// and manages their lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshen0/predboard/internal/config"
	"github.com/dshen0/predboard/internal/ingest"
	"github.com/dshen0/predboard/internal/server"
	"github.com/dshen0/predboard/internal/server/handler"
	"github.com/dshen0/predboard/internal/server/ws"
	"github.com/dshen0/predboard/internal/service"
)

// App is the root application object. It owns the configuration, logger, and
// cleanup functions called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates an App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run wires all dependencies, starts the refresh loop, the archiver, the
// WebSocket hub, and the HTTP server, and blocks until the context is
// cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("log_level", a.cfg.LogLevel),
		slog.Duration("refresh_interval", a.cfg.Refresh.IntervalDuration()),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	g, ctx := errgroup.WithContext(ctx)

	var alerter ingest.Alerter
	if deps.Notifier != nil {
		alerter = deps.Notifier
	}

	refresher := ingest.NewRefresher(ingest.Options{
		Store:     deps.MarketStore,
		Adapters:  deps.Adapters,
		Locks:     deps.LockManager,
		Bus:       deps.SignalBus,
		Alerter:   alerter,
		Interval:  a.cfg.Refresh.IntervalDuration(),
		Timeout:   a.cfg.Refresh.RequestTimeoutDuration(),
		Staleness: a.cfg.Refresh.StalenessThreshold(),
		Logger:    a.logger,
	})
	g.Go(func() error {
		return refresher.RunLoop(ctx)
	})

	archiver := ingest.NewArchiver(deps.MarketStore, deps.BlobWriter, alerter, a.cfg.Refresh.RetentionDays, a.logger)
	g.Go(func() error {
		return archiver.RunCron(ctx, a.cfg.Refresh.ArchiveCron)
	})

	hub := ws.NewHub(deps.SignalBus, a.logger)
	g.Go(func() error {
		return hub.Run(ctx)
	})

	marketSvc := service.NewMarketService(deps.MarketStore, a.logger)

	srv := server.NewServer(
		server.Config{
			Port:        a.cfg.Server.Port,
			CORSOrigins: a.cfg.Server.CORSOrigins,
		},
		server.Handlers{
			Health:  handler.NewHealthHandler(marketSvc, a.logger),
			Markets: handler.NewMarketHandler(marketSvc, a.logger),
			Refresh: handler.NewRefreshHandler(refresher, marketSvc, a.logger),
		},
		hub,
		a.logger,
	)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close tears down all resources in reverse registration order. Safe to call
// more than once.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
