package app

import (
	"context"
	"fmt"
	"net"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/skillpath-backend/internal/http"
	"github.com/yungbote/skillpath-backend/internal/jobs"
	"github.com/yungbote/skillpath-backend/internal/observability"
	"github.com/yungbote/skillpath-backend/internal/platform/db"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	Metrics  *observability.Metrics
	Server   *http.Server
	Pool     *jobs.Pool

	otelShutdown func(context.Context) error
}

// New opens the database, applies migrations when asked and wires every
// component. Nothing runs until Run.
func New(ctx context.Context, log *logger.Logger, cfg Config, migrate bool) (*App, error) {
	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)

	theDB, err := db.Open(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if migrate {
		if err := db.Migrate(theDB, log); err != nil {
			_ = db.Close(theDB)
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	metrics := observability.New()
	reposet := wireRepos(theDB, log)

	clients, err := wireClients(ctx, log, cfg, reposet, metrics)
	if err != nil {
		_ = db.Close(theDB)
		return nil, err
	}

	serviceset, err := wireServices(theDB, log, cfg, reposet, clients, metrics)
	if err != nil {
		_ = clients.Queue.Close()
		_ = db.Close(theDB)
		return nil, err
	}

	server := http.NewServer(net.JoinHostPort("", cfg.Port), wireRouterConfig(theDB, log, cfg, serviceset, metrics))
	pool := jobs.NewPool(log, clients.Queue, serviceset.Jobs, cfg.Worker, metrics)

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Repos:        reposet,
		Clients:      clients,
		Services:     serviceset,
		Metrics:      metrics,
		Server:       server,
		Pool:         pool,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP and consumes the job queue until ctx is cancelled or one
// of them fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	a.Metrics.StartDBCollector(gctx, a.Log, a.DB, 0)
	a.Metrics.StartRedisCollector(gctx, a.Log, a.Clients.Redis, 0)
	a.Metrics.StartServer(gctx, a.Log, a.Cfg.MetricsAddr)

	g.Go(func() error {
		a.Log.Info("HTTP server listening", "port", a.Cfg.Port)
		return a.Server.Run(gctx, a.Cfg.ShutdownTimeout)
	})
	g.Go(func() error {
		return a.Pool.Run(gctx)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Clients.Queue != nil {
		_ = a.Clients.Queue.Close()
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.DB != nil {
		if err := db.Close(a.DB); err != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	a.Log.Sync()
}
