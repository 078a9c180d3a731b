// Package server initializes and runs the vault server. It selects the
// storage backend, wires the services, and runs the gRPC and admin HTTP
// endpoints until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/glider/internal/cryptox"
	"github.com/dmitrijs2005/glider/internal/logging"
	"github.com/dmitrijs2005/glider/internal/server/admin"
	"github.com/dmitrijs2005/glider/internal/server/auth"
	"github.com/dmitrijs2005/glider/internal/server/config"
	"github.com/dmitrijs2005/glider/internal/server/generator"
	"github.com/dmitrijs2005/glider/internal/server/metrics"
	"github.com/dmitrijs2005/glider/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/glider/internal/server/services"
	"github.com/dmitrijs2005/glider/internal/server/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/glider/internal/server/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	cache  *redis.Client
	grpc   *gs.GRPCServer
	admin  *admin.Server
}

// redisPinger adapts a Redis client to admin.Pinger.
type redisPinger struct {
	c *redis.Client
}

func (p redisPinger) PingContext(ctx context.Context) error {
	return p.c.Ping(ctx).Err()
}

// openRepositories connects to PostgreSQL and migrates it, or falls back to
// process memory when no DSN is configured.
func openRepositories(ctx context.Context, c *config.Config, logger logging.Logger) (repomanager.RepositoryManager, *sql.DB, error) {
	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "No database configured, passwords are kept in memory")
		return repomanager.NewMemoryRepositoryManager(), nil, nil
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("db migration error: %w", err)
	}

	return rm, db, nil
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.New(os.Stdout, c.LogLevel)

	repos, db, err := openRepositories(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	sealer, err := cryptox.NewSealer(c.MasterKey())
	if err != nil {
		return nil, fmt.Errorf("vault key error: %w", err)
	}

	vault := services.NewVaultService(repos, generator.New(c.Bounds()), sealer, services.NewEventLog(repos), logger)
	devices := services.NewDeviceService(repos, logger)
	archive := services.NewArchiveService(vault, c, logger)
	binder := session.NewBinder(auth.NewJWTVerifier(c.SecretKey), devices, logger)

	collector := metrics.NewCollector()
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collector,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := []gs.Option{gs.WithMetrics(collector)}
	checks := map[string]admin.Pinger{}
	if db != nil {
		checks["postgres"] = db
	}

	var cache *redis.Client
	if c.RedisURL != "" {
		ropts, err := redis.ParseURL(c.RedisURL)
		if err != nil {
			if db != nil {
				db.Close()
			}
			return nil, fmt.Errorf("redis url error: %w", err)
		}
		cache = redis.NewClient(ropts)
		opts = append(opts, gs.WithIdempotency(cache, c.IdempotencyTTL, sealer))
		checks["redis"] = redisPinger{cache}
	}

	return &App{
		config: c,
		logger: logger,
		db:     db,
		cache:  cache,
		grpc:   gs.NewGRPCServer(c.EndpointAddrGRPC, logger, vault, devices, archive, binder, opts...),
		admin:  admin.NewServer(c.EndpointAddrHTTP, admin.NewRouter(registry, checks), logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpc.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startAdminServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.admin.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) close(ctx context.Context) {
	if app.cache != nil {
		if err := app.cache.Close(); err != nil {
			app.logger.Error(ctx, "redis close error", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}
}

// Run serves until ctx is done, a shutdown signal arrives, or one of the
// endpoints fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startAdminServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close(context.WithoutCancel(ctx))
	app.logger.Info(ctx, "App stopped")
}
