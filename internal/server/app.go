// Package server wires configuration, storage, the registration service and
// the network listeners into a runnable application.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/anonid/internal/logging"
	"github.com/dmitrijs2005/anonid/internal/server/archive"
	"github.com/dmitrijs2005/anonid/internal/server/config"
	"github.com/dmitrijs2005/anonid/internal/server/metrics"
	"github.com/dmitrijs2005/anonid/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/anonid/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/anonid/internal/server/grpc"
)

const shutdownTimeout = 5 * time.Second

var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}
	newPostgresManager = repomanager.NewPostgresRepositoryManager
	newS3Archive       = func(ctx context.Context, o archive.S3Options) (archive.Archive, error) {
		return archive.NewS3Archive(ctx, o)
	}
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	metrics  *metrics.Metrics
	registry *services.RegistrationService
}

// NewApp validates c and builds every component. Without a DSN the registry
// lives in memory and is lost on exit.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger, err := logging.New(c.LogLevel, c.LogFormat, os.Stdout)
	if err != nil {
		return nil, err
	}

	var (
		db *sql.DB
		rm repomanager.RepositoryManager
	)
	if c.DatabaseDSN != "" {
		db, err = openDB(c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db ping error: %w", err)
		}
		rm = newPostgresManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	} else {
		logger.Warn(ctx, "No database configured, registrations are kept in memory")
		rm = repomanager.NewMemoryRepositoryManager()
	}

	var arch archive.Archive = archive.Nop{}
	if c.ArchiveEnabled {
		arch, err = newS3Archive(ctx, archive.S3Options{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			closeDB(db)
			return nil, fmt.Errorf("archive init error: %w", err)
		}
	}

	met := metrics.New()
	registry, err := services.NewRegistrationService(db, rm, arch, met, logger, c)
	if err != nil {
		closeDB(db)
		return nil, err
	}
	if err := registry.Init(ctx); err != nil {
		closeDB(db)
		return nil, err
	}

	return &App{config: c, logger: logger, db: db, metrics: met, registry: registry}, nil
}

func closeDB(db *sql.DB) {
	if db != nil {
		_ = db.Close()
	}
}

func (app *App) initSignalHandler(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
}

func (app *App) startGRPCServer(ctx context.Context) error {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.registry, app.config.SecretKey)
	return s.Run(ctx)
}

func (app *App) startMetricsServer(ctx context.Context) error {
	if app.config.MetricsAddr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", app.metrics.Handler())
	srv := &http.Server{Addr: app.config.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting metrics server", "address", app.config.MetricsAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run serves gRPC and metrics until ctx is canceled, a termination signal
// arrives or one of the listeners fails.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := app.initSignalHandler(ctx)
	defer stop()
	defer closeDB(app.db)

	app.logger.Info(ctx, "Starting app...",
		"base_difficulty", app.config.BaseDifficulty,
		"algorithm", app.config.Algorithm)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.startGRPCServer(ctx) })
	g.Go(func() error { return app.startMetricsServer(ctx) })

	err := g.Wait()
	app.logger.Info(context.Background(), "App stopped")
	return err
}
