package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/xbrlmap/internal/config"
	"github.com/JonMunkholm/xbrlmap/internal/core"
	"github.com/JonMunkholm/xbrlmap/internal/logging"
	"github.com/JonMunkholm/xbrlmap/internal/metrics"
	"github.com/JonMunkholm/xbrlmap/internal/source"
	"github.com/JonMunkholm/xbrlmap/internal/taxonomy"
	"github.com/JonMunkholm/xbrlmap/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"taxonomy_source", cfg.Taxonomy.Source,
		"load_concurrency", cfg.Taxonomy.LoadConcurrency,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("configuration", "config", cfg.String())

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		if m, err = metrics.New(); err != nil {
			slog.Error("failed to create metrics", "error", err)
			os.Exit(1)
		}
	}

	ctx := context.Background()

	var (
		src     source.Source
		dirSrc  *source.DirSource
		cleanup = func() {}
	)
	switch cfg.Taxonomy.Source {
	case config.SourcePostgres:
		pool, err := connect(ctx, cfg)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		cleanup = pool.Close

		pg := source.NewPostgresSource(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			slog.Error("failed to create taxonomy table", "error", err)
			pool.Close()
			os.Exit(1)
		}
		src = pg
	default:
		dirSrc, err = source.NewDirSource(cfg.Taxonomy.Dir, cfg.Taxonomy.Glob)
		if err != nil {
			slog.Error("failed to open taxonomy directory", "error", err)
			os.Exit(1)
		}
		src = dirSrc
	}
	defer cleanup()

	var taxOpts []taxonomy.Option
	if cfg.Taxonomy.RejectOpenHypercubes {
		taxOpts = append(taxOpts, taxonomy.RejectOpenHypercubes())
	}
	if cfg.Taxonomy.UTRFile != "" {
		taxOpts = append(taxOpts, taxonomy.WithUnitRegistry(taxonomy.UnitRegistryFromFile(cfg.Taxonomy.UTRFile)))
	}

	service := core.NewService(taxonomy.Default, src, core.Options{
		Concurrency:     cfg.Taxonomy.LoadConcurrency,
		LoadTimeout:     cfg.Taxonomy.LoadTimeout,
		Metrics:         m,
		TaxonomyOptions: taxOpts,
	})

	// Failed documents are logged and skipped; the rest are served.
	loadCtx, cancelLoad := context.WithTimeout(ctx, cfg.Taxonomy.LoadTimeout)
	report, err := service.LoadAll(loadCtx)
	cancelLoad()
	if err != nil {
		slog.Error("failed to load taxonomies", "error", err)
		cleanup()
		os.Exit(1)
	}
	slog.Info("taxonomies registered",
		"loaded", len(report.Loaded),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed),
	)
	for _, lt := range report.Loaded {
		slog.Debug("taxonomy", "entry_point", lt.EntryPoint, "concepts", lt.Concepts)
	}

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(ctx)
	defer cancelJobs()

	if cfg.Taxonomy.Watch && dirSrc != nil {
		w, err := source.NewWatcher(dirSrc, source.WatcherConfig{})
		if err != nil {
			slog.Error("failed to create taxonomy watcher", "error", err)
		} else if err := w.Start(jobCtx); err != nil {
			slog.Error("failed to start taxonomy watcher", "error", err)
		} else {
			defer w.Stop()
			go service.Watch(jobCtx, w.Events())
		}
	}

	server := web.NewServer(service, cfg, m)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop background jobs
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		return
	}
	slog.Info("server stopped")
}

// connect opens and verifies the PostgreSQL pool.
func connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	// Apply pool configuration from config
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}
