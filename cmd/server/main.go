// Package main runs the read-only series API over the configured storage backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"vault-data-api/internal/api"
	"vault-data-api/internal/config"
	"vault-data-api/internal/logging"
	"vault-data-api/internal/series"
	"vault-data-api/internal/storage"
	chstore "vault-data-api/internal/storage/clickhouse"
	"vault-data-api/internal/storage/memory"
	pgstore "vault-data-api/internal/storage/postgres"
	"vault-data-api/internal/timebucket"
)

// backend holds the storage implementations behind the service.
type backend struct {
	resolver storage.IdentityResolver
	reader   storage.SeriesReader
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	configPath := flag.String("config", "configs/config.yaml", "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
	logger.Info().Msg("shutdown complete")
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	calc := timebucket.NewCalculator(timebucket.WithSnapshotInterval(cfg.Buckets.SnapshotInterval))

	b, cleanup, err := createBackend(ctx, cfg, calc, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	svc := series.NewService(b.resolver, b.reader, logging.Component(logger, "series"))
	handler := api.NewHandler(svc, logging.Component(logger, "api"))
	server := api.NewServer(handler, logging.Component(logger, "http"),
		api.WithAddr(cfg.HTTP.Addr),
		api.WithTimeouts(cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout, cfg.HTTP.ShutdownTimeout),
	)

	logger.Info().
		Str("backend", cfg.Backend).
		Dur("snapshot_interval", cfg.Buckets.SnapshotInterval).
		Msg("starting server")

	errCh := server.Start()

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	}

	// Shutdown gets its own context; ctx is already cancelled.
	return server.Stop(context.Background())
}

// createBackend opens the configured backend. The returned cleanup releases its connections.
func createBackend(ctx context.Context, cfg *config.Config, aligner storage.BucketAligner, logger zerolog.Logger) (*backend, func(), error) {
	switch cfg.Backend {
	case config.BackendMemory:
		fixtures, err := memory.LoadFixturesFile(cfg.Memory.FixturesPath)
		if err != nil {
			return nil, nil, err
		}
		return &backend{
			resolver: memory.NewIdentityStore(fixtures),
			reader:   memory.NewSeriesStore(fixtures, aligner),
		}, func() {}, nil

	case config.BackendClickhouse:
		conn, err := chstore.NewConn(ctx, cfg.Clickhouse.DSN, chstore.WithDialTimeout(cfg.Clickhouse.DialTimeout))
		if err != nil {
			return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		storeLogger := logging.Component(logger, "clickhouse")
		return &backend{
				resolver: chstore.NewIdentityStore(conn, storeLogger),
				reader:   chstore.NewSeriesStore(conn, aligner, storeLogger),
			}, func() {
				if err := conn.Close(); err != nil {
					logger.Warn().Err(err).Msg("close clickhouse")
				}
			}, nil

	default:
		pool, err := pgstore.NewPool(ctx, cfg.Postgres.DSN,
			pgstore.WithReadOnly(),
			pgstore.WithMaxConns(cfg.Postgres.MaxConns),
			pgstore.WithApplicationName(cfg.Postgres.ApplicationName),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		storeLogger := logging.Component(logger, "postgres")
		return &backend{
			resolver: pgstore.NewIdentityStore(pool, storeLogger),
			reader:   pgstore.NewSeriesStore(pool, aligner, storeLogger),
		}, pool.Close, nil
	}
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			_ = os.Setenv(key, strings.TrimSpace(value))
		}
	}
}
