package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/samhitalabs/sync/internal/auth"
	"github.com/samhitalabs/sync/internal/config"
	"github.com/samhitalabs/sync/internal/core"
	"github.com/samhitalabs/sync/internal/logging"
	"github.com/samhitalabs/sync/internal/session"
	"github.com/samhitalabs/sync/internal/web"
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
		"db_max_conns", cfg.Database.MaxConns,
		"upload_max_file_size", cfg.Upload.MaxFileSize,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	// Optional insight threshold overrides
	thresholds, err := config.LoadThresholds(cfg.Analysis.ThresholdsFile)
	if err != nil {
		slog.Error("failed to load analysis thresholds", "error", err)
		os.Exit(1)
	}

	// Parse and configure connection pool
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	// Connect to database
	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		dbName := strings.TrimPrefix(u.Path, "/")
		slog.Info("connected to database", "name", dbName)
	} else {
		slog.Info("connected to database")
	}

	// User accounts
	users := auth.NewStore(pool)
	if err := users.EnsureSchema(ctx); err != nil {
		slog.Error("failed to create users schema", "error", err)
		os.Exit(1)
	}
	if cfg.Security.SeedUserEmail != "" {
		if err := users.CreateUser(ctx, cfg.Security.SeedUserEmail, cfg.Security.SeedUserPassword); err != nil {
			slog.Error("failed to seed initial user", "error", err)
			os.Exit(1)
		}
		slog.Info("seed user ensured", "email", cfg.Security.SeedUserEmail)
	}

	// In-memory dataset sessions
	sessions := session.New(cfg.Session.DatasetTTL, slog.Default())

	// Create service with config
	service := core.NewService(core.Options{
		Pool:           pool,
		Sessions:       sessions,
		Thresholds:     thresholds,
		MaxFileSize:    cfg.Upload.MaxFileSize,
		AllowSnapshots: cfg.Upload.AllowSnapshots,
		Logger:         slog.Default(),
	})
	if err := service.EnsureSchema(ctx); err != nil {
		slog.Error("failed to create uploads schema", "error", err)
		os.Exit(1)
	}

	// Create server with config
	server := web.NewServer(service, users, cfg)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())

	// Sweep idle dataset sessions in the background
	go sessions.Run(jobCtx, cfg.Session.CleanupInterval)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	// Start server (uses addr from config internally)
	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
