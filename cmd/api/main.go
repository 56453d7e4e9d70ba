// Package main is the entry point for the quest calendar API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lbc24/quest-calendar/internal/config"
	"github.com/lbc24/quest-calendar/internal/handler"
	"github.com/lbc24/quest-calendar/internal/middleware"
	"github.com/lbc24/quest-calendar/internal/repo"
	"github.com/lbc24/quest-calendar/internal/service"
	"github.com/lbc24/quest-calendar/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Dataset source ---------------------------------------------------
	source, closeSource, err := openDatasetSource(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to open dataset source", "source", cfg.DatasetSource, "error", err)
		os.Exit(1)
	}
	defer closeSource()
	slog.Info("dataset source ready", "source", cfg.DatasetSource)

	now := time.Now
	calendar := service.NewCalendarService(source, service.Settings{
		Location:     cfg.Location,
		DayStartHour: cfg.DayStartHour,
		Now:          now,
	})

	// Build the calendar once up front so a broken export shows in the logs
	// at startup. The server still starts: the source may be filled later
	// through POST /dataset or POST /dataset/reload.
	if err := calendar.Reload(context.Background()); err != nil {
		slog.Warn("initial dataset load failed", "error", err)
	}

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Metrics → Logger →
	// Recoverer → CORS → MaxBodySize.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// Metrics counts requests per route pattern and status class.
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewMetrics(prometheus.DefaultRegisterer))
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/", handler.NewServer(calendar, logger, handler.WithClock(now)).Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openDatasetSource builds the DatasetRepo selected by cfg.DatasetSource.
// The returned func releases whatever the source holds open.
func openDatasetSource(ctx context.Context, cfg config.Config) (repo.DatasetRepo, func(), error) {
	switch cfg.DatasetSource {
	case config.SourceS3:
		r, err := repo.NewS3DatasetRepo(ctx, repo.S3Config{
			Bucket:    cfg.S3.Bucket,
			Key:       cfg.S3.Key,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
		})
		return r, func() {}, err

	case config.SourcePostgres:
		// pgxpool manages a pool of Postgres connections.
		// New() does not open connections immediately; the first query does.
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("create database pool: %w", err)
		}
		// Verify the DB is reachable before accepting traffic.
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}

		// goose drives database/sql; share the pool's connections with it.
		db := stdlib.OpenDBFromPool(pool)
		applied, err := migrations.Up(ctx, db)
		db.Close()
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		slog.Info("database migrated", "applied", applied)
		return repo.NewPostgresDatasetRepo(pool), pool.Close, nil

	default:
		return repo.NewFileDatasetRepo(cfg.DatasetPath), func() {}, nil
	}
}
