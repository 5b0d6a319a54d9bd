package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/adapter/web"
	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/config"
	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/dataset"
	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/observability"
	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/pipeline"
	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// The dataset is immutable for the life of the process; everything
	// downstream shares this one store.
	start := time.Now()
	store, err := dataset.Load(cfg.DataFile, dataset.LoadOptions{GeoLevel: cfg.GeoLevel})
	if err != nil {
		logger.Error("dataset load failed", "error", err)
		os.Exit(1)
	}
	metrics.RecordsLoaded.Set(float64(store.Len()))
	metrics.RowsSkippedOnLoad.Set(float64(store.SkippedRows()))
	metrics.LoadDurationSeconds.Set(time.Since(start).Seconds())
	logger.Info("dataset loaded",
		"path", cfg.DataFile,
		"records", store.Len(),
		"skipped_rows", store.SkippedRows(),
		"categories", len(store.Categories()),
		"value_types", len(store.ValueTypes()),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	deriver := pipeline.New(store, cfg.Palette, cfg.BinCount, logger, metrics)
	sessions := session.NewRegistry(store, deriver, clockwork.NewRealClock(),
		cfg.SessionTTL, cfg.SessionLimit, logger, metrics)

	srv := web.NewServer(cfg.HTTPAddr, store, sessions, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Evict idle sessions until shutdown.
	go sessions.Sweep(ctx, cfg.SweepInterval)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
