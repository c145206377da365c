package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/JonMunkholm/operadoras/internal/config"
	"github.com/JonMunkholm/operadoras/internal/core"
	"github.com/JonMunkholm/operadoras/internal/logging"
	"github.com/JonMunkholm/operadoras/internal/web"
)

func main() {
	// Load .env file if it exists; real environment variables win
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logCloser := logging.Setup(logging.Options{
		Level:          cfg.Logging.Level,
		Format:         cfg.Logging.Format,
		File:           cfg.Logging.File,
		FileMaxSizeMB:  cfg.Logging.FileMaxSizeMB,
		FileMaxBackups: cfg.Logging.FileMaxBackups,
		FileMaxAgeDays: cfg.Logging.FileMaxAgeDays,
	})
	defer logCloser.Close()

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"source", cfg.Source.Path,
		"encodings", cfg.Source.Encodings,
		"reload_enabled", cfg.Cache.ReloadEnabled,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := core.NewMetrics(registry, "operadoras")

	loader, err := core.NewLoader(core.LoaderConfig{
		Encodings:   cfg.Source.Encodings,
		Delimiter:   cfg.Source.DelimiterRune(),
		InferTypes:  cfg.Source.InferTypes,
		Lenient:     cfg.Source.Lenient,
		MaxFileSize: cfg.Source.MaxFileSize,
	}, metrics)
	if err != nil {
		slog.Error("failed to create loader", "error", err)
		os.Exit(1)
	}

	cache := core.NewCache(cfg.Source.Path, loader, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Cache.Preload {
		// A failed preload is not fatal; the first request retries.
		if _, err := cache.Get(ctx); err != nil {
			slog.Warn("dataset preload failed", "error", err)
		}
	}

	server := web.NewServer(cache, cfg, registry)

	go func() {
		<-ctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
