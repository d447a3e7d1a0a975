package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MikeSquared-Agency/Audit5S/internal/api"
	"github.com/MikeSquared-Agency/Audit5S/internal/config"
	"github.com/MikeSquared-Agency/Audit5S/internal/events"
	"github.com/MikeSquared-Agency/Audit5S/internal/imagegen"
	"github.com/MikeSquared-Agency/Audit5S/internal/metrics"
	"github.com/MikeSquared-Agency/Audit5S/internal/monitor"
	"github.com/MikeSquared-Agency/Audit5S/internal/state"
	"github.com/MikeSquared-Agency/Audit5S/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger = newLogger(os.Stdout, cfg.Logging)
	slog.SetDefault(logger)

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("invalid timezone", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage
	backend, err := store.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		logger.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer backend.Close()
	logger.Info("storage opened", "driver", cfg.Storage.Driver)

	st, err := state.Load(ctx, backend, logger, state.Options{Location: loc})
	if err != nil {
		logger.Error("failed to load state", "error", err)
		os.Exit(1)
	}

	// Events (optional)
	var publisher events.Publisher
	if cfg.Events.NATSURL != "" {
		nc, err := events.NewNATSClient(ctx, cfg.Events.NATSURL, logger)
		if err != nil {
			logger.Warn("failed to connect to nats, running without events", "error", err)
		} else {
			publisher = nc
			defer nc.Close()
			logger.Info("connected to nats")
		}
	}

	// Image editing (optional)
	var images imagegen.Client
	if cfg.Gemini.APIKey != "" {
		images = imagegen.NewHTTPClient(cfg.Gemini.URL, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.GeminiTimeout())
	} else {
		logger.Warn("no gemini api key configured, image editing disabled")
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	// Overdue monitor
	mon := monitor.New(st, publisher, m, cfg.MonitorInterval(), logger)
	mon.Start(ctx)
	defer mon.Stop()
	logger.Info("monitor started", "interval", cfg.MonitorInterval())

	// API server
	router := api.NewRouter(st, publisher, images, m, api.RouterOptions{
		AdminToken:   cfg.Server.AdminToken,
		RateLimitRPM: cfg.Server.RateLimitRPM,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	}, logger)
	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: api.NewMetricsRouter(),
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}

func newLogger(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
