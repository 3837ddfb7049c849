// Package main is the entry point for the Shorewatch monitoring service.
//
// It loads configuration, wires the store, external clients, orchestrator,
// and metrics, builds the HTTP server with the core chassis, and starts
// listening. Graceful shutdown on SIGINT/SIGTERM stops the orchestrator
// (cancelling remote vision jobs) before the HTTP listener drains.
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

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"

	"shorewatch/internal/api/handlers"
	"shorewatch/internal/config"
	"shorewatch/internal/core"
	"shorewatch/internal/external"
	"shorewatch/internal/metrics"
	"shorewatch/internal/orchestrator"
	"shorewatch/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so main() can cleanly exit on error.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("shorewatch starting",
		"environment", cfg.Environment,
		"port", cfg.Server.Port,
		"webhook_url", cfg.WebhookURL(),
	)

	st := store.New(config.Zones())

	visionClient := external.NewVisionClient(external.VisionClientConfig{
		BaseURL: cfg.Vision.BaseURL,
		APIKey:  cfg.Vision.APIKey,
		Timeout: cfg.Vision.Timeout,
	})
	envClient := external.NewEnvironmentalClient(external.EnvironmentalClientConfig{
		NDBCBaseURL:  cfg.Environmental.NDBCBaseURL,
		COOPSBaseURL: cfg.Environmental.COOPSBaseURL,
		Timeout:      cfg.Environmental.Timeout,
	})

	collector, err := newMetricsCollector(cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing metrics: %w", err)
	}

	orch := orchestrator.New(orchestrator.Config{
		Store:         st,
		Vision:        visionClient,
		Environmental: envClient,
		Metrics:       collector,
		Logger:        logger,
		WebhookURL:    cfg.WebhookURL(),
		Polling:       cfg.Polling,
		Budget:        cfg.Budget,
	})

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.HealthProbes = []core.HealthProbe{storeProbe{store: st}}
	srv.Router().Get("/health", srv.HandleHealth)

	h := handlers.New(st, orch, logger)
	h.Mount(srv.Router())

	addr := ":" + cfg.Server.Port
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Stop monitoring first so remote vision jobs are cancelled while the
	// process can still talk to the provider.
	if err := orch.StopAll(ctx); err != nil {
		logger.Error("orchestrator shutdown error", "error", err)
	}

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newMetricsCollector returns the CloudWatch publisher when enabled, the
// no-op collector otherwise.
func newMetricsCollector(cfg *config.Config, logger *slog.Logger) (metrics.Collector, error) {
	if !cfg.Metrics.Enabled {
		return metrics.Noop{}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Metrics.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return metrics.NewCloudWatchCollector(
		cloudwatch.NewFromConfig(awsCfg), cfg.Metrics.Namespace, logger), nil
}

// storeProbe reports the store as healthy once it is constructed; it exists
// so /health always carries at least one component and the probe list shape
// is in place for future external checks.
type storeProbe struct {
	store *store.Store
}

func (p storeProbe) Name() string { return "store" }

func (p storeProbe) Check(_ context.Context) error {
	if p.store == nil {
		return errors.New("store not initialized")
	}
	return nil
}

// newLogger builds the process-wide JSON logger at the configured level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
