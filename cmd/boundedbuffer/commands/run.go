package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	ibuffer "github.com/jittakal/boundedbuffer/internal/buffer"
	"github.com/jittakal/boundedbuffer/internal/config"
	"github.com/jittakal/boundedbuffer/internal/observability"
	"github.com/jittakal/boundedbuffer/internal/server"
	"github.com/jittakal/boundedbuffer/internal/worker"
	"github.com/jittakal/boundedbuffer/pkg/buffer"
)

// flagKeys maps run flags to configuration keys.
var flagKeys = map[string]string{
	"capacity":           "buffer.capacity",
	"strategy":           "buffer.strategy",
	"producers":          "workload.producers",
	"consumers":          "workload.consumers",
	"items":              "workload.items_per_producer",
	"mode":               "workload.mode",
	"timeout-ms":         "workload.timeout_ms",
	"retry-backoff-ms":   "workload.retry_backoff_ms",
	"producer-period-ms": "workload.producer_period_ms",
	"consumer-period-ms": "workload.consumer_period_ms",
	"log-level":          "observability.logging.level",
	"log-format":         "observability.logging.format",
	"log-output":         "observability.logging.output",
	"metrics":            "observability.metrics.enabled",
	"metrics-port":       "observability.metrics.port",
	"health-port":        "observability.health.port",
}

func newRunCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a producer/consumer workload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, configFile)
		},
	}

	f := cmd.Flags()
	f.StringVar(&configFile, "config", os.Getenv("BBUF_CONFIG_FILE"), "path to configuration file")
	f.Int("capacity", 8, "buffer capacity")
	f.String("strategy", string(buffer.StrategyMonitor), "synchronization strategy (monitor, semaphore)")
	f.Int("producers", 4, "number of producers")
	f.Int("consumers", 4, "number of consumers")
	f.Int("items", 1000, "items per producer")
	f.String("mode", string(worker.ModeBlocking), "operation mode (blocking, try, timed)")
	f.Int("timeout-ms", 100, "timed mode deadline offset in milliseconds")
	f.Int("retry-backoff-ms", 1, "try mode backoff in milliseconds")
	f.Int("producer-period-ms", 0, "pause between two productions in milliseconds")
	f.Int("consumer-period-ms", 0, "pause between two consumptions in milliseconds")
	f.String("log-level", "info", "log level (debug, info, warn, error)")
	f.String("log-format", "json", "log format (json, console)")
	f.String("log-output", "stdout", "log output (stdout, stderr or a file path)")
	f.Bool("metrics", false, "serve metrics and health endpoints")
	f.Int("metrics-port", 9090, "metrics port")
	f.Int("health-port", 8080, "health port")

	return cmd
}

func run(cmd *cobra.Command, configFile string) error {
	loader := config.NewLoader()
	if err := loader.BindFlags(cmd.Flags(), flagKeys); err != nil {
		return err
	}
	cfg, err := loader.Load(configFile)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Observability.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting boundedbuffer",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("environment", cfg.Application.Environment),
	)

	strategy, err := buffer.ParseStrategy(cfg.Buffer.Strategy)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)

	inner, err := ibuffer.New[cloudevents.Event](cfg.Buffer.Capacity, strategy)
	if err != nil {
		return err
	}
	buf := observability.Instrument(inner, strategy, metrics)

	runner, err := worker.NewRunner(cfg.Workload, buf, metrics, logger)
	if err != nil {
		return err
	}

	if cfg.Observability.Metrics.Enabled {
		srv := server.NewServer(cfg.Observability, runner, registry, logger)
		if err := srv.Start(); err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.GracePeriod())
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("Server shutdown failed", zap.Error(err))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Configuration loaded",
		zap.String("configFile", configFile),
		zap.String("strategy", string(strategy)),
		zap.Int("capacity", cfg.Buffer.Capacity),
	)

	summary, err := runner.Run(ctx)

	fmt.Fprintf(cmd.OutOrStdout(),
		"strategy=%s mode=%s capacity=%d produced=%d consumed=%d invalid=%d elapsed=%s\n",
		strategy, cfg.Workload.Mode, cfg.Buffer.Capacity,
		summary.Produced, summary.Consumed, summary.Invalid, summary.Elapsed)

	return err
}
