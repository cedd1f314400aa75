package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/sudo-tiz/dnshealth-go/internal/config"
	"github.com/sudo-tiz/dnshealth-go/internal/engine"
	"github.com/sudo-tiz/dnshealth-go/internal/resolver"
	"github.com/sudo-tiz/dnshealth-go/internal/tasks"
	"github.com/sudo-tiz/dnshealth-go/internal/tldregistry"
)

// NewWorkerCommand creates the 'worker' subcommand for running standalone Redis workers.
func NewWorkerCommand() *cobra.Command {
	var configPath string
	var redisURL string
	var concurrency int
	var metricsPort int
	var enableMetrics bool

	// Engine config flags
	var queryTimeout int
	var maxConcurrentChecks int
	var maxRetries int
	var recursiveResolver string

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Start a standalone dnshealth worker",
		Long:  `Start a standalone dnshealth worker that processes analysis tasks from the Redis queue. Requires Redis to be configured.`,
		Example: `  # Start worker with default settings
  dnshealth worker --redis redis://localhost:6379/0

  # Start worker with custom concurrency (number of parallel analyses)
  dnshealth worker --redis redis://localhost:6379/0 --concurrency 8

  # Start worker with metrics enabled (useful for single worker or dev)
  dnshealth worker --config /path/to/config.yaml --redis redis://localhost:6379/0 --enable-metrics`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorker(cmd, configPath, redisURL, concurrency, metricsPort, enableMetrics,
				queryTimeout, maxConcurrentChecks, maxRetries, recursiveResolver)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", os.Getenv("CONFIG_PATH"), "Path to config file")
	cmd.Flags().StringVarP(&redisURL, "redis", "r", os.Getenv("REDIS_URL"), "Redis URL (required)")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "n", 4, "Number of parallel analyses to process simultaneously")
	cmd.Flags().IntVarP(&metricsPort, "metrics-port", "m", 9091, "Port for Prometheus metrics endpoint (if enabled)")
	cmd.Flags().BoolVarP(&enableMetrics, "enable-metrics", "M", false, "Enable metrics HTTP endpoint (useful for single worker, avoid port conflicts with multiple workers)")

	cmd.Flags().StringVar(&recursiveResolver, "recursive-resolver", "", "Recursive resolver target, e.g. udp://9.9.9.9:53 (default: from config)")
	cmd.Flags().IntVarP(&queryTimeout, "query-timeout", "T", 0, "DNS query timeout in seconds (default: from config or 5)")
	cmd.Flags().IntVarP(&maxConcurrentChecks, "max-concurrent", "C", 0, "Sets engine.max_concurrent_checks in the loaded config (default: from config or 8); the engine's per-checker fan-out stays fixed at 8")
	cmd.Flags().IntVarP(&maxRetries, "max-retries", "R", 0, "Number of retries per DNS query (default: from config or 3)")

	_ = cmd.MarkFlagRequired("redis")

	return cmd
}

func runWorker(cmd *cobra.Command, configPath, redisURL string, concurrency, metricsPort int, enableMetrics bool,
	queryTimeout, maxConcurrentChecks, maxRetries int, recursiveResolver string) error {

	if configPath == "" {
		configPath = "conf/config.yaml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	if cmd.Flags().Changed("query-timeout") {
		cfg.Engine.QueryTimeout = queryTimeout
	}
	if cmd.Flags().Changed("max-concurrent") {
		cfg.Engine.MaxConcurrentChecks = maxConcurrentChecks
	}
	if cmd.Flags().Changed("max-retries") {
		cfg.Engine.MaxRetries = maxRetries
	}
	if recursiveResolver != "" {
		cfg.Engine.RecursiveResolver = recursiveResolver
	}
	slog.Info("Configuration loaded", "path", configPath, "recursive_resolver", cfg.GetRecursiveResolver())

	if redisURL == "" {
		slog.Error("Redis URL is required for worker")
		os.Exit(1)
	}

	redisAddr := redisURL
	if u, err := url.Parse(redisURL); err == nil {
		redisAddr = u.Host
	}

	if enableMetrics {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			addr := fmt.Sprintf(":%d", metricsPort)
			slog.Info("Worker metrics server enabled", "address", addr)

			srv := &http.Server{
				Addr:         addr,
				Handler:      mux,
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 10 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("Metrics server error", "error", err)
			}
		}()
	} else {
		slog.Info("Worker metrics disabled (use --enable-metrics to enable)")
	}

	tlds, err := tldregistry.Load(cfg.GetTLDDataPath())
	if err != nil {
		slog.Error("Failed to load tld registry", "error", err)
		os.Exit(1)
	}

	facade := resolver.NewFacade(
		cfg.GetRecursiveResolver(),
		time.Duration(cfg.GetQueryTimeout())*time.Second,
		cfg.GetMaxRetries(),
	)
	eng := engine.New(facade, tlds,
		engine.WithReportDeadline(time.Duration(cfg.GetReportDeadline())*time.Second),
		engine.WithCheckDeadline(time.Duration(cfg.GetCheckDeadline())*time.Second),
	)

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer func() {
		if err := rdb.Close(); err != nil {
			slog.Error("Failed to close Redis connection", "error", err)
		}
	}()

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TaskTypeAnalyze, func(ctx context.Context, t *asynq.Task) error {
		return handleTask(ctx, t, rdb, eng)
	})

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr},
		asynq.Config{
			Concurrency: concurrency,
		},
	)

	go func() {
		if err := srv.Run(mux); err != nil {
			slog.Error("Worker run failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	srv.Shutdown()
	return nil
}

// handleTask runs the analysis and caches the report in Redis, keyed the
// same way the API server's result-polling path reads it.
func handleTask(ctx context.Context, t *asynq.Task, rdb *redis.Client, eng *engine.Engine) error {
	var p struct {
		TaskID string   `json:"task_id"`
		Domain string   `json:"domain"`
		Checks []string `json:"checks"`
	}
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}

	start := time.Now()
	rep, err := eng.Analyze(ctx, p.Domain, p.Checks)
	duration := time.Since(start).Seconds()
	if err != nil && rep == nil {
		slog.Error("Analysis failed", "task_id", p.TaskID, "error", err)
		return err
	}

	data, err := json.Marshal(rep)
	if err != nil {
		slog.Error("Failed to marshal report", "task_id", p.TaskID, "error", err)
		return err
	}

	resultKey := fmt.Sprintf("dnshealth:result:%s", p.TaskID)
	if err := rdb.Set(ctx, resultKey, data, 24*time.Hour).Err(); err != nil {
		slog.Error("Failed to cache result", "task_id", p.TaskID, "error", err)
		return fmt.Errorf("failed to cache result: %w", err)
	}

	slog.Info("Task completed", "task_id", p.TaskID, "duration_seconds", fmt.Sprintf("%.3f", duration))
	return nil
}
