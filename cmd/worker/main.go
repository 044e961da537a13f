package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskibarqy/contest-radar/internal/app"
	"github.com/riskibarqy/contest-radar/internal/config"
	"github.com/riskibarqy/contest-radar/internal/observability"
	"github.com/riskibarqy/contest-radar/internal/platform/logging"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := config.LoadDotEnv(); err != nil {
		panic(err)
	}
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel).With("service", cfg.ServiceName, "version", cfg.ServiceVersion)
	logging.SetDefault(logger)
	defer logger.Sync()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}
	stopProfiling, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics()
	worker, err := app.NewWorker(ctx, cfg, metrics, logger)
	if err != nil {
		logger.Error("build worker", "error", err)
		os.Exit(1)
	}

	if store := worker.Cache(); store != nil {
		metrics.RegisterCacheStats("repository", store.Stats)
	}
	opsSrv := observability.StartOpsServer(cfg, metrics, worker.Healthy, logger)

	if err := worker.Start(ctx); err != nil {
		logger.Error("start worker", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	exitCode := 0
	if err := worker.Stop(shutdownCtx); err != nil {
		logger.Error("worker shutdown failed", "error", err)
		exitCode = 1
	}
	if err := observability.StopOpsServer(opsSrv, logger, 5*time.Second); err != nil {
		logger.Error("ops server shutdown failed", "error", err)
	}
	if err := stopProfiling(); err != nil {
		logger.Error("pyroscope shutdown failed", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("uptrace shutdown failed", "error", err)
	}
	if exitCode != 0 {
		_ = logger.Sync()
		os.Exit(exitCode)
	}
}
