// Command sweep removes expired documents once and exits. It is meant to be
// run from cron or a Kubernetes CronJob.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"ndavault/internal/app"
	"ndavault/internal/config"
	"ndavault/internal/logging"
	appotel "ndavault/internal/otel"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()
	logger := logging.New(os.Stderr, cfg.Location())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := appotel.Init(ctx, logger)
	if err != nil {
		logger.Error("failed to initialize tracing", slog.String("error", err.Error()))
		return 1
	}
	defer func() { _ = shutdownTracing(context.WithoutCancel(ctx)) }()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", slog.String("error", err.Error()))
		return 1
	}
	defer a.Close()

	res, err := a.Documents.SweepExpired(ctx)
	if err != nil {
		logger.Error("expiry sweep failed", slog.String("error", err.Error()))
		return 1
	}

	if err := json.NewEncoder(os.Stdout).Encode(res); err != nil {
		return 1
	}
	if res.RecordFailures > 0 {
		return 1
	}
	return 0
}
