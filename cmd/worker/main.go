package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"polar.sh/ghsync/common/id"
	"polar.sh/ghsync/common/logger"
	"polar.sh/ghsync/common/otel"
	"polar.sh/ghsync/core/config"
	"polar.sh/ghsync/internal/app"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeWorker)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	fmt.Printf("%s\n", banner)

	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	slog.InfoContext(ctx, "ghsync worker starting",
		"env", cfg.Env,
		"consumer_group", cfg.Pipeline.RedisGroup,
		"consumer_name", cfg.Pipeline.RedisConsumer)

	// Server and worker use different snowflake nodes
	if err := id.Init(id.NodeWorker); err != nil {
		slog.ErrorContext(ctx, "failed to initialize id generator", "error", err)
		os.Exit(1)
	}

	backend, err := app.OpenBackend(ctx, cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to open store", "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	redisClient, err := app.OpenRedis(ctx, cfg.Pipeline)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	dispatcher, err := app.NewDispatcher(ctx, cfg, backend)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create dispatcher", "error", err)
		os.Exit(1)
	}

	pipeline, err := app.NewPipeline(cfg.Pipeline, redisClient, backend, dispatcher)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create worker", "error", err)
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- pipeline.Run(ctx)
	}()

	slog.InfoContext(ctx, "worker initialized and running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Stop reclaimer first (quick), then wait for the in-flight delivery
	stopped := make(chan struct{})
	go func() {
		pipeline.Stop()
		close(stopped)
	}()

	select {
	case <-shutdownCtx.Done():
		slog.WarnContext(ctx, "shutdown timeout exceeded")
	case <-stopped:
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			slog.ErrorContext(ctx, "worker error during shutdown", "error", err)
		}
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(ctx, "worker shutdown complete")
}

const banner = `
        __                            
  ____ / /_  _______  ______  _____ 
 / __ '/ __ \/ ___/ / / / __ \/ ___/ 
/ /_/ / / / (__  ) /_/ / / / / /__   
\__, /_/ /_/____/\__, /_/ /_/\___/   worker
/____/           /____/               
`
