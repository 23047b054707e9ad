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

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"polar.sh/ghsync/common/id"
	"polar.sh/ghsync/common/logger"
	"polar.sh/ghsync/common/otel"
	"polar.sh/ghsync/core/config"
	"polar.sh/ghsync/internal/app"
	"polar.sh/ghsync/internal/http/middleware"
	httprouter "polar.sh/ghsync/internal/http/router"
	"polar.sh/ghsync/internal/queue"
	"polar.sh/ghsync/internal/service"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		// Can't use slog yet, OTel failed before logger setup
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "ghsync server starting",
		"env", cfg.Env,
		"service", cfg.OTel.ServiceName,
		"store", cfg.Store.Backend)
	if err := id.Init(id.NodeServer); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
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

	producer := queue.NewRedisProducer(redisClient, cfg.Pipeline.RedisStream, slog.Default())
	defer producer.Close()

	services := service.NewServices(backend.TxRunner, nil, producer, cfg.Badge.Label)

	// The memory store lives in this process, so the worker has to as well.
	var pipeline *app.Pipeline
	if cfg.Store.Backend == config.StoreBackendMemory {
		dispatcher, err := app.NewDispatcher(ctx, cfg, backend)
		if err != nil {
			slog.ErrorContext(ctx, "failed to create dispatcher", "error", err)
			os.Exit(1)
		}
		pipeline, err = app.NewPipeline(cfg.Pipeline, redisClient, backend, dispatcher)
		if err != nil {
			slog.ErrorContext(ctx, "failed to create worker", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := pipeline.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.ErrorContext(ctx, "in-process worker stopped", "error", err)
			}
		}()
		slog.InfoContext(ctx, "in-process worker running")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	health := map[string]httprouter.Pinger{
		"redis": httprouter.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}),
	}
	if backend.Ping != nil {
		health["database"] = httprouter.PingFunc(backend.Ping)
	}

	router := setupRouter(cfg, services, health)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if pipeline != nil {
		pipeline.Stop()
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services, health map[string]httprouter.Pinger) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span, Recovery catches panics, Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		WebhookSecret:   cfg.GitHub.WebhookSecret,
		TraceHeaderName: cfg.Pipeline.TraceHeaderName,
		Health:          health,
	})

	return router
}

const banner = `
        __                            
  ____ / /_  _______  ______  _____ 
 / __ '/ __ \/ ___/ / / / __ \/ ___/ 
/ /_/ / / / (__  ) /_/ / / / / /__   
\__, /_/ /_/____/\__, /_/ /_/\___/   server
/____/           /____/               
`
