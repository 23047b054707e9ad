// Package app wires the components shared by the server and worker binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"polar.sh/ghsync/core/config"
	"polar.sh/ghsync/core/db"
	"polar.sh/ghsync/internal/badge"
	"polar.sh/ghsync/internal/githubapp"
	"polar.sh/ghsync/internal/queue"
	"polar.sh/ghsync/internal/service"
	"polar.sh/ghsync/internal/store"
	"polar.sh/ghsync/internal/store/memory"
	"polar.sh/ghsync/internal/webhook"
	"polar.sh/ghsync/internal/worker"
)

// Backend is the selected persistence layer.
type Backend struct {
	TxRunner service.TxRunner
	// Stores runs outside any transaction.
	Stores service.StoreProvider
	// Ping is nil for the memory backend.
	Ping  func(ctx context.Context) error
	Close func()
}

func OpenBackend(ctx context.Context, cfg config.Config) (*Backend, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendMemory:
		backend := memory.New()
		slog.WarnContext(ctx, "using in-memory store, data is lost on restart")
		return &Backend{
			TxRunner: service.NewStoreTxRunner(backend),
			Stores:   backend,
			Close:    func() {},
		}, nil

	case config.StoreBackendPostgres:
		database, err := db.New(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		slog.InfoContext(ctx, "database connected")
		return &Backend{
			TxRunner: service.NewTxRunner(database),
			Stores:   store.NewStores(database.Queries()),
			Ping:     database.Ping,
			Close:    database.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

// OpenRedis connects to the queue's Redis.
func OpenRedis(ctx context.Context, cfg config.PipelineConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	slog.InfoContext(ctx, "redis connected", "stream", cfg.RedisStream)
	return client, nil
}

// NewDispatcher wires the GitHub clients, services and badge trigger behind
// the webhook route table. Without GitHub App credentials the API backfill
// and badge edits are skipped.
func NewDispatcher(ctx context.Context, cfg config.Config, backend *Backend) (*webhook.Dispatcher, error) {
	var (
		fetcher  service.AccountFetcher
		embedder badge.Embedder
	)
	if cfg.GitHub.Enabled() {
		clients, err := githubapp.NewClientFactory(cfg.GitHub)
		if err != nil {
			return nil, fmt.Errorf("creating github client factory: %w", err)
		}
		fetcher = githubapp.NewFetcher(clients)
		embedder = badge.NewGitHubEmbedder(clients, backend.Stores.Issues(), cfg.Badge.PublicURL)
	} else {
		slog.WarnContext(ctx, "github app not configured, api backfill and badge embedding disabled")
	}

	services := service.NewServices(backend.TxRunner, fetcher, nil, cfg.Badge.Label)
	trigger := badge.NewTrigger(cfg.Badge, embedder)
	handlers := webhook.NewHandlers(services.Organizations(), services.Repositories(), services.Issues(), trigger)
	return webhook.NewDispatcher(webhook.NewRegistry(handlers)), nil
}

// Pipeline is a worker plus the reclaimer recovering its stale messages.
type Pipeline struct {
	Worker    *worker.Worker
	Reclaimer *worker.RedisReclaimer
}

func NewPipeline(cfg config.PipelineConfig, client *redis.Client, backend *Backend, dispatcher worker.Dispatcher) (*Pipeline, error) {
	consumer, err := queue.NewRedisConsumer(client, queue.ConsumerConfig{
		Stream:       cfg.RedisStream,
		Group:        cfg.RedisGroup,
		Consumer:     cfg.RedisConsumer,
		DLQStream:    cfg.RedisDLQStream,
		BatchSize:    1, // one delivery at a time keeps per-entity ordering simple
		Block:        5 * time.Second,
		MaxAttempts:  cfg.MaxAttempts,
		RequeueDelay: cfg.RequeueDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("creating consumer: %w", err)
	}

	w := worker.New(consumer, backend.Stores.WebhookDeliveries(), dispatcher, worker.Config{
		MaxAttempts: cfg.MaxAttempts,
	})

	reclaimer := worker.NewRedisReclaimer(client, worker.RedisReclaimerConfig{
		Stream:    cfg.RedisStream,
		Group:     cfg.RedisGroup,
		Consumer:  cfg.RedisConsumer + "-reclaimer",
		MinIdle:   cfg.ReclaimMinIdle,
		Interval:  cfg.ReclaimInterval,
		BatchSize: 10,
	}, consumer, w.HandleMessage)

	return &Pipeline{Worker: w, Reclaimer: reclaimer}, nil
}

// Run blocks until ctx is done or the worker exits.
func (p *Pipeline) Run(ctx context.Context) error {
	go p.Reclaimer.Run(ctx)
	return p.Worker.Run(ctx)
}

// Stop stops the reclaimer first, then waits for the in-flight delivery.
func (p *Pipeline) Stop() {
	p.Reclaimer.Stop()
	p.Worker.Stop()
}
