// Package main is the entry point for the restoledger background worker.
// It relays outbox events, parks undeliverable ones and expires idempotency keys.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"restoledger/internal/config"
	"restoledger/internal/infrastructure/lock"
	"restoledger/internal/infrastructure/relay"
	"restoledger/internal/infrastructure/storage/postgres"
	"restoledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)
	defer func() { _ = log.Sync() }()

	if !cfg.UsesPostgres() {
		log.Fatal("worker requires DATABASE_URL: the in-memory store has no outbox")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting restoledger worker")

	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MinConns = cfg.DBMinConns
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)

	var handler postgres.OutboxHandler = relay.NewLogHandler(log)
	if cfg.UsesRedis() {
		rdb, err := lock.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalw("failed to connect to redis", "error", err)
		}
		defer rdb.Close()
		handler = relay.NewRedisHandler(rdb, "")
		log.Info("relaying events to redis")
	}

	worker := NewWorker(
		postgres.NewOutboxRelay(txm, cfg.OutboxBatchSize, handler),
		postgres.NewIdempotencyStore(txm, cfg.IdempotencyTTL),
		cfg.OutboxPollInterval,
		log,
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// Worker runs the periodic background jobs.
type Worker struct {
	relay        *postgres.OutboxRelay
	idempotency  *postgres.IdempotencyStore
	pollInterval time.Duration
	log          *logger.Logger
}

// NewWorker creates a worker.
func NewWorker(r *postgres.OutboxRelay, idem *postgres.IdempotencyStore, pollInterval time.Duration, log *logger.Logger) *Worker {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &Worker{
		relay:        r,
		idempotency:  idem,
		pollInterval: pollInterval,
		log:          log.WithComponent("worker"),
	}
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	cleanupTicker := time.NewTicker(time.Hour)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processOutbox(ctx)
		case <-cleanupTicker.C:
			w.moveToDLQ(ctx)
			w.cleanupIdempotency(ctx)
		}
	}
}

func (w *Worker) processOutbox(ctx context.Context) {
	// Drain while full batches keep coming.
	for ctx.Err() == nil {
		n, err := w.relay.ProcessBatch(ctx)
		if err != nil {
			w.log.Errorw("outbox batch failed", "error", err)
			return
		}
		if n > 0 {
			w.log.Debugw("processed outbox batch", "count", n)
		}
		if n == 0 {
			return
		}
	}
}

func (w *Worker) moveToDLQ(ctx context.Context) {
	n, err := w.relay.MoveToDLQ(ctx)
	if err != nil {
		w.log.Errorw("failed to move outbox messages to DLQ", "error", err)
		return
	}
	if n > 0 {
		w.log.Warnw("outbox messages moved to DLQ", "count", n)
	}
}

func (w *Worker) cleanupIdempotency(ctx context.Context) {
	n, err := w.idempotency.CleanupExpired(ctx)
	if err != nil {
		w.log.Errorw("failed to clean up idempotency keys", "error", err)
		return
	}
	if n > 0 {
		w.log.Infow("cleaned up idempotency keys", "count", n)
	}
}
