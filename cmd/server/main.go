// Package main is the entry point for the restoledger API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restoledger/internal/app"
	"restoledger/internal/config"
	corelock "restoledger/internal/core/lock"
	"restoledger/internal/domain/auth"
	v1 "restoledger/internal/infrastructure/http/v1"
	"restoledger/internal/infrastructure/lock"
	"restoledger/internal/infrastructure/storage/postgres"
	"restoledger/pkg/logger"
)

const version = "0.1.0"

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

	ctx := context.Background()
	log.Infow("starting restoledger server", "env", cfg.Env, "version", version)

	// --- Register lock ---
	var locker corelock.Locker = lock.NewLocalLocker(cfg.RegisterLockTTL)
	if cfg.UsesRedis() {
		rdb, err := lock.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalw("failed to connect to redis", "error", err)
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, lock.RedisConfig{URL: cfg.RedisURL})
		log.Info("register lock: redis")
	}

	// --- JWT Service ---
	jwtConfig := auth.DefaultJWTConfig(cfg.JWTSecret)
	jwtConfig.Issuer = cfg.JWTIssuer
	jwtConfig.AccessTokenTTL = cfg.JWTTTL
	jwtService := auth.NewJWTService(jwtConfig)

	routerCfg := v1.RouterConfig{
		Logger:       log,
		JWTValidator: jwtService,
		Version:      version,
	}

	// --- Storage ---
	if cfg.UsesPostgres() {
		poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
		poolCfg.MaxConns = cfg.DBMaxConns
		poolCfg.MinConns = cfg.DBMinConns

		pool, err := postgres.NewPool(ctx, poolCfg)
		if err != nil {
			log.Fatalw("failed to connect to database", "error", err)
		}
		defer pool.Close()

		pg, err := app.NewPostgres(pool, locker, app.PostgresOptions{
			StatementTimeout:       cfg.StatementTimeout,
			LockTTL:                cfg.RegisterLockTTL,
			AuditCompressThreshold: cfg.AuditCompressThreshold,
		})
		if err != nil {
			log.Fatalw("failed to wire ledger", "error", err)
		}

		routerCfg.Ledger = pg.Ledger
		routerCfg.DB = pool
		routerCfg.Audit = pg.Audit
		routerCfg.Backend = "postgres"
		if cfg.IdempotencyEnabled {
			routerCfg.Idempotency = postgres.NewIdempotencyStore(pg.TxManager, cfg.IdempotencyTTL)
		}
		log.Infow("database connection established", "max_conns", poolCfg.MaxConns)
	} else {
		mem := app.NewInMemory()
		routerCfg.Ledger = mem.Ledger
		routerCfg.Backend = "memory"
		log.Warn("DATABASE_URL not set, ledger runs on the in-memory store (development only, state is lost on restart)")
	}

	router := v1.NewRouter(routerCfg)

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port, "storage", routerCfg.Backend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
