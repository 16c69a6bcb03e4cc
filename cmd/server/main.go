// Package main is the entry point for the shopper admin API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"shopper/internal/config"
	"shopper/internal/domain/auth"
	"shopper/internal/domain/filter"
	"shopper/internal/domain/listing"
	"shopper/internal/infrastructure/cache"
	v1 "shopper/internal/infrastructure/http/v1"
	"shopper/internal/infrastructure/storage/postgres"
	"shopper/internal/infrastructure/storage/postgres/auth_repo"
	"shopper/internal/infrastructure/storage/postgres/list_repo"
	"shopper/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting shopper admin server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DB.DSN)
	poolCfg.MaxConns = cfg.DB.MaxConns
	poolCfg.MinConns = cfg.DB.MinConns

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	// --- Response cache ---
	var cacheStore listing.CacheStore
	switch cfg.Cache.Driver {
	case "memory":
		cacheStore = cache.NewMemoryStore()
	default:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatalw("failed to connect to redis", "error", err)
		}
		defer client.Close()
		cacheStore = cache.NewRedisStore(client)
	}
	log.Infow("listing cache initialized", "driver", cfg.Cache.Driver, "ttl", cfg.Cache.TTL)

	// --- Entity registry ---
	registry := filter.NewRegistry()
	registerEntities(registry)
	log.Infow("entity registry loaded", "entities", registry.Entities())

	// --- Audit trail ---
	auditService, err := postgres.NewAuditService(pool)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}
	defer auditService.Close()

	// --- Listing engine ---
	store := postgres.NewStore(pool)
	listingService := listing.NewService(registry, list_repo.NewRepo(store),
		listing.WithCache(cacheStore, cfg.Cache.TTL),
		listing.WithAuditor(auditService),
	)

	// --- Auth ---
	jwtConfig := auth.DefaultJWTConfig(cfg.Auth.JWTSecret)
	jwtConfig.AccessTokenTTL = cfg.Auth.AccessTokenTTL
	jwtService := auth.NewJWTService(jwtConfig)
	authService := auth.NewService(auth_repo.NewUserRepo(pool), jwtService)

	// --- HTTP server ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:           pool,
		Logger:         log,
		TokenValidator: jwtService,
		AuthService:    authService,
		ListingService: listingService,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Infow("http server listening", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("http server failed", "error", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server shutdown failed", "error", err)
	}
	log.Info("server stopped")
}
