package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hollyabrams/express-jobly/internal/cache"
	dbi "github.com/hollyabrams/express-jobly/internal/database/interfaces"
	"github.com/hollyabrams/express-jobly/internal/database/postgres"
	appLog "github.com/hollyabrams/express-jobly/internal/pkg/log"
	platformconfig "github.com/hollyabrams/express-jobly/internal/platform/config"
	"github.com/hollyabrams/express-jobly/jobs/repository"
	"github.com/hollyabrams/express-jobly/jobs/services"
	"github.com/hollyabrams/express-jobly/jobs/validation"
)

func main() {
	cfg, err := platformconfig.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load platform config: %v", err)
	}
	appLog.SetDebug(cfg.Server.Debug)

	ctx := context.Background()

	pgConfig := &dbi.PostgreSQLConfig{
		Host:               cfg.Database.Postgres.Host,
		Port:               cfg.Database.Postgres.Port,
		Username:           cfg.Database.Postgres.Username,
		Password:           cfg.Database.Postgres.Password,
		Database:           cfg.Database.Postgres.Database,
		SSLMode:            cfg.Database.Postgres.SSLMode,
		MaxOpenConnections: cfg.Database.Postgres.MaxOpenConns,
		MaxIdleConnections: cfg.Database.Postgres.MaxIdleConns,
		MaxLifetime:        int(cfg.Database.Postgres.ConnMaxLifetime.Seconds()),
		ConnectTimeout:     10,
		Schema:             cfg.Database.Postgres.Schema,
	}
	pgClient, err := postgres.NewClient(ctx, pgConfig, pgConfig.Database)
	if err != nil {
		log.Fatalf("Failed to create postgres client: %v", err)
	}
	defer pgClient.Close()

	cacheService, err := cache.NewCacheService(&cache.CacheConfig{
		Enabled:         cfg.Cache.Enabled,
		TTL:             cfg.Cache.TTL,
		Prefix:          cfg.Cache.Prefix,
		Backend:         cache.CacheType(cfg.Cache.Backend),
		MaxMemory:       cfg.Cache.MaxMemory,
		CleanupInterval: cfg.Cache.CleanupInterval,
		Redis: cache.RedisConfig{
			Address:      cfg.Cache.Redis.Address,
			Password:     cfg.Cache.Redis.Password,
			Database:     cfg.Cache.Redis.Database,
			PoolSize:     cfg.Cache.Redis.PoolSize,
			MinIdleConns: cfg.Cache.Redis.MinIdleConns,
			MaxConnAge:   cfg.Cache.Redis.MaxConnAge,
		},
	})
	if err != nil {
		// The service works without a cache; reads go to the database.
		appLog.Warn("Job cache unavailable, continuing without it: %v", err)
		cacheService = nil
	}
	defer cacheService.Close()

	if cfg.Database.AutoMigrate {
		if err := repository.ApplyJobsMigration(ctx, pgClient, pgClient.Schema()); err != nil {
			log.Fatalf("Failed to apply jobs migration: %v", err)
		}
		appLog.Info("Jobs schema migrated")

		// A shared Redis cache can hold rows from before the migration.
		if err := services.PurgeJobCache(ctx, cacheService); err != nil {
			appLog.Warn("Failed to purge cached jobs: %v", err)
		}
	}

	validator, err := validation.NewValidator()
	if err != nil {
		log.Fatalf("Failed to compile job schemas: %v", err)
	}

	app := newApp(cfg, appDeps{
		JobService: services.NewJobService(repository.NewPostgresJobRepository(pgClient), cacheService),
		Validator:  validator,
		Cache:      cacheService,
		DBHealth:   pgClient.HealthCheck,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		appLog.Info("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			appLog.Error("Shutdown failed: %v", err)
		}
	}()

	appLog.Info("Starting Jobly API server on %s", cfg.Server.Address())
	if err := app.Listen(cfg.Server.Address()); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
