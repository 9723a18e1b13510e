package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/recipe-catalog/backend/config"
	"github.com/pageza/recipe-catalog/backend/internal/api"
	"github.com/pageza/recipe-catalog/backend/internal/database"
	"github.com/pageza/recipe-catalog/backend/internal/middleware"
	"github.com/pageza/recipe-catalog/backend/internal/observability"
	"github.com/pageza/recipe-catalog/backend/internal/server"
	"github.com/pageza/recipe-catalog/backend/internal/service"
	"github.com/pageza/recipe-catalog/backend/internal/storage"
	"github.com/pageza/recipe-catalog/backend/migrations"
)

func main() {
	log := observability.NewLogger("api")
	if err := run(log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.Open(ctx, cfg, observability.NewLogger("database"))
	if err != nil {
		return err
	}
	defer database.Close(db)

	// sqlite has no separate migration step.
	if cfg.DBDriver == config.DriverSQLite {
		if err := database.RunMigrations(db, migrations.FS, log); err != nil {
			return err
		}
	}

	images, err := newImageStore(ctx, cfg)
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics(nil)
	deps := api.Deps{
		DB:            db,
		Recipes:       service.NewRecipeService(db, metrics),
		Auth:          service.NewAuthService(db, cfg.JWTSecret),
		Images:        images,
		Metrics:       metrics,
		Logger:        observability.NewLogger("http"),
		MaxImageBytes: cfg.MaxImageBytes,
	}

	if redisClient := connectRedis(ctx, cfg, log); redisClient != nil {
		defer redisClient.Close()
		deps.RateLimiter = middleware.NewWriteRateLimiter(redisClient, cfg.RateLimitPerMinute, log)
	}

	srv := server.New(cfg, deps, nil)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		log.Info("received signal", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	log.Info("server stopped")
	return nil
}

func newImageStore(ctx context.Context, cfg *config.Config) (storage.ImageStore, error) {
	if cfg.StorageBackend != config.StorageS3 {
		return storage.NewLocalStore(cfg.MediaRoot, cfg.MediaURL), nil
	}
	s3cfg, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return storage.NewS3Store(s3cfg.Client, s3cfg, s3cfg.BucketName), nil
}

// connectRedis returns nil when Redis is not configured or unreachable;
// the API then runs without rate limiting.
func connectRedis(ctx context.Context, cfg *config.Config, log *slog.Logger) *redis.Client {
	if cfg.RedisHost == "" && cfg.RedisURL == "" {
		return nil
	}
	client, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Warn("redis unavailable, rate limiting disabled", "error", err)
		return nil
	}
	return client
}
