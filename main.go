package main

import (
	"context"
	"log"
	"time"

	"github.com/sparesx/sparesx-api/config"
	"github.com/sparesx/sparesx-api/logger"
	"github.com/sparesx/sparesx-api/middleware"
	"github.com/sparesx/sparesx-api/models"
	"github.com/sparesx/sparesx-api/routes"
	"github.com/sparesx/sparesx-api/services"
)

const (
	// Budget for each throttled route, per client IP
	rateLimitPerMinute = 10
	rateLimitBurst     = 5
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg, err := logger.New(logger.Config{Development: !cfg.IsProduction(), Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logg.Infow("starting SparesX API", "env", cfg.GoEnv, "env_file", cfg.EnvFile())

	if err := config.ConnectDatabase(cfg.DatabaseURL); err != nil {
		logg.Fatalw("failed to connect to database", "error", err)
	}
	if err := models.Migrate(config.GetDB()); err != nil {
		logg.Fatalw("failed to migrate database", "error", err)
	}
	logg.Info("database migration completed successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := services.InitImageService(ctx, cfg); err != nil {
		logg.Fatalw("failed to initialize image storage", "error", err)
	}
	services.InitMailer(cfg)

	limiter, err := newLimiter(cfg)
	if err != nil {
		logg.Fatalw("failed to initialize rate limiter", "error", err)
	}

	router := routes.Setup(cfg, limiter)

	addr := ":" + cfg.Port
	logg.Infow("server is running", "addr", addr, "s3", cfg.UsesS3())
	if err := router.Run(addr); err != nil {
		logg.Fatalw("failed to start server", "error", err)
	}
}

// newLimiter shares rate limits through Redis when REDIS_URL is set and keeps
// them in process memory otherwise
func newLimiter(cfg *config.Config) (middleware.Limiter, error) {
	if cfg.RedisURL == "" {
		return middleware.NewMemoryLimiter(rateLimitPerMinute, rateLimitBurst), nil
	}

	client, err := middleware.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	return middleware.NewRedisLimiter(client, "sparesx:ratelimit", rateLimitPerMinute, time.Minute), nil
}
