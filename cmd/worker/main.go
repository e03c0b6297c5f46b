package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"phPortfolio/internal/config"
	"phPortfolio/internal/content"
	"phPortfolio/internal/database"
	"phPortfolio/internal/metrics"
	"phPortfolio/internal/notify"
	"phPortfolio/internal/store"
	"phPortfolio/internal/tasks"
	"phPortfolio/internal/worker"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db, err := database.InitDatabase(cfg.Database)
	switch {
	case errors.Is(err, database.ErrNotConfigured):
		logger.Warn("database credentials missing, seed tasks will be skipped")
	case err != nil:
		log.Fatalf("init database: %v", err)
	default:
		logger.Info("database connection ready for worker")
	}

	contentStore := store.New(db)
	if contentStore.Configured() {
		if err := contentStore.AutoMigrate(context.Background()); err != nil {
			log.Fatalf("auto migrate: %v", err)
		}
	}

	redisAddr := cfg.Redis.Addr()
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	server := asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{
		Concurrency: 2,
		Logger:      newAsynqLogger(logger),
	})

	seedHandler := worker.NewSeedTaskHandler(contentStore, content.DefaultBundle(), notify.NewPublisher(redisClient), logger)

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.Handle(tasks.TypeContentSeed, seedHandler)

	logger.Info("worker service started", slog.String("redis_addr", redisAddr))
	if err := server.Run(mux); err != nil {
		logger.Error("worker server stopped", slog.Any("error", err))
	}
}
