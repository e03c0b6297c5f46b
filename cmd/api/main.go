package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"phPortfolio/internal/api"
	"phPortfolio/internal/api/middleware"
	"phPortfolio/internal/auth"
	"phPortfolio/internal/config"
	"phPortfolio/internal/content"
	"phPortfolio/internal/database"
	"phPortfolio/internal/drafts"
	"phPortfolio/internal/editor"
	"phPortfolio/internal/notify"
	"phPortfolio/internal/resolver"
	"phPortfolio/internal/storage"
	"phPortfolio/internal/store"
	"phPortfolio/internal/translate"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx := context.Background()
	bundle := content.DefaultBundle()

	// 数据库不可用时公开页面仍以静态内容提供服务。
	db, err := database.InitDatabase(cfg.Database)
	switch {
	case errors.Is(err, database.ErrNotConfigured):
		logger.Warn("database credentials missing, serving static content only")
	case err != nil:
		logger.Error("init database failed, serving static content only", slog.Any("error", err))
		db = nil
	default:
		logger.Info("database connection ready",
			slog.String("host", cfg.Database.Host),
			slog.Int("port", cfg.Database.Port),
			slog.String("db", cfg.Database.Name),
		)
	}

	contentStore := store.New(db)
	if contentStore.Configured() {
		if err := contentStore.AutoMigrate(ctx); err != nil {
			log.Fatalf("auto migrate: %v", err)
		}
		logger.Info("database migrated")
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("ping redis failed, drafts fall back to static content", slog.Any("error", err))
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr()})
	defer asynqClient.Close()

	publisher := notify.NewPublisher(redisClient)
	translator := newTranslator(cfg.Translate, logger)
	draftStore := drafts.New(redisClient, bundle, drafts.Options{
		MaxBytes: cfg.Drafts.MaxBytes,
		TTL:      cfg.Drafts.TTL,
	}, logger)

	handlers := api.Handlers{
		Content: api.NewContentHandler(resolver.New(contentStore, bundle, logger), draftStore),
		Ws:      api.NewWsHandler(redisClient, cfg.API.AllowedOrigins),
		Editor:  api.NewEditorHandler(editor.NewSession(contentStore, translator, publisher, logger)),
		Admin:   api.NewAdminHandler(translator, asynqClient),
		Asset:   api.NewAssetHandler(newAssetStorage(ctx, cfg.MinIO, logger), cfg.API.ClamdAddr),
	}

	var validator *auth.Service
	if cfg.Auth.PrivateKeyPath != "" && cfg.Auth.PublicKeyPath != "" {
		validator, err = auth.NewServiceFromFiles(cfg.Auth.PrivateKeyPath, cfg.Auth.PublicKeyPath, cfg.Auth.AccessTokenTTL)
		if err != nil {
			log.Fatalf("init auth service: %v", err)
		}
		handlers.Auth = api.NewAuthHandler(db, validator, redisClient, api.LoginLimits{
			PerHour:       cfg.Auth.LoginLimitPerHour,
			LockThreshold: cfg.Auth.LoginLockThreshold,
			LockTTL:       cfg.Auth.LoginLockTTL,
		})
	} else {
		logger.Warn("auth keys not configured, admin endpoints disabled")
	}

	router := api.NewRouter(logger)
	api.RegisterRoutes(router, handlers, tokenValidator(validator))

	address := fmt.Sprintf(":%d", cfg.API.Port)
	logger.Info("api listening", slog.String("addr", address))
	if err := router.Run(address); err != nil {
		log.Fatalf("failed to start api server: %v", err)
	}
}

// 主服务为 OpenAI 兼容接口（需要 API key），备用服务为 MyMemory。
func newTranslator(cfg config.TranslateConfig, logger *slog.Logger) *translate.Helper {
	var primary translate.Provider
	if cfg.OpenAIAPIKey != "" {
		primary = translate.NewOpenAIProvider(translate.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		})
	}
	secondary := translate.NewMyMemoryProvider(translate.MyMemoryConfig{
		Endpoint: cfg.MyMemoryEndpoint,
		Email:    cfg.MyMemoryEmail,
		Timeout:  cfg.Timeout,
	})
	return translate.NewHelper(primary, secondary, logger)
}

func newAssetStorage(ctx context.Context, cfg config.MinIOConfig, logger *slog.Logger) api.AssetStorage {
	client, err := storage.NewClient(ctx, cfg)
	switch {
	case errors.Is(err, storage.ErrNotConfigured):
		logger.Warn("object storage not configured, asset uploads disabled")
		return nil
	case err != nil:
		log.Fatalf("init storage client: %v", err)
	}
	logger.Info("storage client ready", slog.String("bucket", cfg.Bucket))
	return client
}

func tokenValidator(s *auth.Service) middleware.TokenValidator {
	if s == nil {
		return nil
	}
	return s
}
