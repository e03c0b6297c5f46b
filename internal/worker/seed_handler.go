package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"phPortfolio/internal/content"
	"phPortfolio/internal/notify"
	"phPortfolio/internal/store"
	"phPortfolio/internal/tasks"
)

// Seeder 把静态内容写入远程库，*store.Store 满足该接口。
type Seeder interface {
	Seed(ctx context.Context, bundle *content.Bundle) (store.SeedReport, error)
}

// Notifier 广播内容变更事件，*notify.Publisher 满足该接口。
type Notifier interface {
	Publish(ctx context.Context, event notify.Event) error
}

// SeedTaskHandler 负责消费内容初始化任务。
type SeedTaskHandler struct {
	seeder   Seeder
	bundle   *content.Bundle
	notifier Notifier
	logger   *slog.Logger
}

// NewSeedTaskHandler 创建任务处理器；notifier 可以为 nil。
func NewSeedTaskHandler(seeder Seeder, bundle *content.Bundle, notifier Notifier, logger *slog.Logger) *SeedTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SeedTaskHandler{seeder: seeder, bundle: bundle, notifier: notifier, logger: logger}
}

// ProcessTask 实现 asynq.Handler。
func (h *SeedTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	log := h.logger

	var payload tasks.ContentSeedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Error("unmarshal task payload failed", slog.Any("error", err))
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	ctx = notify.WithCorrelationID(ctx, payload.CorrelationID)
	log = log.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.String("requested_by", payload.RequestedBy),
	)
	log.Info("starting content seed task")

	defer func() {
		if retErr == nil || !isFinalAsynqAttempt(ctx) {
			return
		}
		h.publish(ctx, notify.Event{Type: notify.EventSeedFailed}, log)
	}()

	report, err := h.seeder.Seed(ctx, h.bundle)
	if errors.Is(err, store.ErrNotConfigured) {
		log.Warn("remote content store not configured, skipping seed")
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if err != nil {
		log.Error("seed content failed", slog.Any("error", err))
		return err
	}

	log.Info("content seed task completed", slog.Any("seeded", report.Seeded))
	if len(report.Seeded) > 0 {
		h.publish(ctx, notify.Event{Type: notify.EventContentUpdated, Action: "seeded"}, log)
	}
	return nil
}

func (h *SeedTaskHandler) publish(ctx context.Context, event notify.Event, log *slog.Logger) {
	if h.notifier == nil {
		return
	}
	if err := h.notifier.Publish(ctx, event); err != nil {
		log.Error("publish seed notification failed", slog.Any("error", err))
	}
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
