package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"phPortfolio/internal/api/middleware"
	"phPortfolio/internal/tasks"
	"phPortfolio/internal/translate"
)

// TextTranslator 是单段与批量翻译接口，*translate.Helper 满足该接口。
type TextTranslator interface {
	Translate(ctx context.Context, text string) translate.Result
	TranslateAll(ctx context.Context, texts []string) []translate.Result
}

// TaskEnqueuer 投递异步任务，*asynq.Client 满足该接口。
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AdminHandler 提供翻译与内容初始化等后台辅助接口。
type AdminHandler struct {
	translator TextTranslator
	queue      TaskEnqueuer
}

// NewAdminHandler 构造后台辅助处理器。
func NewAdminHandler(translator TextTranslator, queue TaskEnqueuer) *AdminHandler {
	return &AdminHandler{translator: translator, queue: queue}
}

type translateTextRequest struct {
	Text  *string  `json:"text"`
	Texts []string `json:"texts"`
}

// TranslateText 把中文翻译为英文；失败时返回原文与错误信息，状态码仍为 200。
func (h *AdminHandler) TranslateText(c *gin.Context) {
	var req translateTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	switch {
	case req.Text != nil:
		c.JSON(http.StatusOK, h.translator.Translate(ctx, *req.Text))
	case req.Texts != nil:
		c.JSON(http.StatusOK, gin.H{"results": h.translator.TranslateAll(ctx, req.Texts)})
	default:
		BadRequest(c, "text or texts is required")
	}
}

// EnqueueSeed 投递内容初始化任务。
func (h *AdminHandler) EnqueueSeed(c *gin.Context) {
	logger := middleware.LoggerFromContext(c)
	_, username, _ := middleware.UserFromContext(c)

	task, err := tasks.NewContentSeedTask(username, middleware.GetCorrelationID(c))
	if err != nil {
		logger.Error("build seed task failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	info, err := h.queue.EnqueueContext(c.Request.Context(), task)
	switch {
	case errors.Is(err, asynq.ErrDuplicateTask):
		c.JSON(http.StatusAccepted, gin.H{"status": "already queued"})
		return
	case err != nil:
		logger.Error("enqueue seed task failed", slog.Any("error", err))
		Internal(c, "failed to enqueue seed task")
		return
	}

	logger.Info("seed task enqueued", slog.String("task_id", info.ID))
	c.JSON(http.StatusAccepted, gin.H{"status": "queued", "taskId": info.ID})
}
