package translate

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"phPortfolio/internal/content"
	"phPortfolio/internal/metrics"
)

// ErrNoProvider 表示没有配置任何翻译服务。
var ErrNoProvider = errors.New("no translation provider configured")

// Result 是一次翻译的结果。失败时 Text 为原文，Error 描述失败原因。
type Result struct {
	Text     string `json:"text"`
	Success  bool   `json:"success"`
	Provider string `json:"provider,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Helper 依次尝试主、备翻译服务，把中文内容翻译为英文。
// 不重试、不缓存；调用方自行决定失败后如何处理。
type Helper struct {
	providers []Provider
	source    content.Language
	target    content.Language
	logger    *slog.Logger
}

// NewHelper 创建翻译助手；primary 或 secondary 为 nil 时跳过。
func NewHelper(primary, secondary Provider, logger *slog.Logger) *Helper {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Helper{
		source: content.LanguageChinese,
		target: content.LanguageEnglish,
		logger: logger,
	}
	for _, p := range []Provider{primary, secondary} {
		if p != nil {
			h.providers = append(h.providers, p)
		}
	}
	return h
}

// Translate 翻译单段文本。空白输入直接返回成功且不调用任何服务。
func (h *Helper) Translate(ctx context.Context, text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Text: "", Success: true}
	}
	if len(h.providers) == 0 {
		return Result{Text: text, Error: ErrNoProvider.Error()}
	}

	var errs []error
	for _, p := range h.providers {
		translated, err := p.Translate(ctx, text, h.source, h.target)
		metrics.ObserveTranslation(p.Name(), err == nil)
		if err == nil {
			return Result{Text: translated, Success: true, Provider: p.Name()}
		}
		h.logger.Warn("translation provider failed",
			slog.String("provider", p.Name()),
			slog.Any("error", err),
		)
		errs = append(errs, err)
	}

	return Result{Text: text, Error: errors.Join(errs...).Error()}
}

// TranslateAll 逐条翻译，结果与输入一一对应、顺序不变。
func (h *Helper) TranslateAll(ctx context.Context, texts []string) []Result {
	results := make([]Result, len(texts))
	for i, text := range texts {
		results[i] = h.Translate(ctx, text)
	}
	return results
}
