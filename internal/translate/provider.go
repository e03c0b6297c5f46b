package translate

import (
	"context"
	"fmt"

	"phPortfolio/internal/content"
)

// Provider 是一个外部翻译服务，只关心文本进、文本出。
type Provider interface {
	Name() string
	Translate(ctx context.Context, text string, source, target content.Language) (string, error)
}

// ProviderError 表示翻译服务调用失败。
type ProviderError struct {
	Provider string
	Message  string
	Cause    error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}
