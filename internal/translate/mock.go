package translate

import (
	"context"
	"fmt"
	"sync"

	"phPortfolio/internal/content"
)

// MockProvider 是测试用的翻译服务。
type MockProvider struct {
	ProviderName string
	Translations map[string]string // 原文到译文
	Err          error             // 非空时每次调用都返回该错误

	mu    sync.Mutex
	calls []string
}

// NewMockProvider 创建带有少量默认译文的 MockProvider。
func NewMockProvider() *MockProvider {
	return &MockProvider{
		ProviderName: "mock",
		Translations: map[string]string{
			"产品经理": "Product Manager",
			"测试公司": "Test Company",
		},
	}
}

func (m *MockProvider) Name() string { return m.ProviderName }

func (m *MockProvider) Translate(_ context.Context, text string, _, _ content.Language) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	if translated, ok := m.Translations[text]; ok {
		return translated, nil
	}
	return fmt.Sprintf("[%s]", text), nil
}

// CallCount 返回 Translate 被调用的次数。
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls 返回收到的原文，按调用顺序。
func (m *MockProvider) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

var _ Provider = (*MockProvider)(nil)
