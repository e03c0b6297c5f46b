package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"phPortfolio/internal/content"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIConfig 是主翻译服务（OpenAI 兼容接口）的配置。
type OpenAIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
}

// OpenAIProvider 通过 chat completion 接口翻译单段文本。
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewOpenAIProvider 创建主翻译服务；BaseURL 为空时使用官方地址。
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

// Translate 翻译一段文本，返回去除首尾空白后的译文。
func (p *OpenAIProvider) Translate(ctx context.Context, text string, source, target content.Language) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(source, target)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: p.temperature,
	})
	if err != nil {
		return "", &ProviderError{Provider: p.Name(), Message: "chat completion failed", Cause: err}
	}
	if len(resp.Choices) == 0 {
		return "", &ProviderError{Provider: p.Name(), Message: "no choices returned"}
	}

	translated := strings.TrimSpace(resp.Choices[0].Message.Content)
	if translated == "" {
		return "", &ProviderError{Provider: p.Name(), Message: "empty translation"}
	}
	return translated, nil
}

func systemPrompt(source, target content.Language) string {
	return fmt.Sprintf(`You translate personal portfolio content from %s to %s.
Keep the tone professional and concise, the way it would read on a resume.
Do not translate URLs, email addresses, product names or technology names.
Reply with the translation only, without quotes or explanations.`, languageName(source), languageName(target))
}

func languageName(lang content.Language) string {
	switch lang {
	case content.LanguageChinese:
		return "Simplified Chinese"
	case content.LanguageEnglish:
		return "English"
	default:
		return lang.String()
	}
}

var _ Provider = (*OpenAIProvider)(nil)
