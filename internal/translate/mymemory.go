package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"phPortfolio/internal/content"
)

const defaultMyMemoryEndpoint = "https://api.mymemory.translated.net/get"

// MyMemoryConfig 是备用翻译服务的配置。
type MyMemoryConfig struct {
	Endpoint string
	// Email 可选，填写后免费额度更高。
	Email   string
	Timeout time.Duration
}

// MyMemoryProvider 调用 MyMemory 的公开翻译接口。
type MyMemoryProvider struct {
	endpoint string
	email    string
	client   *http.Client
}

func NewMyMemoryProvider(cfg MyMemoryConfig) *MyMemoryProvider {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultMyMemoryEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &MyMemoryProvider{
		endpoint: endpoint,
		email:    cfg.Email,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *MyMemoryProvider) Name() string { return "mymemory" }

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	// 接口有时以字符串返回状态码。
	ResponseStatus  json.RawMessage `json:"responseStatus"`
	ResponseDetails string          `json:"responseDetails"`
}

func (p *MyMemoryProvider) Translate(ctx context.Context, text string, source, target content.Language) (string, error) {
	query := url.Values{}
	query.Set("q", text)
	query.Set("langpair", fmt.Sprintf("%s|%s", myMemoryCode(source), myMemoryCode(target)))
	if p.email != "" {
		query.Set("de", p.email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return "", &ProviderError{Provider: p.Name(), Message: "build request", Cause: err}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: p.Name(), Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{Provider: p.Name(), Message: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	var body myMemoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", &ProviderError{Provider: p.Name(), Message: "decode response", Cause: err}
	}
	if status := strings.Trim(string(body.ResponseStatus), `"`); status != "" && status != "200" {
		return "", &ProviderError{Provider: p.Name(), Message: fmt.Sprintf("status %s: %s", status, body.ResponseDetails)}
	}

	translated := strings.TrimSpace(body.ResponseData.TranslatedText)
	if translated == "" {
		return "", &ProviderError{Provider: p.Name(), Message: "empty translation"}
	}
	return translated, nil
}

func myMemoryCode(lang content.Language) string {
	if lang == content.LanguageChinese {
		return "zh-CN"
	}
	return lang.String()
}

var _ Provider = (*MyMemoryProvider)(nil)
