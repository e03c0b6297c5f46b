package drafts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"phPortfolio/internal/content"
	"phPortfolio/internal/metrics"
)

const (
	keyPrefix = "drafts"
	// DefaultOwner 用于未携带客户端标识的请求。
	DefaultOwner = "anonymous"
)

var (
	// ErrQuotaExceeded 表示草稿超过容量上限（或 Redis 内存不足），需要用户清理后重试。
	ErrQuotaExceeded = errors.New("draft storage quota exceeded")
	// ErrSaveFailed 表示其他原因导致的保存失败。
	ErrSaveFailed = errors.New("draft save failed")
	// ErrInvalidDraft 表示草稿内容无法解码为分类对应的结构。
	ErrInvalidDraft = errors.New("invalid draft value")
)

// Source 标识读取到的值来自草稿还是静态内容。
type Source string

const (
	SourceDraft    Source = "draft"
	SourceFallback Source = "fallback"
)

// Draft 是某分类某语言下的一份草稿（或其兜底值）。
type Draft struct {
	Category content.Category `json:"category"`
	Language content.Language `json:"lang"`
	Source   Source           `json:"source"`
	Value    json.RawMessage  `json:"value"`
}

// AppState 是需要跨会话保留的界面状态，只在显式保存点读写。
type AppState struct {
	Language  content.Language `json:"language"`
	AdminMode bool             `json:"adminMode"`
}

// Options 控制草稿容量与过期时间。
type Options struct {
	MaxBytes int
	TTL      time.Duration
}

// Store 把每个 (owner, 分类, 语言) 的草稿保存为一个 Redis key。
type Store struct {
	rdb      redis.Cmdable
	bundle   *content.Bundle
	maxBytes int
	ttl      time.Duration
	logger   *slog.Logger
}

// New 创建草稿存储。
func New(rdb redis.Cmdable, bundle *content.Bundle, opts Options, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		rdb:      rdb,
		bundle:   bundle,
		maxBytes: opts.MaxBytes,
		ttl:      opts.TTL,
		logger:   logger,
	}
}

// Key 返回草稿对应的 Redis key。
func Key(owner string, c content.Category, lang content.Language) string {
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix, normalizeOwner(owner), c, lang)
}

// StateKey 返回界面状态对应的 Redis key。
func StateKey(owner string) string {
	return fmt.Sprintf("%s:%s:state", keyPrefix, normalizeOwner(owner))
}

func normalizeOwner(owner string) string {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return DefaultOwner
	}
	return owner
}

// Read 返回草稿；草稿不存在、无法解析或 Redis 不可用时返回静态内容，不会失败。
func (s *Store) Read(ctx context.Context, owner string, c content.Category, lang content.Language) Draft {
	key := Key(owner, c, lang)
	data, err := s.rdb.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return s.fallback(c, lang)
	case err != nil:
		s.logger.Warn("read draft failed", slog.String("key", key), slog.Any("error", err))
		return s.fallback(c, lang)
	}

	if err := decodeInto(&content.View{}, c, data); err != nil {
		s.logger.Warn("discarding unreadable draft", slog.String("key", key), slog.Any("error", err))
		return s.fallback(c, lang)
	}
	return Draft{Category: c, Language: lang, Source: SourceDraft, Value: json.RawMessage(data)}
}

func (s *Store) fallback(c content.Category, lang content.Language) Draft {
	data, err := json.Marshal(s.bundle.View(lang).Value(c))
	if err != nil {
		data = []byte("null")
	}
	return Draft{Category: c, Language: lang, Source: SourceFallback, Value: data}
}

// Write 保存草稿。失败时原有草稿保持不变，错误可用 errors.Is 区分
// ErrQuotaExceeded、ErrInvalidDraft 与 ErrSaveFailed。
func (s *Store) Write(ctx context.Context, owner string, c content.Category, lang content.Language, value any) error {
	data, err := marshalValue(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDraft, err)
	}
	if err := decodeInto(&content.View{}, c, data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDraft, err)
	}
	if s.maxBytes > 0 && len(data) > s.maxBytes {
		metrics.ObserveDraftWriteFailure("quota")
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrQuotaExceeded, len(data), s.maxBytes)
	}

	key := Key(owner, c, lang)
	if err := s.rdb.Set(ctx, key, string(data), s.ttl).Err(); err != nil {
		if isOutOfMemory(err) {
			metrics.ObserveDraftWriteFailure("quota")
			return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		metrics.ObserveDraftWriteFailure("error")
		s.logger.Error("write draft failed", slog.String("key", key), slog.Any("error", err))
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	return nil
}

// Clear 删除草稿，之后 Read 返回静态内容。
func (s *Store) Clear(ctx context.Context, owner string, c content.Category, lang content.Language) error {
	if err := s.rdb.Del(ctx, Key(owner, c, lang)).Err(); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}

// Overlay 把 owner 在 view 语言下的全部有效草稿覆盖到 view 上，返回被覆盖的分类。
func (s *Store) Overlay(ctx context.Context, owner string, view *content.View) []content.Category {
	categories := content.AllCategories()
	keys := make([]string, len(categories))
	for i, c := range categories {
		keys[i] = Key(owner, c, view.Language)
	}

	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		s.logger.Warn("load drafts failed", slog.String("owner", normalizeOwner(owner)), slog.Any("error", err))
		return nil
	}

	var applied []content.Category
	for i, raw := range values {
		str, ok := raw.(string)
		if !ok {
			continue
		}
		if err := decodeInto(view, categories[i], []byte(str)); err != nil {
			s.logger.Warn("skipping unreadable draft", slog.String("key", keys[i]), slog.Any("error", err))
			continue
		}
		applied = append(applied, categories[i])
	}
	return applied
}

// LoadState 读取界面状态；不存在或无法解析时返回默认值。
func (s *Store) LoadState(ctx context.Context, owner string) AppState {
	state := AppState{Language: content.DefaultLanguage}
	data, err := s.rdb.Get(ctx, StateKey(owner)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("read app state failed", slog.Any("error", err))
		}
		return state
	}

	var stored AppState
	if err := json.Unmarshal(data, &stored); err != nil {
		s.logger.Warn("discarding unreadable app state", slog.Any("error", err))
		return state
	}
	if stored.Language.Valid() {
		state.Language = stored.Language
	}
	state.AdminMode = stored.AdminMode
	return state
}

// SaveState 保存界面状态（语言切换、进入或退出管理模式时调用）。
func (s *Store) SaveState(ctx context.Context, owner string, state AppState) error {
	if !state.Language.Valid() {
		return fmt.Errorf("%w: unsupported language %q", ErrInvalidDraft, state.Language)
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal app state: %w", err)
	}
	if err := s.rdb.Set(ctx, StateKey(owner), string(data), s.ttl).Err(); err != nil {
		if isOutOfMemory(err) {
			return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	return nil
}

func marshalValue(value any) ([]byte, error) {
	switch v := value.(type) {
	case json.RawMessage:
		if !json.Valid(v) {
			return nil, errors.New("malformed json")
		}
		return v, nil
	case []byte:
		if !json.Valid(v) {
			return nil, errors.New("malformed json")
		}
		return v, nil
	default:
		return json.Marshal(value)
	}
}

func decodeInto(view *content.View, c content.Category, data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return errors.New("draft is null")
	}
	return view.SetRaw(c, json.RawMessage(data))
}

// Redis 在 maxmemory 用尽时返回以 OOM 开头的错误。
func isOutOfMemory(err error) bool {
	return strings.HasPrefix(err.Error(), "OOM")
}
