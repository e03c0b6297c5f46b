package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"phPortfolio/internal/content"
)

// Channel 是内容变更通知使用的 Redis Pub/Sub 频道。
const Channel = "portfolio:content"

const (
	// EventContentUpdated 表示某分类的远程内容发生了变化，前端应重新解析。
	EventContentUpdated = "content.updated"
	// EventSeedFailed 表示内容初始化任务在最后一次重试后仍然失败。
	EventSeedFailed = "content.seed_failed"
)

type correlationIDKey struct{}

// WithCorrelationID 把请求的 Correlation ID 放入 ctx，之后发布的事件会带上它。
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// CorrelationID 返回 ctx 中的 Correlation ID。
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}

// Event 是推送给前端的消息，字段名与前端解析保持一致。
type Event struct {
	Type          string           `json:"type"`
	Category      content.Category `json:"category,omitempty"`
	Action        string           `json:"action,omitempty"`
	CorrelationID string           `json:"correlation_id,omitempty"`
}

// ContentUpdated 构造内容变更事件。
func ContentUpdated(c content.Category, action string) Event {
	return Event{Type: EventContentUpdated, Category: c, Action: action}
}

// Publisher 通过 Redis Pub/Sub 广播事件。
type Publisher struct {
	rdb     redis.Cmdable
	channel string
}

// NewPublisher 创建发布到 Channel 的 Publisher。
func NewPublisher(rdb redis.Cmdable) *Publisher {
	return &Publisher{rdb: rdb, channel: Channel}
}

// Publish 广播事件；没有订阅者时也视为成功。
func (p *Publisher) Publish(ctx context.Context, event Event) error {
	if event.CorrelationID == "" {
		event.CorrelationID = CorrelationID(ctx)
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.channel, string(payload)).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}
