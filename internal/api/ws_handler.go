package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"phPortfolio/internal/api/middleware"
	"phPortfolio/internal/notify"
)

const (
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 5 * time.Second
)

// Subscriber 订阅 Redis 频道，*redis.Client 满足该接口。
type Subscriber interface {
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// subscribeFunc 返回事件通道以及取消订阅的函数。
type subscribeFunc func(ctx context.Context) (<-chan *redis.Message, func() error)

// WsHandler 把内容变更事件推送给公开页面，页面收到后重新拉取内容。
type WsHandler struct {
	subscribe      subscribeFunc
	upgrader       websocket.Upgrader
	allowedOrigins []string
	pingInterval   time.Duration
}

// NewWsHandler 构造 WebSocket 处理器。
func NewWsHandler(redisClient Subscriber, allowedOrigins []string) *WsHandler {
	return newWsHandler(func(ctx context.Context) (<-chan *redis.Message, func() error) {
		pubsub := redisClient.Subscribe(ctx, notify.Channel)
		return pubsub.Channel(), pubsub.Close
	}, allowedOrigins)
}

func newWsHandler(subscribe subscribeFunc, allowedOrigins []string) *WsHandler {
	h := &WsHandler{subscribe: subscribe, allowedOrigins: allowedOrigins, pingInterval: wsPingInterval}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

func (h *WsHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(h.allowedOrigins) == 0 {
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
	for _, allowed := range h.allowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// HandleConnection 升级连接并转发 notify.Channel 上的事件。
func (h *WsHandler) HandleConnection(c *gin.Context) {
	logger := middleware.LoggerFromContext(c).With(slog.String("client_ip", c.ClientIP()))

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("upgrade websocket failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	go h.readLoop(conn, cancel)

	if err := h.forward(ctx, conn, logger); err != nil {
		logger.Info("websocket connection closed", slog.Any("error", err))
		return
	}
	logger.Info("websocket connection closed")
}

// readLoop 丢弃客户端消息，仅用于发现断开。
func (h *WsHandler) readLoop(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *WsHandler) forward(ctx context.Context, conn *websocket.Conn, logger *slog.Logger) error {
	ch, unsubscribe := h.subscribe(ctx)
	defer unsubscribe()

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("pubsub channel closed")
			}
			logger.Debug("forwarding content event", slog.String("channel", msg.Channel))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return fmt.Errorf("write message: %w", err)
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(wsWriteTimeout)); err != nil {
				return fmt.Errorf("write ping: %w", err)
			}
		}
	}
}
