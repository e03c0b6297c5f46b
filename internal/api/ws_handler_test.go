package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"phPortfolio/internal/notify"
)

func TestWsHandler_CheckOrigin(t *testing.T) {
	cases := []struct {
		name    string
		allowed []string
		host    string
		origin  string
		want    bool
	}{
		{name: "no origin header", host: "api.example.com", want: true},
		{name: "same host without allow list", host: "api.example.com", origin: "https://api.example.com", want: true},
		{name: "other host without allow list", host: "api.example.com", origin: "https://evil.example", want: false},
		{name: "listed origin", allowed: []string{"https://portfolio.example"}, host: "api.example.com", origin: "https://portfolio.example", want: true},
		{name: "unlisted origin", allowed: []string{"https://portfolio.example"}, host: "api.example.com", origin: "https://api.example.com", want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newWsHandler(nil, tc.allowed)
			req := httptest.NewRequest(http.MethodGet, "/v1/ws", nil)
			req.Host = tc.host
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if got := h.checkOrigin(req); got != tc.want {
				t.Fatalf("expected %v got %v", tc.want, got)
			}
		})
	}
}

func TestWsHandler_ForwardsPublishedEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	events := make(chan *redis.Message, 1)
	unsubscribed := make(chan struct{})
	h := newWsHandler(func(context.Context) (<-chan *redis.Message, func() error) {
		return events, func() error {
			close(unsubscribed)
			return nil
		}
	}, nil)

	r := gin.New()
	r.GET("/v1/ws", h.HandleConnection)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/v1/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	payload := `{"type":"content.updated","category":"skills","action":"updated"}`
	events <- &redis.Message{Channel: notify.Channel, Payload: payload}

	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatalf("set deadline: %v", err)
	}
	kind, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if kind != websocket.TextMessage || string(data) != payload {
		t.Fatalf("unexpected message %d %s", kind, data)
	}

	if err := conn.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	select {
	case <-unsubscribed:
	case <-time.After(5 * time.Second):
		t.Fatalf("subscription not released after client disconnect")
	}
}

func TestWsHandler_SendsPings(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newWsHandler(func(context.Context) (<-chan *redis.Message, func() error) {
		return make(chan *redis.Message), func() error { return nil }
	}, nil)
	h.pingInterval = 20 * time.Millisecond

	r := gin.New()
	r.GET("/v1/ws", h.HandleConnection)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/v1/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	pinged := make(chan struct{}, 1)
	conn.SetPingHandler(func(string) error {
		select {
		case pinged <- struct{}{}:
		default:
		}
		return nil
	})
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case <-pinged:
	case <-time.After(5 * time.Second):
		t.Fatalf("no ping received")
	}
}
