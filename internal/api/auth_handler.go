package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"phPortfolio/internal/api/middleware"
	"phPortfolio/internal/auth"
	"phPortfolio/internal/database"
	"phPortfolio/internal/store"
)

// LoginLimits 控制登录限流与失败锁定。
type LoginLimits struct {
	PerHour       int
	LockThreshold int
	LockTTL       time.Duration
}

// AuthHandler 处理后台编辑者登录。
type AuthHandler struct {
	db      *gorm.DB
	service *auth.Service
	redis   redis.Cmdable
	limits  LoginLimits
	now     func() time.Time
}

// NewAuthHandler 构造认证处理器。
func NewAuthHandler(db *gorm.DB, service *auth.Service, redisClient redis.Cmdable, limits LoginLimits) *AuthHandler {
	return &AuthHandler{
		db:      db,
		service: service,
		redis:   redisClient,
		limits:  limits,
		now:     time.Now,
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Login 校验口令并返回访问令牌。
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if h.db == nil {
		respondError(c, store.ErrNotConfigured)
		return
	}

	ctx := c.Request.Context()
	username := strings.ToLower(strings.TrimSpace(req.Username))
	logger := middleware.LoggerFromContext(c).With(slog.String("username", username))

	// 每 IP+用户名 每小时限次
	rateKey := "rate:login:" + c.ClientIP() + ":" + username + ":" + h.now().UTC().Format("2006010215")
	count, err := incrWithTTL(ctx, h.redis, rateKey, time.Hour)
	if err != nil {
		logger.Warn("login rate counter unavailable", slog.Any("error", err))
		count = 0
	}
	if h.limits.PerHour > 0 && count > int64(h.limits.PerHour) {
		TooManyRequests(c, "rate limit exceeded")
		return
	}

	if ttl, _ := h.redis.TTL(ctx, lockKey(username)).Result(); ttl > 0 {
		TooManyRequests(c, "account temporarily locked")
		return
	}

	var user database.User
	if err := h.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Info("login failed: user not found")
			h.recordFailure(ctx, username, logger)
			Unauthorized(c)
			return
		}
		logger.Error("login query failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.Info("login failed: password mismatch", slog.Uint64("user_id", uint64(user.ID)))
		h.recordFailure(ctx, username, logger)
		Unauthorized(c)
		return
	}

	_ = h.redis.Del(ctx, failKey(username)).Err()

	token, _, err := h.service.IssueToken(user.ID, user.Username)
	if err != nil {
		logger.Error("issue token failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	logger.Info("login succeeded", slog.Uint64("user_id", uint64(user.ID)))
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.service.TTL().Seconds()),
	})
}

func lockKey(username string) string { return "lock:login:" + username }
func failKey(username string) string { return "lock:login:fail:" + username }

// recordFailure 累计失败次数，达到阈值后锁定账号一段时间。
func (h *AuthHandler) recordFailure(ctx context.Context, username string, logger *slog.Logger) {
	count, err := incrWithTTL(ctx, h.redis, failKey(username), h.limits.LockTTL)
	if err != nil {
		logger.Warn("login failure counter unavailable", slog.Any("error", err))
		return
	}
	if h.limits.LockThreshold > 0 && count >= int64(h.limits.LockThreshold) {
		if err := h.redis.Set(ctx, lockKey(username), "1", h.limits.LockTTL).Err(); err != nil {
			logger.Warn("lock account failed", slog.Any("error", err))
			return
		}
		logger.Warn("account locked after repeated failures", slog.Int64("failures", count))
	}
}
