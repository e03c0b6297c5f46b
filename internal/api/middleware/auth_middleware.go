package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"phPortfolio/internal/auth"
	"phPortfolio/internal/errcode"
)

const (
	userIDKey   = "userID"
	usernameKey = "username"
)

// TokenValidator 校验访问令牌，*auth.Service 满足该接口。
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "code": errcode.Unauthorized})
}

// AuthMiddleware 校验 Bearer 访问令牌并将编辑者信息注入上下文。
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		parts := strings.Fields(c.GetHeader("Authorization"))
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c)
			return
		}

		claims, err := validator.ValidateToken(parts[1])
		if err != nil {
			LoggerFromContext(c).Info("rejecting access token", slog.Any("error", err))
			abortUnauthorized(c)
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(usernameKey, claims.Username)
		c.Next()
	}
}

// UserFromContext 返回已认证编辑者的 id 与用户名。
func UserFromContext(c *gin.Context) (uint, string, bool) {
	id, ok := c.Get(userIDKey)
	if !ok {
		return 0, "", false
	}
	userID, ok := id.(uint)
	if !ok {
		return 0, "", false
	}
	return userID, c.GetString(usernameKey), true
}
