package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"phPortfolio/internal/content"
	"phPortfolio/internal/drafts"
	"phPortfolio/internal/editor"
	"phPortfolio/internal/errcode"
	"phPortfolio/internal/store"
)

func Error(c *gin.Context, status, code int, msg string) {
	c.JSON(status, gin.H{"error": msg, "code": code})
}

func AbortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "code": errcode.Unauthorized})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, errcode.Unauthorized, "unauthorized")
}

func BadRequest(c *gin.Context, msg string) {
	Error(c, http.StatusBadRequest, errcode.InvalidRequest, msg)
}

func NotFound(c *gin.Context, msg string) {
	Error(c, http.StatusNotFound, errcode.ResourceMissing, msg)
}

func TooManyRequests(c *gin.Context, msg string) {
	Error(c, http.StatusTooManyRequests, errcode.RateLimited, msg)
}

func Internal(c *gin.Context, msg string) {
	Error(c, http.StatusInternalServerError, errcode.SystemError, msg)
}

// respondError 把领域错误映射为 HTTP 状态与错误码。
func respondError(c *gin.Context, err error) {
	var verr *content.ValidationError
	switch {
	case errors.As(err, &verr):
		Error(c, http.StatusUnprocessableEntity, errcode.ValidationFailed, verr.Error())
	case errors.Is(err, store.ErrNotFound):
		NotFound(c, "content not found")
	case errors.Is(err, store.ErrCategoryMismatch), errors.Is(err, editor.ErrNotChinese), errors.Is(err, drafts.ErrInvalidDraft):
		BadRequest(c, err.Error())
	case errors.Is(err, editor.ErrConfirmationRequired):
		Error(c, http.StatusConflict, errcode.ConfirmationRequired, "delete requires confirm=true")
	case errors.Is(err, store.ErrNotConfigured):
		Error(c, http.StatusServiceUnavailable, errcode.StoreNotConfigured, "remote content store not configured")
	case errors.Is(err, drafts.ErrQuotaExceeded):
		Error(c, http.StatusRequestEntityTooLarge, errcode.DraftQuotaExceeded,
			"draft storage is full, clear some drafts and try again")
	case errors.Is(err, drafts.ErrSaveFailed):
		Error(c, http.StatusInternalServerError, errcode.DraftSaveFailed, "draft could not be saved, try again")
	default:
		Internal(c, "internal error")
	}
}
