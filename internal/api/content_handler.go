package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"phPortfolio/internal/api/middleware"
	"phPortfolio/internal/content"
	"phPortfolio/internal/drafts"
	"phPortfolio/internal/resolver"
)

// ContentResolver 返回合并后的内容，*resolver.Resolver 满足该接口。
type ContentResolver interface {
	Resolve(ctx context.Context, lang content.Language) resolver.Resolution
}

// DraftStore 是草稿与界面状态的读写接口，*drafts.Store 满足该接口。
type DraftStore interface {
	Read(ctx context.Context, owner string, c content.Category, lang content.Language) drafts.Draft
	Write(ctx context.Context, owner string, c content.Category, lang content.Language, value any) error
	Clear(ctx context.Context, owner string, c content.Category, lang content.Language) error
	Overlay(ctx context.Context, owner string, view *content.View) []content.Category
	LoadState(ctx context.Context, owner string) drafts.AppState
	SaveState(ctx context.Context, owner string, state drafts.AppState) error
}

// ContentHandler 提供公开页面读取内容、草稿与界面状态的接口。
type ContentHandler struct {
	resolver ContentResolver
	drafts   DraftStore
}

// NewContentHandler 构造内容处理器。
func NewContentHandler(resolver ContentResolver, draftStore DraftStore) *ContentHandler {
	return &ContentHandler{resolver: resolver, drafts: draftStore}
}

type contentResponse struct {
	Language content.Language   `json:"lang"`
	Content  *content.View      `json:"content"`
	Remote   []content.Category `json:"remote"`
	Fallback []content.Category `json:"fallback"`
	Drafts   []content.Category `json:"drafts"`
}

func ownerFromRequest(c *gin.Context) string {
	return c.GetHeader(middleware.ClientIDHeader)
}

// GetContent 返回 lang 下的页面内容；未指定 lang 时使用已保存的界面语言。
// 管理模式开启时叠加该客户端的草稿。
func (h *ContentHandler) GetContent(c *gin.Context) {
	ctx := c.Request.Context()
	owner := ownerFromRequest(c)
	state := h.drafts.LoadState(ctx, owner)

	lang := state.Language
	if raw := c.Query("lang"); raw != "" {
		lang = content.NormalizeLanguage(raw)
	}

	res := h.resolver.Resolve(ctx, lang)
	resp := contentResponse{
		Language: res.View.Language,
		Content:  res.View,
		Remote:   nonNil(res.Remote),
		Fallback: nonNil(res.Fallback),
		Drafts:   []content.Category{},
	}
	if state.AdminMode {
		resp.Drafts = nonNil(h.drafts.Overlay(ctx, owner, res.View))
	}
	c.JSON(http.StatusOK, resp)
}

// GetState 返回已保存的界面状态。
func (h *ContentHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.drafts.LoadState(c.Request.Context(), ownerFromRequest(c)))
}

// PutState 在语言切换或进出管理模式时保存界面状态。
func (h *ContentHandler) PutState(c *gin.Context) {
	var state drafts.AppState
	if err := c.ShouldBindJSON(&state); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if err := h.drafts.SaveState(c.Request.Context(), ownerFromRequest(c), state); err != nil {
		middleware.LoggerFromContext(c).Warn("save app state failed", slog.Any("error", err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// GetDraft 返回草稿，不存在时返回静态内容。
func (h *ContentHandler) GetDraft(c *gin.Context) {
	category, lang, ok := draftTarget(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.drafts.Read(c.Request.Context(), ownerFromRequest(c), category, lang))
}

// PutDraft 保存草稿；容量不足返回 413，其余失败返回 500，原草稿不变。
func (h *ContentHandler) PutDraft(c *gin.Context) {
	category, lang, ok := draftTarget(c)
	if !ok {
		return
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		BadRequest(c, "unreadable body")
		return
	}
	if !json.Valid(body) {
		BadRequest(c, "body must be valid json")
		return
	}

	if err := h.drafts.Write(c.Request.Context(), ownerFromRequest(c), category, lang, json.RawMessage(body)); err != nil {
		middleware.LoggerFromContext(c).Warn("save draft failed",
			slog.String("category", category.String()),
			slog.String("lang", lang.String()),
			slog.Any("error", err),
		)
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteDraft 丢弃草稿。
func (h *ContentHandler) DeleteDraft(c *gin.Context) {
	category, lang, ok := draftTarget(c)
	if !ok {
		return
	}
	if err := h.drafts.Clear(c.Request.Context(), ownerFromRequest(c), category, lang); err != nil {
		middleware.LoggerFromContext(c).Error("clear draft failed", slog.Any("error", err))
		Internal(c, "failed to clear draft")
		return
	}
	c.Status(http.StatusNoContent)
}

func draftTarget(c *gin.Context) (content.Category, content.Language, bool) {
	category, err := content.ParseCategory(c.Param("category"))
	if err != nil {
		BadRequest(c, err.Error())
		return "", "", false
	}
	lang, err := content.ParseLanguage(c.Query("lang"))
	if err != nil {
		BadRequest(c, err.Error())
		return "", "", false
	}
	return category, lang, true
}

func nonNil(categories []content.Category) []content.Category {
	if categories == nil {
		return []content.Category{}
	}
	return categories
}
