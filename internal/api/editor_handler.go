package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"phPortfolio/internal/api/middleware"
	"phPortfolio/internal/content"
	"phPortfolio/internal/editor"
)

// EditorHandler 提供后台中英配对编辑接口。
type EditorHandler struct {
	session *editor.Session
}

// NewEditorHandler 构造后台编辑处理器。
func NewEditorHandler(session *editor.Session) *EditorHandler {
	return &EditorHandler{session: session}
}

type pairRequest struct {
	Chinese json.RawMessage `json:"zh"`
	English json.RawMessage `json:"en"`
}

type translateResponse struct {
	Pair   editor.Pair            `json:"pair"`
	Report editor.TranslateReport `json:"report"`
}

func entryCategory(c *gin.Context) (content.Category, bool) {
	category, err := content.ParseCategory(c.Param("category"))
	if err != nil {
		BadRequest(c, err.Error())
		return "", false
	}
	if category.IsSingleton() {
		BadRequest(c, category.String()+" is not a multi-row category")
		return "", false
	}
	return category, true
}

func singletonCategory(c *gin.Context) (content.Category, bool) {
	category, err := content.ParseCategory(c.Param("category"))
	if err != nil {
		BadRequest(c, err.Error())
		return "", false
	}
	if !category.IsSingleton() {
		BadRequest(c, category.String()+" is not a singleton category")
		return "", false
	}
	return category, true
}

func bindPair(c *gin.Context, category content.Category) (editor.Pair, bool) {
	var req pairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return editor.Pair{}, false
	}
	zh, err := content.DecodeEntry(category, req.Chinese)
	if err != nil {
		BadRequest(c, err.Error())
		return editor.Pair{}, false
	}
	en, err := content.DecodeEntry(category, req.English)
	if err != nil {
		BadRequest(c, err.Error())
		return editor.Pair{}, false
	}
	return editor.Pair{Category: category, Chinese: zh, English: en}, true
}

// ListEntries 返回分类的中英两组行。
func (h *EditorHandler) ListEntries(c *gin.Context) {
	category, ok := entryCategory(c)
	if !ok {
		return
	}
	listing, err := h.session.Load(c.Request.Context(), category)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// NewPair 返回新建表单。
func (h *EditorHandler) NewPair(c *gin.Context) {
	category, ok := entryCategory(c)
	if !ok {
		return
	}
	pair, err := h.session.NewPair(c.Request.Context(), category)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// OpenPair 返回中文行及其英文对应行。
func (h *EditorHandler) OpenPair(c *gin.Context) {
	category, ok := entryCategory(c)
	if !ok {
		return
	}
	pair, err := h.session.Open(c.Request.Context(), category, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// TranslatePair 根据中文行生成英文行，不写库。
func (h *EditorHandler) TranslatePair(c *gin.Context) {
	category, ok := entryCategory(c)
	if !ok {
		return
	}
	pair, ok := bindPair(c, category)
	if !ok {
		return
	}
	translated, report := h.session.Translate(c.Request.Context(), pair)
	if !report.Success {
		middleware.LoggerFromContext(c).Warn("pair translation incomplete",
			slog.String("category", category.String()),
			slog.Int("failed", report.Failed),
		)
	}
	c.JSON(http.StatusOK, translateResponse{Pair: translated, Report: report})
}

// CreatePair 新建一组中英行。
func (h *EditorHandler) CreatePair(c *gin.Context) {
	category, ok := entryCategory(c)
	if !ok {
		return
	}
	pair, ok := bindPair(c, category)
	if !ok {
		return
	}
	pair.Chinese.Base().ID = ""
	pair.English.Base().ID = ""
	h.save(c, pair, http.StatusCreated)
}

// UpdatePair 按中文行 id 更新一组中英行。
func (h *EditorHandler) UpdatePair(c *gin.Context) {
	category, ok := entryCategory(c)
	if !ok {
		return
	}
	pair, ok := bindPair(c, category)
	if !ok {
		return
	}
	pair.Chinese.Base().ID = c.Param("id")
	h.save(c, pair, http.StatusOK)
}

func (h *EditorHandler) save(c *gin.Context, pair editor.Pair, status int) {
	result, err := h.session.Save(c.Request.Context(), pair)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, result)
}

// DeletePair 删除中文行及其英文对应行，需要 confirm=true。
func (h *EditorHandler) DeletePair(c *gin.Context) {
	category, ok := entryCategory(c)
	if !ok {
		return
	}
	confirmed, _ := strconv.ParseBool(c.Query("confirm"))
	listing, err := h.session.Delete(c.Request.Context(), category, c.Param("id"), confirmed)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listing": listing})
}

// GetSingletons 返回单行分类的中英两份值。
func (h *EditorHandler) GetSingletons(c *gin.Context) {
	category, ok := singletonCategory(c)
	if !ok {
		return
	}
	pair, err := h.session.LoadSingletons(c.Request.Context(), category)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// PutSingletons 同时保存单行分类的中英两份值。
func (h *EditorHandler) PutSingletons(c *gin.Context) {
	category, ok := singletonCategory(c)
	if !ok {
		return
	}
	var req pairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if len(req.Chinese) == 0 || len(req.English) == 0 {
		BadRequest(c, "both zh and en values are required")
		return
	}
	zh, err := content.DecodeSingleton(category, req.Chinese)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	en, err := content.DecodeSingleton(category, req.English)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	pair := editor.SingletonPair{Category: category, Chinese: zh, English: en}
	if err := h.session.SaveSingletons(c.Request.Context(), pair); err != nil {
		middleware.LoggerFromContext(c).Warn("save singletons failed",
			slog.String("category", category.String()),
			slog.Any("error", err),
		)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}
