package api

import (
	"github.com/gin-gonic/gin"

	"phPortfolio/internal/api/middleware"
)

// Handlers 汇总全部路由处理器；Auth 为 nil 时不注册后台接口。
type Handlers struct {
	Content *ContentHandler
	Ws      *WsHandler
	Auth    *AuthHandler
	Editor  *EditorHandler
	Admin   *AdminHandler
	Asset   *AssetHandler
}

// RegisterRoutes 注册 API 路由，不包含 /api 前缀。
func RegisterRoutes(router *gin.Engine, h Handlers, validator middleware.TokenValidator) {
	v1 := router.Group("/v1")

	v1.GET("/content", h.Content.GetContent)
	v1.GET("/state", h.Content.GetState)
	v1.PUT("/state", h.Content.PutState)

	draftGroup := v1.Group("/drafts")
	{
		draftGroup.GET("/:category", h.Content.GetDraft)
		draftGroup.PUT("/:category", h.Content.PutDraft)
		draftGroup.DELETE("/:category", h.Content.DeleteDraft)
	}

	if h.Ws != nil {
		v1.GET("/ws", h.Ws.HandleConnection)
	}

	if h.Auth == nil || validator == nil {
		return
	}
	v1.POST("/auth/login", h.Auth.Login)

	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(validator))
	{
		admin.GET("/entries/:category", h.Editor.ListEntries)
		admin.GET("/entries/:category/new", h.Editor.NewPair)
		admin.GET("/entries/:category/:id", h.Editor.OpenPair)
		admin.POST("/entries/:category/translate", h.Editor.TranslatePair)
		admin.POST("/entries/:category", h.Editor.CreatePair)
		admin.PUT("/entries/:category/:id", h.Editor.UpdatePair)
		admin.DELETE("/entries/:category/:id", h.Editor.DeletePair)

		admin.GET("/singletons/:category", h.Editor.GetSingletons)
		admin.PUT("/singletons/:category", h.Editor.PutSingletons)

		admin.POST("/translate", h.Admin.TranslateText)
		admin.POST("/seed", h.Admin.EnqueueSeed)

		admin.POST("/assets", h.Asset.UploadAsset)
		admin.GET("/assets", h.Asset.ListAssets)
		admin.DELETE("/assets", h.Asset.DeleteAsset)
	}
}
