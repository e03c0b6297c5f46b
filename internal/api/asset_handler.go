package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"phPortfolio/internal/api/middleware"
	"phPortfolio/internal/content"
	"phPortfolio/internal/errcode"
	"phPortfolio/internal/storage"
)

const (
	assetPrefix     = "portfolio-assets/"
	maxAssetBytes   = 5 * 1024 * 1024
	assetURLTTL     = 15 * time.Minute
	maxAssetKeySize = 200
)

var assetExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// AssetStorage 是图片存储接口，*storage.Client 满足该接口。
type AssetStorage interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	GeneratePresignedURL(ctx context.Context, objectKey string, duration time.Duration) (string, error)
	ListObjects(ctx context.Context, prefix string, limit int) ([]storage.ObjectMeta, error)
	DeleteObject(ctx context.Context, objectKey string) error
}

// AssetHandler 负责后台图片上传（头像、项目与活动配图）。
type AssetHandler struct {
	storage   AssetStorage
	clamdAddr string
}

// NewAssetHandler 返回 AssetHandler 实例；storage 为 nil 时上传接口返回 503。
func NewAssetHandler(storageClient AssetStorage, clamdAddr string) *AssetHandler {
	return &AssetHandler{storage: storageClient, clamdAddr: strings.TrimSpace(clamdAddr)}
}

func (h *AssetHandler) available(c *gin.Context) bool {
	if h.storage == nil {
		Error(c, http.StatusServiceUnavailable, errcode.StorageNotConfigured, "object storage not configured")
		return false
	}
	return true
}

// UploadAsset 上传一张图片，配置了 clamd 时先做病毒扫描。
func (h *AssetHandler) UploadAsset(c *gin.Context) {
	if !h.available(c) {
		return
	}
	logger := middleware.LoggerFromContext(c)

	category, err := content.ParseCategory(c.PostForm("category"))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file")
		return
	}
	if file.Size <= 0 || file.Size > maxAssetBytes {
		Error(c, http.StatusRequestEntityTooLarge, errcode.InvalidRequest, "file must be between 1 byte and 5 MiB")
		return
	}
	ext := strings.ToLower(path.Ext(file.Filename))
	contentType, ok := assetExtensions[ext]
	if !ok {
		BadRequest(c, "unsupported image type")
		return
	}

	if h.clamdAddr != "" {
		clean, err := h.scan(file.Open)
		if err != nil {
			logger.Error("scan file", slog.Any("error", err))
			Internal(c, "failed to scan file")
			return
		}
		if !clean {
			logger.Warn("malicious upload rejected", slog.String("filename", file.Filename))
			BadRequest(c, "malicious file detected")
			return
		}
	}

	reader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return
	}
	defer reader.Close()

	objectKey := fmt.Sprintf("%s%s/%s%s", assetPrefix, category, uuid.NewString(), ext)
	if err := h.storage.UploadFile(c.Request.Context(), objectKey, reader, file.Size, contentType); err != nil {
		logger.Error("upload file", slog.Any("error", err))
		Internal(c, "failed to upload file")
		return
	}

	url, err := h.storage.GeneratePresignedURL(c.Request.Context(), objectKey, assetURLTTL)
	if err != nil {
		logger.Warn("generate asset url", slog.String("objectKey", objectKey), slog.Any("error", err))
	}
	logger.Info("asset uploaded", slog.String("objectKey", objectKey))
	c.JSON(http.StatusCreated, gin.H{"objectKey": objectKey, "url": url})
}

func (h *AssetHandler) scan(open func() (multipart.File, error)) (bool, error) {
	reader, err := open()
	if err != nil {
		return false, fmt.Errorf("open file: %w", err)
	}
	defer reader.Close()

	abort := make(chan bool)
	defer close(abort)
	results, err := clamd.NewClamd(h.clamdAddr).ScanStream(reader, abort)
	if err != nil {
		return false, err
	}
	clean := true
	for result := range results {
		if result.Status != clamd.RES_OK {
			clean = false
		}
	}
	return clean, nil
}

// ListAssets 列出某分类下已上传的图片。
func (h *AssetHandler) ListAssets(c *gin.Context) {
	if !h.available(c) {
		return
	}
	category, err := content.ParseCategory(c.Query("category"))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "60"))
	if err != nil || limit <= 0 {
		limit = 60
	}
	limit = min(limit, 200)

	objects, err := h.storage.ListObjects(c.Request.Context(), assetPrefix+category.String()+"/", limit)
	if err != nil {
		middleware.LoggerFromContext(c).Error("list assets", slog.Any("error", err))
		Internal(c, "failed to list assets")
		return
	}
	sort.Slice(objects, func(i, j int) bool {
		return objects[i].LastModified.After(objects[j].LastModified)
	})
	c.JSON(http.StatusOK, gin.H{"items": objects})
}

// DeleteAsset 删除一张图片。
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	if !h.available(c) {
		return
	}
	key := c.Query("key")
	if !isValidAssetKey(key) {
		BadRequest(c, "invalid key")
		return
	}
	if err := h.storage.DeleteObject(c.Request.Context(), key); err != nil {
		middleware.LoggerFromContext(c).Error("delete asset", slog.Any("error", err))
		Internal(c, "failed to delete asset")
		return
	}
	c.Status(http.StatusNoContent)
}

func isValidAssetKey(key string) bool {
	if key == "" || len(key) > maxAssetKeySize || !utf8.ValidString(key) {
		return false
	}
	if !strings.HasPrefix(key, assetPrefix) {
		return false
	}
	if strings.Contains(key, "..") || strings.Contains(key, "\\") || strings.Contains(key, "//") {
		return false
	}
	_, ok := assetExtensions[strings.ToLower(path.Ext(key))]
	return ok
}
