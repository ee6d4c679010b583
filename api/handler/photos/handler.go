package photos

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/greencampus/facility-reports/api/common"
	"github.com/greencampus/facility-reports/storage"
	"github.com/greencampus/facility-reports/utils"
)

// PhotoReader opens stored photos by key
type PhotoReader interface {
	Open(ctx context.Context, key string) (io.ReadSeeker, error)
}

// Handler 照片读取处理器
type Handler struct {
	photos PhotoReader
}

// NewHandler 创建新的照片处理器
func NewHandler(photos PhotoReader) *Handler {
	return &Handler{photos: photos}
}

// cleanKey rejects keys that would escape the storage root
func cleanKey(raw string) (string, bool) {
	key := strings.TrimPrefix(raw, "/")
	if key == "" || strings.Contains(key, "\\") {
		return "", false
	}
	cleaned := path.Clean(key)
	if cleaned != key || cleaned == "." || strings.HasPrefix(cleaned, "..") {
		return "", false
	}
	return cleaned, true
}

// GetPhoto 读取存储的照片
// Keys are content addressed, so responses are cacheable forever.
// @Summary      Stored photo
// @Tags         photos
// @Produce      image/jpeg,image/png,image/gif,image/webp
// @Param        key  path  string  true  "Storage key"
// @Success      200
// @Failure      404  {object}  common.Response
// @Router       /photos/{key} [get]
func (h *Handler) GetPhoto(c *gin.Context) {
	key, ok := cleanKey(c.Param("key"))
	if !ok {
		common.RespondError(c, http.StatusNotFound, "Photo not found")
		return
	}

	reader, err := h.photos.Open(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			common.RespondError(c, http.StatusNotFound, "Photo not found")
			return
		}
		if !utils.IsClientDisconnect(err) {
			log.Printf("[Photos] Failed to open %s: %v", key, err)
		}
		common.RespondError(c, http.StatusInternalServerError, "Failed to read photo")
		return
	}
	if closer, ok := reader.(io.Closer); ok {
		defer closer.Close()
	}

	c.Header("Content-Type", utils.ContentTypeFromKey(key))
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Header("X-Content-Type-Options", "nosniff")
	http.ServeContent(c.Writer, c.Request, path.Base(key), time.Time{}, reader)
}

// SetupRoutes 设置照片路由
func (h *Handler) SetupRoutes(router *gin.RouterGroup) {
	router.GET("/*key", h.GetPhoto)
}
