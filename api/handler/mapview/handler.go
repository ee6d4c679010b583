package mapview

import (
	"github.com/gin-gonic/gin"
	"github.com/greencampus/facility-reports/api/common"
	"github.com/greencampus/facility-reports/api/middleware"
	svcMap "github.com/greencampus/facility-reports/internal/mapview"
)

// Handler 地图标记处理器
type Handler struct {
	svc *svcMap.Service
}

// NewHandler 创建新的地图处理器
func NewHandler(svc *svcMap.Service) *Handler {
	return &Handler{svc: svc}
}

// GetMarkers 获取地图标记
// @Summary      Campus map markers
// @Description  Repair, replace and unused-space markers built from the reports the caller may read
// @Tags         map
// @Produce      json
// @Success      200  {object}  common.Response
// @Failure      403  {object}  common.Response
// @Security     BearerAuth
// @Router       /map/markers [get]
func (h *Handler) GetMarkers(c *gin.Context) {
	feed, err := h.svc.Markers(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, gin.H{
		"center":  feed.Center,
		"markers": feed.Markers,
		"counts":  feed.Counts,
	})
}

// SetupRoutes 设置地图路由
func (h *Handler) SetupRoutes(router *gin.RouterGroup) {
	router.GET("/map/markers", h.GetMarkers)
}
