package dashboard

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/greencampus/facility-reports/api/common"
	"github.com/greencampus/facility-reports/api/middleware"
	"github.com/greencampus/facility-reports/database/models"
	"github.com/greencampus/facility-reports/internal/dashboard"
)

// ProfileReader loads the caller's stored record; the role in the token is not trusted
type ProfileReader interface {
	Profile(ctx context.Context, userID string) (*models.User, error)
}

// Handler Dashboard 处理器
type Handler struct {
	svc   *dashboard.Service
	users ProfileReader
}

// NewHandler 创建新的 Dashboard 处理器
func NewHandler(svc *dashboard.Service, users ProfileReader) *Handler {
	return &Handler{
		svc:   svc,
		users: users,
	}
}

// GetStats 获取 Dashboard 统计数据
// @Summary      Dashboard statistics
// @Description  Global counts, the five newest entries of each type and a 14 day trend. Management roles only.
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  common.Response
// @Failure      403  {object}  common.Response  "Access denied"
// @Security     BearerAuth
// @Router       /dashboard/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := h.users.Profile(ctx, middleware.GetUserID(c))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	stats, err := h.svc.GetStats(ctx, user.Role)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccess(c, gin.H{
		"stats":         stats.Stats,
		"recentEntries": stats.RecentEntries,
		"trend":         stats.Trend,
	})
}

// SetupRoutes 设置 Dashboard 路由
func (h *Handler) SetupRoutes(router *gin.RouterGroup) {
	router.GET("/dashboard/stats", h.GetStats)
}
