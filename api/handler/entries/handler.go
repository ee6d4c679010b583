package entries

import (
	"strconv"

	"github.com/gin-gonic/gin"
	svcEntries "github.com/greencampus/facility-reports/internal/entries"
)

// Handler 报表处理器：废弃物、资源与闲置空间
type Handler struct {
	svc *svcEntries.Service
}

// NewHandler 创建新的报表处理器
func NewHandler(svc *svcEntries.Service) *Handler {
	return &Handler{svc: svc}
}

// SetupRoutes 注册报表路由
func (h *Handler) SetupRoutes(router *gin.RouterGroup) {
	router.POST("/waste/daily", h.SubmitWaste)
	router.GET("/waste/daily", h.ListWaste)

	router.POST("/resources/weekly", h.SubmitResource)
	router.GET("/resources/weekly", h.ListResources)

	router.POST("/spaces/unused", h.SubmitSpace)
	router.GET("/spaces/unused", h.ListSpaces)
}

// limitParam reads ?limit=; zero lets the repository apply its cap
func limitParam(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
