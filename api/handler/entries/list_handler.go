package entries

import (
	"github.com/gin-gonic/gin"
	"github.com/greencampus/facility-reports/api/common"
	"github.com/greencampus/facility-reports/api/middleware"
)

// ListWaste 列出废弃物记录
// @Summary      List daily waste entries
// @Description  Management roles see every entry, other roles their own
// @Tags         waste
// @Produce      json
// @Param        limit  query     int  false  "Maximum entries (default and cap 100)"
// @Success      200    {object}  common.Response
// @Failure      403    {object}  common.Response
// @Security     BearerAuth
// @Router       /waste/daily [get]
func (h *Handler) ListWaste(c *gin.Context) {
	entries, err := h.svc.ListWaste(c.Request.Context(), middleware.GetUserID(c), limitParam(c))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, gin.H{"entries": entries, "count": len(entries)})
}

// ListResources 列出资源报告
// @Summary      List weekly resources reports
// @Tags         resources
// @Produce      json
// @Param        limit  query     int  false  "Maximum entries"
// @Success      200    {object}  common.Response
// @Security     BearerAuth
// @Router       /resources/weekly [get]
func (h *Handler) ListResources(c *gin.Context) {
	entries, err := h.svc.ListResources(c.Request.Context(), middleware.GetUserID(c), limitParam(c))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, gin.H{"entries": entries, "count": len(entries)})
}

// ListSpaces 列出闲置空间报告
// @Summary      List unused space reports
// @Tags         spaces
// @Produce      json
// @Param        limit  query     int  false  "Maximum entries"
// @Success      200    {object}  common.Response
// @Security     BearerAuth
// @Router       /spaces/unused [get]
func (h *Handler) ListSpaces(c *gin.Context) {
	entries, err := h.svc.ListSpaces(c.Request.Context(), middleware.GetUserID(c), limitParam(c))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, gin.H{"entries": entries, "count": len(entries)})
}
