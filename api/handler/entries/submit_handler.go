package entries

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/greencampus/facility-reports/api/common"
	"github.com/greencampus/facility-reports/api/middleware"
	"github.com/greencampus/facility-reports/internal/submission"
)

// SubmitWaste 提交每日废弃物记录
// @Summary      Submit daily waste entry
// @Description  Workers may not submit. Photos are hosted before the entry is stored.
// @Tags         waste
// @Accept       json
// @Produce      json
// @Param        request  body      submission.WasteInput  true  "Daily waste form"
// @Success      201      {object}  common.Response        "Waste entry submitted successfully"
// @Failure      400      {object}  common.Response        "Validation failed"
// @Failure      403      {object}  common.Response        "Role may not submit"
// @Security     BearerAuth
// @Router       /waste/daily [post]
func (h *Handler) SubmitWaste(c *gin.Context) {
	var req submission.WasteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.svc.SubmitWaste(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccessMessage(c, http.StatusCreated, "Waste entry submitted successfully", gin.H{
		"entry": gin.H{
			"_id":         entry.ID,
			"date":        entry.Date,
			"totalWaste":  entry.GeneralWaste,
			"photosCount": len(entry.Photos),
			"cleanliness": entry.ClassroomCleanliness,
		},
	})
}

// SubmitResource 提交每周资源报告
// @Summary      Submit weekly resources report
// @Tags         resources
// @Accept       json
// @Produce      json
// @Param        request  body      submission.ResourceInput  true  "Weekly resources form"
// @Success      201      {object}  common.Response           "Weekly resources report submitted successfully"
// @Failure      400      {object}  common.Response
// @Failure      403      {object}  common.Response
// @Security     BearerAuth
// @Router       /resources/weekly [post]
func (h *Handler) SubmitResource(c *gin.Context) {
	var req submission.ResourceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.svc.SubmitResource(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccessMessage(c, http.StatusCreated, "Weekly resources report submitted successfully", gin.H{
		"entry": gin.H{
			"_id":         entry.ID,
			"weekEnding":  entry.WeekEnding,
			"location":    entry.Location,
			"photosCount": len(entry.Photos),
		},
	})
}

// SubmitSpace 提交闲置空间报告
// @Summary      Submit unused space report
// @Tags         spaces
// @Accept       json
// @Produce      json
// @Param        request  body      submission.SpaceInput  true  "Unused space survey"
// @Success      201      {object}  common.Response        "Unused space report submitted successfully"
// @Failure      400      {object}  common.Response
// @Failure      403      {object}  common.Response
// @Security     BearerAuth
// @Router       /spaces/unused [post]
func (h *Handler) SubmitSpace(c *gin.Context) {
	var req submission.SpaceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.svc.SubmitSpace(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccessMessage(c, http.StatusCreated, "Unused space report submitted successfully", gin.H{
		"entry": gin.H{
			"_id":          entry.ID,
			"buildingName": entry.BuildingName,
			"spaceType":    entry.SpaceType,
			"photosCount":  len(entry.Photos),
		},
	})
}
