package account

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/greencampus/facility-reports/api/common"
	"github.com/greencampus/facility-reports/api/middleware"
	"github.com/greencampus/facility-reports/internal/auth"
)

type pictureRequest struct {
	ImageURL string `json:"imageUrl"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// GetProfile 获取当前用户资料
// @Summary      Current profile
// @Tags         user
// @Produce      json
// @Success      200  {object}  common.Response
// @Failure      404  {object}  common.Response  "User not found"
// @Security     BearerAuth
// @Router       /user/profile [get]
func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.svc.Profile(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, gin.H{"user": user})
}

// UpdateProfile 更新当前用户资料
// @Summary      Update profile
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request  body      auth.ProfileInput  true  "Fields to change"
// @Success      200      {object}  common.Response
// @Failure      400      {object}  common.Response
// @Security     BearerAuth
// @Router       /user/profile [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req auth.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.svc.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccessMessage(c, http.StatusOK, "Profile updated successfully", gin.H{"user": user})
}

// UploadProfilePicture 上传头像
// Accepts a multipart "profilePicture" file or a JSON {imageUrl} reference.
// @Summary      Set profile picture
// @Tags         user
// @Accept       multipart/form-data
// @Produce      json
// @Param        profilePicture  formData  file  false  "Image file"
// @Success      200  {object}  common.Response  "Profile picture updated successfully"
// @Failure      400  {object}  common.Response  "No file uploaded"
// @Security     BearerAuth
// @Router       /user/profile-picture [post]
func (h *Handler) UploadProfilePicture(c *gin.Context) {
	ctx := c.Request.Context()
	var pictureURL string

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fileHeader, err := c.FormFile("profilePicture")
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				common.RespondError(c, http.StatusBadRequest, "No file uploaded")
				return
			}
			common.RespondError(c, http.StatusBadRequest, "Invalid upload")
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			common.RespondError(c, http.StatusBadRequest, "Invalid upload")
			return
		}
		defer file.Close()

		photo, err := h.avatars.StoreUpload(ctx, file, fileHeader.Filename, avatarPrefix)
		if err != nil {
			common.RespondAppError(c, err)
			return
		}
		pictureURL = photo.URL
	} else {
		var req pictureRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			common.RespondError(c, http.StatusBadRequest, "No file uploaded")
			return
		}
		if !isWebURL(req.ImageURL) {
			common.RespondError(c, http.StatusBadRequest, "No file uploaded")
			return
		}
		pictureURL = req.ImageURL
	}

	user, err := h.svc.SetProfilePicture(ctx, middleware.GetUserID(c), pictureURL)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccessMessage(c, http.StatusOK, "Profile picture updated successfully", gin.H{
		"imageUrl":       user.ProfilePicture,
		"profilePicture": user.ProfilePicture,
		"user":           userView(user),
	})
}

func isWebURL(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}

// ChangePassword 修改密码
// @Summary      Change password
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request  body      changePasswordRequest  true  "Current and new password"
// @Success      200      {object}  common.Response        "Password changed successfully"
// @Failure      400      {object}  common.Response        "Current password is incorrect"
// @Security     BearerAuth
// @Router       /user/change-password [post]
func (h *Handler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), middleware.GetUserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccessMessage(c, http.StatusOK, "Password changed successfully", nil)
}
