package account

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/greencampus/facility-reports/database/models"
	"github.com/greencampus/facility-reports/internal/auth"
)

// avatarPrefix storage prefix for profile pictures
const avatarPrefix = "avatars"

// AvatarStore stores an uploaded profile picture
type AvatarStore interface {
	StoreUpload(ctx context.Context, r io.Reader, originalName, prefix string) (models.Photo, error)
}

// Handler 账户处理器：注册、登录与个人资料
type Handler struct {
	svc     *auth.Service
	avatars AvatarStore
}

// NewHandler 创建新的账户处理器
func NewHandler(svc *auth.Service, avatars AvatarStore) *Handler {
	return &Handler{
		svc:     svc,
		avatars: avatars,
	}
}

// userView public user fields returned at login
func userView(user *models.User) gin.H {
	return gin.H{
		"id":             user.ID,
		"username":       user.Username,
		"email":          user.Email,
		"fullName":       user.FullName,
		"role":           user.Role,
		"section":        user.Section,
		"grade":          user.Grade,
		"profilePicture": user.ProfilePicture,
	}
}

// SetupPublicRoutes 注册无需认证的路由
func (h *Handler) SetupPublicRoutes(router *gin.RouterGroup, limiter gin.HandlerFunc) {
	authGroup := router.Group("/auth")
	authGroup.Use(limiter)
	{
		authGroup.POST("/signup", h.Signup)
		authGroup.POST("/login", h.Login)
	}
}

// SetupRoutes 注册用户资料路由
func (h *Handler) SetupRoutes(router *gin.RouterGroup) {
	user := router.Group("/user")
	{
		user.GET("/profile", h.GetProfile)
		user.PUT("/profile", h.UpdateProfile)
		user.POST("/profile-picture", h.UploadProfilePicture)
		user.POST("/change-password", h.ChangePassword)
	}
}
