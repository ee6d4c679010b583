package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/greencampus/facility-reports/api/common"
	"github.com/greencampus/facility-reports/internal/auth"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
	ContextRoleKey     = "role"
)

// TokenVerifier resolves a bearer token to its claims
type TokenVerifier interface {
	ExtractClaims(token string) (*auth.TokenClaims, error)
}

// RequireAuth admits requests carrying a valid "Bearer <token>" header.
// A missing token is 401; a bad or expired one is 403. Roles are not
// checked here: services re-read the stored user record.
func RequireAuth(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || scheme != "Bearer" || strings.TrimSpace(token) == "" {
			common.RespondErrorAbort(c, http.StatusUnauthorized, "Access token required")
			return
		}

		claims, err := tokens.ExtractClaims(strings.TrimSpace(token))
		if err != nil {
			common.RespondErrorAbort(c, http.StatusForbidden, "Invalid or expired token")
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Set(ContextRoleKey, string(claims.Role))
		c.Next()
	}
}

// GetUserID 获取当前用户 ID
func GetUserID(c *gin.Context) string {
	return c.GetString(ContextUserIDKey)
}

// GetUsername 获取当前用户名
func GetUsername(c *gin.Context) string {
	return c.GetString(ContextUsernameKey)
}
