package account

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/greencampus/facility-reports/api/common"
	"github.com/greencampus/facility-reports/database/models"
	"github.com/greencampus/facility-reports/internal/auth"
)

type signupRequest struct {
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	FullName string      `json:"fullName"`
	Role     models.Role `json:"role"`
	Section  string      `json:"section"`
	Grade    string      `json:"grade"`
	Phone    string      `json:"phone"`
}

// loginRequest identifier may be a username or an email; older clients send it as username
type loginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Password   string `json:"password"`
}

// Signup 注册新账户
// @Summary      Create account
// @Description  Register a staff account with one of the fixed roles
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      signupRequest    true  "Account details"
// @Success      201      {object}  common.Response  "Account created successfully!"
// @Failure      400      {object}  common.Response  "Missing fields or username/email taken"
// @Router       /auth/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	_, err := h.svc.Register(c.Request.Context(), auth.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
		Section:  req.Section,
		Grade:    req.Grade,
		Phone:    req.Phone,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccessMessage(c, http.StatusCreated, "Account created successfully!", nil)
}

// Login 登录并签发令牌
// @Summary      Log in
// @Description  Exchange a username or email and password for a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      loginRequest     true  "Credentials"
// @Success      200      {object}  common.Response  "Login successful!"
// @Failure      400      {object}  common.Response  "Invalid credentials"
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	identifier := req.Identifier
	if identifier == "" {
		identifier = req.Username
	}

	result, err := h.svc.Login(c.Request.Context(), identifier, req.Password)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccessMessage(c, http.StatusOK, "Login successful!", gin.H{
		"token":     result.Token,
		"expiresAt": result.ExpiresAt.Unix(),
		"user":      userView(result.User),
	})
}
