package common

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/greencampus/facility-reports/internal/apperr"
)

// RequestIDKey context key holding the request id
const RequestIDKey = "request_id"

// Response error envelope
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Respond writes {success, message} merged with fields
func Respond(c *gin.Context, httpStatus int, success bool, message string, fields gin.H) {
	body := gin.H{"success": success}
	if message != "" {
		body["message"] = message
	}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(httpStatus, body)
}

// RespondSuccess sends a 200 success response with fields.
func RespondSuccess(c *gin.Context, fields gin.H) {
	Respond(c, http.StatusOK, true, "", fields)
}

// RespondSuccessMessage sends a success response with message and fields.
func RespondSuccessMessage(c *gin.Context, httpStatus int, message string, fields gin.H) {
	Respond(c, httpStatus, true, message, fields)
}

// RespondError sends an error response with message.
func RespondError(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, Response{Success: false, Message: message})
}

// RespondErrorAbort sends an error response and stops the handler chain.
func RespondErrorAbort(c *gin.Context, httpStatus int, message string) {
	c.AbortWithStatusJSON(httpStatus, Response{Success: false, Message: message})
}

// RespondAppError maps err onto its status and public message. Server-side
// failures are logged with the request id; clients only see a generic text.
func RespondAppError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[API] %s %s failed (request %s): %v", c.Request.Method, c.FullPath(), c.GetString(RequestIDKey), err)
	}
	RespondError(c, status, apperr.PublicMessage(err))
}
