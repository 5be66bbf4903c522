package utils

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APIResponse is the envelope every JSON endpoint returns.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// RespondSuccess sends a standard success response.
func RespondSuccess(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondError sends a standard error response. The underlying error is
// logged but never exposed raw; the message must be safe for the caller.
func RespondError(c *gin.Context, code int, message string, err error) {
	if err != nil {
		Logger.Error(message, zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(code, APIResponse{
		Success: false,
		Message: message,
	})
}
