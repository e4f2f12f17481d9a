package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the JSON envelope for transport-level errors.
// Turn-level failures travel inside TurnResponse instead.
type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler recovers panics raised below a handler and converts
// them into a 500 envelope so a broken turn never drops the connection.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				GetLogger().Error("panic recovered in handler",
					zap.Any("panic", r),
					zap.String("path", c.FullPath()))
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Message: "internal server error",
				})
			}
		}()
		c.Next()
	}
}

// JSONError writes an ErrorResponse and logs it at warn. Details are
// caller-facing; keep internals out of them.
func JSONError(c *gin.Context, status int, message string, details string) {
	GetLogger().Warn(message,
		zap.Int("status", status),
		zap.String("details", details))
	c.JSON(status, ErrorResponse{Message: message, Details: details})
}
