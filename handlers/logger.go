package handlers

import (
	"concierge/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger prefers a request-scoped logger planted on the context and
// falls back to the shared one.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return utils.GetLogger()
}
