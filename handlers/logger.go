package handlers

import (
	"hobbyist/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger returns the request's logger, falling back to the process logger.
func getLogger(c *gin.Context) *zap.Logger {
	return utils.ContextLogger(c, nil)
}
