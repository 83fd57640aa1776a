package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/opsdesk/internal/audit"
	"github.com/BruksfildServices01/opsdesk/internal/middleware"
)

// actorFrom reads the signed-in user placed in the context by AuthMiddleware.
func actorFrom(c *gin.Context) audit.Actor {
	return audit.Actor{
		ID:          c.GetString(middleware.ContextUserID),
		Email:       c.GetString(middleware.ContextUserEmail),
		DisplayName: c.GetString(middleware.ContextUserName),
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(400, gin.H{
		"error_code": "invalid_request",
		"message":    err.Error(),
	})
}
