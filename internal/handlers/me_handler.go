package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/opsdesk/internal/httperr"
	"github.com/BruksfildServices01/opsdesk/internal/middleware"
	"github.com/BruksfildServices01/opsdesk/internal/models"
	ucRecord "github.com/BruksfildServices01/opsdesk/internal/usecase/record"
)

type MeHandler struct {
	users *ucRecord.Service[models.User]
}

func NewMeHandler(users *ucRecord.Service[models.User]) *MeHandler {
	return &MeHandler{users: users}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": userView(user),
	})
}
