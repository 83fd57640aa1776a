package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/opsdesk/internal/httperr"
	"github.com/BruksfildServices01/opsdesk/internal/httpresp"
	"github.com/BruksfildServices01/opsdesk/internal/middleware"
	"github.com/BruksfildServices01/opsdesk/internal/models"
	"github.com/BruksfildServices01/opsdesk/internal/store"
	ucRecord "github.com/BruksfildServices01/opsdesk/internal/usecase/record"
)

type UserHandler struct {
	users *ucRecord.Service[models.User]
}

func NewUserHandler(users *ucRecord.Service[models.User]) *UserHandler {
	return &UserHandler{users: users}
}

type UpdateUserRequest struct {
	FullName *string `json:"full_name,omitempty"`
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

func (h *UserHandler) List(c *gin.Context) {
	var filters []store.Filter
	if role := strings.ToLower(strings.TrimSpace(c.Query("role"))); role != "" {
		filters = append(filters, store.Eq("role", role))
	}
	switch c.Query("active") {
	case "true":
		filters = append(filters, store.Eq("is_active", true))
	case "false":
		filters = append(filters, store.Eq("is_active", false))
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	users, err := h.users.List(c.Request.Context(), filters, limit)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, users)
}

func (h *UserHandler) Update(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	id := c.Param("id")
	self := id == c.GetString(middleware.ContextUserID)

	patch := map[string]any{}
	if req.FullName != nil {
		patch["full_name"] = *req.FullName
	}
	if req.Role != nil {
		if self {
			httperr.Respond(c, httperr.Forbidden("cannot_change_own_role"))
			return
		}
		patch["role"] = *req.Role
	}
	if req.IsActive != nil {
		if self && !*req.IsActive {
			httperr.Respond(c, httperr.Forbidden("cannot_deactivate_self"))
			return
		}
		patch["is_active"] = *req.IsActive
	}

	user, err := h.users.Update(c.Request.Context(), actorFrom(c), id, patch)
	if !httperr.WarnPartial(c, err) {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == c.GetString(middleware.ContextUserID) {
		httperr.Respond(c, httperr.Forbidden("cannot_delete_self"))
		return
	}

	err := h.users.Delete(c.Request.Context(), actorFrom(c), id)
	if !httperr.WarnPartial(c, err) {
		httperr.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
