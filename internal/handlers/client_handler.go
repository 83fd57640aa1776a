package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/opsdesk/internal/httperr"
	"github.com/BruksfildServices01/opsdesk/internal/httpresp"
	"github.com/BruksfildServices01/opsdesk/internal/models"
	"github.com/BruksfildServices01/opsdesk/internal/store"
	ucRecord "github.com/BruksfildServices01/opsdesk/internal/usecase/record"
)

type ClientHandler struct {
	clients *ucRecord.Service[models.Client]
}

func NewClientHandler(clients *ucRecord.Service[models.Client]) *ClientHandler {
	return &ClientHandler{clients: clients}
}

// --------- Requests ---------

type ClientRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Notes string `json:"notes"`
}

type UpdateClientRequest struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

type BulkCreateClientsRequest struct {
	Clients []ClientRequest `json:"clients" binding:"required,min=1,dive"`
}

type BulkDeleteRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

func (r ClientRequest) model() models.Client {
	return models.Client{
		Name:  r.Name,
		Phone: strings.TrimSpace(r.Phone),
		Email: r.Email,
		Notes: r.Notes,
	}
}

// ======================================================
// LIST
// ======================================================

func (h *ClientHandler) List(c *gin.Context) {
	var filters []store.Filter
	if email := strings.ToLower(strings.TrimSpace(c.Query("email"))); email != "" {
		filters = append(filters, store.Eq("email", email))
	}
	if phone := strings.TrimSpace(c.Query("phone")); phone != "" {
		filters = append(filters, store.Eq("phone", phone))
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	clients, err := h.clients.List(c.Request.Context(), filters, limit)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, clients)
}

// ======================================================
// CREATE / UPDATE / DELETE
// ======================================================

func (h *ClientHandler) Create(c *gin.Context) {
	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	row := req.model()
	client, err := h.clients.Create(c.Request.Context(), actorFrom(c), &row)
	if !httperr.WarnPartial(c, err) {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func (h *ClientHandler) Update(c *gin.Context) {
	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	patch := map[string]any{}
	if req.Name != nil {
		patch["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		patch["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		patch["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Notes != nil {
		patch["notes"] = *req.Notes
	}

	client, err := h.clients.Update(c.Request.Context(), actorFrom(c), c.Param("id"), patch)
	if !httperr.WarnPartial(c, err) {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *ClientHandler) Delete(c *gin.Context) {
	err := h.clients.Delete(c.Request.Context(), actorFrom(c), c.Param("id"))
	if !httperr.WarnPartial(c, err) {
		httperr.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ======================================================
// BULK
// ======================================================

func (h *ClientHandler) BulkCreate(c *gin.Context) {
	var req BulkCreateClientsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	rows := make([]models.Client, 0, len(req.Clients))
	for _, r := range req.Clients {
		rows = append(rows, r.model())
	}

	created, err := h.clients.BulkCreate(c.Request.Context(), actorFrom(c), rows)
	if !httperr.WarnPartial(c, err) {
		if len(created) > 0 {
			c.Header(httperr.HeaderCommittedCount, strconv.Itoa(len(created)))
		}
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpresp.ListResponse[models.Client]{
		Data:  created,
		Total: len(created),
	})
}

func (h *ClientHandler) BulkDelete(c *gin.Context) {
	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	deleted, err := h.clients.BulkDelete(c.Request.Context(), actorFrom(c), req.IDs)
	if !httperr.WarnPartial(c, err) {
		if len(deleted) > 0 {
			c.Header(httperr.HeaderCommittedCount, strconv.Itoa(len(deleted)))
		}
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": len(deleted)})
}
