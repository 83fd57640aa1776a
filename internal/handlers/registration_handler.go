package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/opsdesk/internal/httperr"
	"github.com/BruksfildServices01/opsdesk/internal/httpresp"
	ucRegistration "github.com/BruksfildServices01/opsdesk/internal/usecase/registration"
)

// ======================================================
// HANDLER
// ======================================================

type RegistrationHandler struct {
	submit  *ucRegistration.SubmitRegistration
	approve *ucRegistration.ApproveRegistration
	reject  *ucRegistration.RejectRegistration
	list    *ucRegistration.ListPending
}

func NewRegistrationHandler(
	submit *ucRegistration.SubmitRegistration,
	approve *ucRegistration.ApproveRegistration,
	reject *ucRegistration.RejectRegistration,
	list *ucRegistration.ListPending,
) *RegistrationHandler {
	return &RegistrationHandler{
		submit:  submit,
		approve: approve,
		reject:  reject,
		list:    list,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type SubmitRegistrationRequest struct {
	Username      string `json:"username" binding:"required"`
	FullName      string `json:"full_name" binding:"required"`
	Password      string `json:"password" binding:"required"`
	RequestedRole string `json:"requested_role"`
}

type RejectRegistrationRequest struct {
	Reason string `json:"reason"`
}

// ======================================================
// SUBMIT (PUBLIC)
// ======================================================

func (h *RegistrationHandler) Submit(c *gin.Context) {
	var req SubmitRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	p, err := h.submit.Execute(c.Request.Context(), ucRegistration.SubmitInput{
		Username:      req.Username,
		FullName:      req.FullName,
		Password:      req.Password,
		RequestedRole: req.RequestedRole,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

// ======================================================
// ADMIN QUEUE
// ======================================================

func (h *RegistrationHandler) ListPending(c *gin.Context) {
	rows, err := h.list.Execute(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, rows)
}

func (h *RegistrationHandler) Approve(c *gin.Context) {
	user, err := h.approve.Execute(c.Request.Context(), c.Param("id"), actorFrom(c))
	if !httperr.WarnPartial(c, err) {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userView(user)})
}

func (h *RegistrationHandler) Reject(c *gin.Context) {
	var req RejectRegistrationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}

	err := h.reject.Execute(c.Request.Context(), c.Param("id"), actorFrom(c), req.Reason)
	if !httperr.WarnPartial(c, err) {
		httperr.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
