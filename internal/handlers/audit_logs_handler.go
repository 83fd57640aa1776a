package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/opsdesk/internal/httperr"
	"github.com/BruksfildServices01/opsdesk/internal/httpresp"
	"github.com/BruksfildServices01/opsdesk/internal/timezone"
	ucAuditLog "github.com/BruksfildServices01/opsdesk/internal/usecase/auditlog"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	list  *ucAuditLog.ListAuditLogs
	stats *ucAuditLog.AuditStats
	tz    string
}

func NewAuditLogsHandler(
	list *ucAuditLog.ListAuditLogs,
	stats *ucAuditLog.AuditStats,
	tz string,
) *AuditLogsHandler {
	return &AuditLogsHandler{list: list, stats: stats, tz: tz}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	f := ucAuditLog.Filter{
		ActorEmail: c.Query("actor_email"),
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			httperr.BadRequest(c, "invalid_limit", "limit must be a number")
			return
		}
		f.Limit = limit
	}

	// --------------------------------------------------
	// Date range (YYYY-MM-DD, inclusive, app timezone)
	// --------------------------------------------------

	if raw := c.Query("from"); raw != "" {
		start, _, err := timezone.ParseDay(raw, h.tz)
		if err != nil {
			httperr.BadRequest(c, "invalid_from", "from must be YYYY-MM-DD")
			return
		}
		f.From = &start
	}
	if raw := c.Query("to"); raw != "" {
		_, end, err := timezone.ParseDay(raw, h.tz)
		if err != nil {
			httperr.BadRequest(c, "invalid_to", "to must be YYYY-MM-DD")
			return
		}
		f.To = &end
	}

	logs, err := h.list.Execute(c.Request.Context(), f)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(200, gin.H{
		"limit": effectiveLimit(f.Limit),
		"total": len(logs),
		"logs":  logs,
	})
}

func (h *AuditLogsHandler) Stats(c *gin.Context) {
	stats, err := h.stats.Execute(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, stats)
}

func effectiveLimit(n int) int {
	switch {
	case n <= 0:
		return ucAuditLog.DefaultLimit
	case n > ucAuditLog.MaxLimit:
		return ucAuditLog.MaxLimit
	}
	return n
}

