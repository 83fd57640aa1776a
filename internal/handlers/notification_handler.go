package handlers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/opsdesk/internal/httperr"
	"github.com/BruksfildServices01/opsdesk/internal/httpresp"
	"github.com/BruksfildServices01/opsdesk/internal/middleware"
	"github.com/BruksfildServices01/opsdesk/internal/notify"
	ucNotification "github.com/BruksfildServices01/opsdesk/internal/usecase/notification"
)

const streamKeepAlive = 25 * time.Second

type NotificationHandler struct {
	inbox   *ucNotification.Inbox
	bus     notify.Subscriber
	closing <-chan struct{}
	log     *zap.Logger
}

// NewNotificationHandler ends every open stream once closing is closed. A nil
// channel keeps streams open until the client leaves.
func NewNotificationHandler(
	inbox *ucNotification.Inbox,
	bus notify.Subscriber,
	closing <-chan struct{},
	log *zap.Logger,
) *NotificationHandler {
	return &NotificationHandler{inbox: inbox, bus: bus, closing: closing, log: log}
}

// ======================================================
// INBOX
// ======================================================

func (h *NotificationHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	unread := c.Query("unread") == "true"

	rows, err := h.inbox.List(c.Request.Context(), c.GetString(middleware.ContextUserID), unread, limit)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, rows)
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	n, err := h.inbox.UnreadCount(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": n})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	n, err := h.inbox.MarkRead(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("id"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, n)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.inbox.MarkAllRead(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": n})
}

// ======================================================
// STREAM (SSE)
// ======================================================

func (h *NotificationHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString(middleware.ContextUserID)

	events, cancel, err := h.bus.Subscribe(ctx, userID)
	if err != nil {
		h.log.Warn("notification stream unavailable", zap.String("user_id", userID), zap.Error(err))
		httperr.Write(c, http.StatusServiceUnavailable, "stream_unavailable", "stream unavailable")
		return
	}
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()

	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-h.closing:
			return false
		case n, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("notification", n)
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		}
	})
}
