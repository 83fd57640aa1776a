package notification

import (
	"context"
	"errors"
	"time"

	"github.com/BruksfildServices01/opsdesk/internal/httperr"
	"github.com/BruksfildServices01/opsdesk/internal/models"
	"github.com/BruksfildServices01/opsdesk/internal/store"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Inbox reads and acknowledges a user's own notifications. It never
// touches audit entries.
type Inbox struct {
	rows store.Collection[models.Notification]
}

func NewInbox(rows store.Collection[models.Notification]) *Inbox {
	return &Inbox{rows: rows}
}

func (uc *Inbox) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	filters := []store.Filter{store.Eq("recipient_user_id", userID)}
	if unreadOnly {
		filters = append(filters, store.Eq("is_read", false))
	}

	rows, err := uc.rows.Query(ctx, store.Query{
		Filters: filters,
		Order:   []store.Order{{Field: "created_at", Desc: true}},
		Limit:   limit,
	})
	if err != nil {
		return nil, httperr.FromStore(err, "notification_list_failed")
	}
	return rows, nil
}

func (uc *Inbox) UnreadCount(ctx context.Context, userID string) (int64, error) {
	n, err := uc.rows.Count(ctx,
		store.Eq("recipient_user_id", userID),
		store.Eq("is_read", false),
	)
	if err != nil {
		return 0, httperr.FromStore(err, "notification_count_failed")
	}
	return n, nil
}

// MarkRead reports NotFound for notifications addressed to someone else.
func (uc *Inbox) MarkRead(ctx context.Context, userID, id string) (*models.Notification, error) {
	n, err := uc.rows.Get(ctx, id)
	if err != nil {
		return nil, httperr.FromStore(err, "notification_not_found")
	}
	if n.RecipientUserID != userID {
		return nil, httperr.NotFound("notification_not_found")
	}
	if n.IsRead {
		return n, nil
	}

	now := time.Now().UTC()
	if err := uc.rows.Update(ctx, id, map[string]any{"is_read": true, "read_at": now}); err != nil {
		return nil, httperr.FromStore(err, "notification_not_found")
	}
	n.IsRead = true
	n.ReadAt = &now
	return n, nil
}

// MarkAllRead returns how many notifications changed. Rows removed
// concurrently are skipped.
func (uc *Inbox) MarkAllRead(ctx context.Context, userID string) (int, error) {
	unread, err := uc.rows.Query(ctx, store.Query{
		Filters: []store.Filter{
			store.Eq("recipient_user_id", userID),
			store.Eq("is_read", false),
		},
	})
	if err != nil {
		return 0, httperr.FromStore(err, "notification_list_failed")
	}

	now := time.Now().UTC()
	marked := 0
	for _, n := range unread {
		err := uc.rows.Update(ctx, n.ID, map[string]any{"is_read": true, "read_at": now})
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return marked, httperr.FromStore(err, "notification_update_failed")
		}
		marked++
	}
	return marked, nil
}
