// Package notify turns audit entries and approval-queue changes into stored
// notifications. Delivery is asynchronous and best effort: nothing here can
// fail the mutation that triggered it.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/opsdesk/internal/domain/auditlog"
	"github.com/BruksfildServices01/opsdesk/internal/domain/registration"
	"github.com/BruksfildServices01/opsdesk/internal/models"
	"github.com/BruksfildServices01/opsdesk/internal/store"
)

type BroadcastPolicy string

const (
	// PolicyReplace keeps at most one unread approval-queue notification per
	// recipient.
	PolicyReplace BroadcastPolicy = "replace"
	// PolicyAccumulate inserts a fresh notification on every change.
	PolicyAccumulate BroadcastPolicy = "accumulate"
)

func ParseBroadcastPolicy(raw string) (BroadcastPolicy, error) {
	switch p := BroadcastPolicy(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return PolicyReplace, nil
	case PolicyReplace, PolicyAccumulate:
		return p, nil
	}
	return "", fmt.Errorf("unknown broadcast policy %q", raw)
}

type Engine struct {
	gw         *store.Gateway
	dispatcher *Dispatcher
	publisher  Publisher
	policy     BroadcastPolicy
	log        *zap.Logger

	// broadcasts run one at a time so replace never interleaves with itself
	broadcastMu sync.Mutex
}

func NewEngine(
	gw *store.Gateway,
	dispatcher *Dispatcher,
	publisher Publisher,
	policy BroadcastPolicy,
	log *zap.Logger,
) *Engine {
	if policy == "" {
		policy = PolicyReplace
	}
	return &Engine{
		gw:         gw,
		dispatcher: dispatcher,
		publisher:  publisher,
		policy:     policy,
		log:        log,
	}
}

// ===============================
// Triggers
// ===============================

// OnRecorded queues the actor's personal notification.
func (e *Engine) OnRecorded(entry models.AuditLog) {
	if !wantsPersonal(entry) {
		return
	}
	e.dispatcher.Dispatch(Job{
		Name: "personal:" + entry.Action,
		Run: func(ctx context.Context) error {
			return e.DeliverPersonal(ctx, entry)
		},
	})
}

// QueueChanged queues a recount of pending registrations for every
// elevated user.
func (e *Engine) QueueChanged() {
	e.dispatcher.Dispatch(Job{
		Name: "approval_queue",
		Run:  e.RecomputeApprovalQueue,
	})
}

// ===============================
// Personal
// ===============================

func wantsPersonal(entry models.AuditLog) bool {
	return entry.ActorID != "" && !auditlog.Action(entry.Action).IsSession()
}

func (e *Engine) DeliverPersonal(ctx context.Context, entry models.AuditLog) error {
	if !wantsPersonal(entry) {
		return nil
	}

	title, message := Render(
		auditlog.Action(entry.Action),
		auditlog.EntityType(entry.EntityType),
		entry.Detail,
	)
	n := models.Notification{
		RecipientUserID:   entry.ActorID,
		Title:             title,
		Message:           message,
		Category:          models.NotificationCategoryActivity,
		RelatedAction:     entry.Action,
		RelatedEntityType: entry.EntityType,
		RelatedEntityID:   entry.EntityID,
		CreatedAt:         time.Now().UTC(),
	}
	if _, err := e.gw.Notifications.Insert(ctx, &n); err != nil {
		return fmt.Errorf("insert personal notification: %w", err)
	}
	e.publish(ctx, n)
	return nil
}

// ===============================
// Approval queue broadcast
// ===============================

func (e *Engine) RecomputeApprovalQueue(ctx context.Context) error {
	e.broadcastMu.Lock()
	defer e.broadcastMu.Unlock()

	pending, err := e.gw.Pending.Count(ctx)
	if err != nil {
		return fmt.Errorf("count pending registrations: %w", err)
	}

	recipients, err := e.gw.Users.Query(ctx, store.Query{
		Filters: []store.Filter{
			store.In("role", registration.ElevatedRoleNames()),
			store.Eq("is_active", true),
		},
	})
	if err != nil {
		return fmt.Errorf("list approvers: %w", err)
	}

	var errs []error
	for _, u := range recipients {
		if err := e.deliverQueue(ctx, u.ID, pending); err != nil {
			e.log.Warn("approval queue notification failed",
				zap.String("recipient_id", u.ID),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}

	e.log.Debug("approval queue broadcast",
		zap.Int64("pending", pending),
		zap.Int("recipients", len(recipients)),
		zap.String("policy", string(e.policy)),
	)
	return errors.Join(errs...)
}

func (e *Engine) deliverQueue(ctx context.Context, userID string, pending int64) error {
	if e.policy == PolicyReplace {
		stale, err := e.gw.Notifications.Query(ctx, store.Query{
			Filters: []store.Filter{
				store.Eq("recipient_user_id", userID),
				store.Eq("category", models.NotificationCategoryApprovalQueue),
				store.Eq("is_read", false),
			},
		})
		if err != nil {
			return fmt.Errorf("find stale queue notifications: %w", err)
		}
		for _, n := range stale {
			if err := e.gw.Notifications.Delete(ctx, n.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("delete stale queue notification: %w", err)
			}
		}
	}

	if pending == 0 {
		return nil
	}

	n := models.Notification{
		RecipientUserID:   userID,
		Title:             approvalQueueTitle,
		Message:           QueueMessage(pending),
		Category:          models.NotificationCategoryApprovalQueue,
		RelatedEntityType: string(auditlog.EntityRegistrations),
		CreatedAt:         time.Now().UTC(),
	}
	if _, err := e.gw.Notifications.Insert(ctx, &n); err != nil {
		return fmt.Errorf("insert queue notification: %w", err)
	}
	e.publish(ctx, n)
	return nil
}

func QueueMessage(pending int64) string {
	if pending == 1 {
		return "1 pending registration awaiting approval"
	}
	return fmt.Sprintf("%d pending registrations awaiting approval", pending)
}

func (e *Engine) publish(ctx context.Context, n models.Notification) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, n); err != nil {
		e.log.Warn("publish notification failed",
			zap.String("notification_id", n.ID),
			zap.String("recipient_id", n.RecipientUserID),
			zap.Error(err),
		)
	}
}
