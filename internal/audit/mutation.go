package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/opsdesk/internal/domain/auditlog"
	"github.com/BruksfildServices01/opsdesk/internal/httperr"
)

// Mutation describes one audited change. Load reads the prior state and is
// nil for creations; Apply commits the change and returns the resulting
// state, nil for deletions.
type Mutation[T any] struct {
	Actor      Actor
	Action     auditlog.Action
	EntityType auditlog.EntityType
	EntityID   string
	Detail     string
	// Describe, when set, derives Detail from the loaded and applied states.
	Describe func(before, after *T) string

	Load  func(ctx context.Context) (*T, error)
	Apply func(ctx context.Context, before *T) (*T, error)
}

type identified interface {
	RecordID() string
}

// Run executes m and records it. Errors from Load or Apply abort before the
// audit step. An audit failure never undoes the committed change: the
// result is returned together with a Partial error.
func Run[T any](ctx context.Context, r *Recorder, m Mutation[T]) (*T, error) {
	var before *T
	if m.Load != nil {
		b, err := m.Load(ctx)
		if err != nil {
			return nil, err
		}
		before = b
	}

	after, err := m.Apply(ctx, before)
	if err != nil {
		return nil, err
	}

	entityID := m.EntityID
	if entityID == "" {
		entityID = idOf(after)
	}
	if entityID == "" {
		entityID = idOf(before)
	}

	detail := m.Detail
	if m.Describe != nil {
		detail = m.Describe(before, after)
	}

	if _, err := r.Record(ctx, Entry{
		Actor:      m.Actor,
		Action:     m.Action,
		EntityType: m.EntityType,
		EntityID:   entityID,
		Before:     before,
		After:      after,
		Detail:     detail,
	}); err != nil {
		r.log.Error("audit write failed after committed mutation",
			zap.String("action", string(m.Action)),
			zap.String("entity_type", string(m.EntityType)),
			zap.String("entity_id", entityID),
			zap.String("actor_id", m.Actor.ID),
			zap.Error(err),
		)
		return after, httperr.Partial("audit_write_failed", err)
	}
	return after, nil
}

func idOf[T any](v *T) string {
	if v == nil {
		return ""
	}
	if x, ok := any(*v).(identified); ok {
		return x.RecordID()
	}
	return ""
}
