// Package audit appends write-once entries describing every mutation of a
// business record. Entries carry full before/after snapshots so a diff can
// be rebuilt without re-reading the entity.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/BruksfildServices01/opsdesk/internal/domain/auditlog"
	"github.com/BruksfildServices01/opsdesk/internal/models"
	"github.com/BruksfildServices01/opsdesk/internal/store"
)

type Actor struct {
	ID          string
	Email       string
	DisplayName string
}

// System is used for mutations no signed-in user performed, e.g. startup
// seeding. It has no ID and therefore never receives notifications.
func System() Actor {
	return Actor{Email: "system", DisplayName: "System"}
}

type Entry struct {
	Actor      Actor
	Action     auditlog.Action
	EntityType auditlog.EntityType
	EntityID   string
	Before     any
	After      any
	Detail     string
}

// Listener observes entries after they are persisted. Implementations must
// not block.
type Listener interface {
	OnRecorded(entry models.AuditLog)
}

type Recorder struct {
	logs      store.Collection[models.AuditLog]
	listeners []Listener
	log       *zap.Logger
}

func NewRecorder(logs store.Collection[models.AuditLog], log *zap.Logger, listeners ...Listener) *Recorder {
	return &Recorder{logs: logs, listeners: listeners, log: log}
}

// Subscribe must be called before the recorder is shared between goroutines.
func (r *Recorder) Subscribe(l Listener) {
	r.listeners = append(r.listeners, l)
}

func (r *Recorder) Record(ctx context.Context, e Entry) (*models.AuditLog, error) {
	if !e.Action.Valid() {
		return nil, fmt.Errorf("audit: unknown action %q", e.Action)
	}
	if !e.EntityType.Valid() {
		return nil, fmt.Errorf("audit: unknown entity type %q", e.EntityType)
	}

	before, err := snapshot(e.Before)
	if err != nil {
		return nil, fmt.Errorf("audit: before snapshot: %w", err)
	}
	after, err := snapshot(e.After)
	if err != nil {
		return nil, fmt.Errorf("audit: after snapshot: %w", err)
	}

	entry := models.AuditLog{
		ActorID:          e.Actor.ID,
		ActorEmail:       e.Actor.Email,
		ActorDisplayName: e.Actor.DisplayName,
		Action:           string(e.Action),
		EntityType:       string(e.EntityType),
		EntityID:         e.EntityID,
		Before:           before,
		After:            after,
		Detail:           e.Detail,
		CreatedAt:        time.Now().UTC(),
	}
	if _, err := r.logs.Insert(ctx, &entry); err != nil {
		return nil, fmt.Errorf("audit: insert: %w", err)
	}

	for _, l := range r.listeners {
		l.OnRecorded(entry)
	}
	return &entry, nil
}

// snapshot encodes v, treating nil and typed-nil pointers as "no snapshot".
func snapshot(v any) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
