package auditlog

import (
	"context"
	"strings"
	"time"

	domain "github.com/BruksfildServices01/opsdesk/internal/domain/auditlog"
	"github.com/BruksfildServices01/opsdesk/internal/httperr"
	"github.com/BruksfildServices01/opsdesk/internal/models"
	"github.com/BruksfildServices01/opsdesk/internal/store"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

type Filter struct {
	ActorEmail string
	Action     string
	EntityType string
	From       *time.Time
	To         *time.Time
	Limit      int
}

type ListAuditLogs struct {
	logs store.Collection[models.AuditLog]
}

func NewListAuditLogs(logs store.Collection[models.AuditLog]) *ListAuditLogs {
	return &ListAuditLogs{logs: logs}
}

// Execute returns matching entries, newest first.
func (uc *ListAuditLogs) Execute(ctx context.Context, f Filter) ([]models.AuditLog, error) {
	filters, err := f.toStore()
	if err != nil {
		return nil, err
	}

	rows, err := uc.logs.Query(ctx, store.Query{
		Filters: filters,
		Order:   []store.Order{{Field: "created_at", Desc: true}},
		Limit:   clampLimit(f.Limit),
	})
	if err != nil {
		return nil, httperr.FromStore(err, "audit_list_failed")
	}
	return rows, nil
}

func (f Filter) toStore() ([]store.Filter, error) {
	var out []store.Filter

	if email := strings.ToLower(strings.TrimSpace(f.ActorEmail)); email != "" {
		out = append(out, store.Eq("actor_email", email))
	}
	if f.Action != "" {
		a := domain.Action(strings.ToUpper(f.Action))
		if !a.Valid() {
			return nil, httperr.ErrBusiness("invalid_action")
		}
		out = append(out, store.Eq("action", string(a)))
	}
	if f.EntityType != "" {
		e := domain.EntityType(strings.ToLower(f.EntityType))
		if !e.Valid() {
			return nil, httperr.ErrBusiness("invalid_entity_type")
		}
		out = append(out, store.Eq("entity_type", string(e)))
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return nil, httperr.ErrBusiness("invalid_date_range")
	}
	if f.From != nil {
		out = append(out, store.Gte("created_at", *f.From))
	}
	if f.To != nil {
		out = append(out, store.Lte("created_at", *f.To))
	}
	return out, nil
}

func clampLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultLimit
	case n > MaxLimit:
		return MaxLimit
	}
	return n
}
