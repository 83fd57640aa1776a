// Package store is the record store gateway: one Collection per persisted
// entity plus the identity-account collaborator. Every multi-step workflow is
// an ordered sequence of independent calls against it; no call spans more
// than one collection.
package store

import (
	"context"
	"errors"

	"github.com/BruksfildServices01/opsdesk/internal/models"
)

// Sentinel errors for infrastructure facts. Implementations return these
// (optionally wrapped) so use cases can translate them into business errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)

type Op string

const (
	OpEq  Op = "="
	OpNeq Op = "<>"
	OpGte Op = ">="
	OpLte Op = "<="
	OpIn  Op = "IN"
)

// Filter matches a column against a value. Field is the column name.
type Filter struct {
	Field string
	Op    Op
	Value any
}

func Eq(field string, v any) Filter  { return Filter{Field: field, Op: OpEq, Value: v} }
func Neq(field string, v any) Filter { return Filter{Field: field, Op: OpNeq, Value: v} }
func Gte(field string, v any) Filter { return Filter{Field: field, Op: OpGte, Value: v} }
func Lte(field string, v any) Filter { return Filter{Field: field, Op: OpLte, Value: v} }

// In expects a slice value.
func In(field string, v any) Filter { return Filter{Field: field, Op: OpIn, Value: v} }

type Order struct {
	Field string
	Desc  bool
}

// Query is filters ANDed together, then ordered, then truncated to Limit
// (0 means no limit).
type Query struct {
	Filters []Filter
	Order   []Order
	Limit   int
}

// Group is one distinct combination of grouped columns. Values follows the
// order of the requested fields.
type Group struct {
	Values []any
	Count  int64
}

type Collection[T any] interface {
	// Insert assigns an ID when the row has none and returns it.
	Insert(ctx context.Context, row *T) (string, error)
	Update(ctx context.Context, id string, patch map[string]any) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*T, error)
	Query(ctx context.Context, q Query) ([]T, error)
	Count(ctx context.Context, filters ...Filter) (int64, error)
	// GroupCount counts matching rows per distinct combination of fields.
	GroupCount(ctx context.Context, fields []string, filters ...Filter) ([]Group, error)
}

// IdentityProvider is the external authentication collaborator, keyed by
// email. secret is always an already-hashed credential.
type IdentityProvider interface {
	CreateAccount(ctx context.Context, email, secret string) (string, error)
	FindAccountByEmail(ctx context.Context, email string) (string, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
}

// Gateway is the handle injected into every component. Its lifecycle is owned
// by the process entry point.
type Gateway struct {
	Pending       Collection[models.PendingRegistration]
	Users         Collection[models.User]
	AuditLogs     Collection[models.AuditLog]
	Notifications Collection[models.Notification]
	Clients       Collection[models.Client]
	Products      Collection[models.Product]
	Identity      IdentityProvider
}
