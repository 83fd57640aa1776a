package memory

import (
	"github.com/BruksfildServices01/opsdesk/internal/identity"
	"github.com/BruksfildServices01/opsdesk/internal/models"
	"github.com/BruksfildServices01/opsdesk/internal/store"
)

// Store keeps the concrete collections so tests can inspect or wrap them.
type Store struct {
	Pending       *Collection[models.PendingRegistration]
	Users         *Collection[models.User]
	AuditLogs     *Collection[models.AuditLog]
	Notifications *Collection[models.Notification]
	Clients       *Collection[models.Client]
	Products      *Collection[models.Product]
	Accounts      *Collection[models.IdentityAccount]
}

func NewStore(opts ...Option) *Store {
	with := func(extra ...Option) []Option {
		return append(append([]Option(nil), opts...), extra...)
	}
	return &Store{
		Pending:       NewCollection[models.PendingRegistration](with(WithUnique("username"))...),
		Users:         NewCollection[models.User](with(WithUnique("username"), WithUnique("email"))...),
		AuditLogs:     NewCollection[models.AuditLog](opts...),
		Notifications: NewCollection[models.Notification](opts...),
		Clients:       NewCollection[models.Client](opts...),
		Products:      NewCollection[models.Product](opts...),
		Accounts:      NewCollection[models.IdentityAccount](with(WithUnique("email"))...),
	}
}

func (s *Store) Gateway() *store.Gateway {
	return &store.Gateway{
		Pending:       s.Pending,
		Users:         s.Users,
		AuditLogs:     s.AuditLogs,
		Notifications: s.Notifications,
		Clients:       s.Clients,
		Products:      s.Products,
		Identity:      identity.NewAccounts(s.Accounts),
	}
}

func NewGateway(opts ...Option) *store.Gateway {
	return NewStore(opts...).Gateway()
}
