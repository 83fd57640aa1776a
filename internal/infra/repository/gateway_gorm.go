package repository

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/opsdesk/internal/identity"
	"github.com/BruksfildServices01/opsdesk/internal/models"
	"github.com/BruksfildServices01/opsdesk/internal/store"
)

// NewGateway binds one gorm-backed collection per table. Every call is
// bounded by timeout unless the caller's context already carries a deadline.
func NewGateway(db *gorm.DB, timeout time.Duration, log *zap.Logger) *store.Gateway {
	return &store.Gateway{
		Pending:       NewGormCollection[models.PendingRegistration](db, timeout, log),
		Users:         NewGormCollection[models.User](db, timeout, log),
		AuditLogs:     NewGormCollection[models.AuditLog](db, timeout, log),
		Notifications: NewGormCollection[models.Notification](db, timeout, log),
		Clients:       NewGormCollection[models.Client](db, timeout, log),
		Products:      NewGormCollection[models.Product](db, timeout, log),
		Identity: identity.NewAccounts(
			NewGormCollection[models.IdentityAccount](db, timeout, log),
		),
	}
}
