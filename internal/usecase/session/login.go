package session

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/opsdesk/internal/audit"
	"github.com/BruksfildServices01/opsdesk/internal/domain/auditlog"
	"github.com/BruksfildServices01/opsdesk/internal/domain/registration"
	"github.com/BruksfildServices01/opsdesk/internal/httperr"
	"github.com/BruksfildServices01/opsdesk/internal/identity"
	"github.com/BruksfildServices01/opsdesk/internal/models"
	"github.com/BruksfildServices01/opsdesk/internal/store"
)

// ActorOf is how a signed-in user appears in audit entries.
func ActorOf(u *models.User) audit.Actor {
	return audit.Actor{ID: u.ID, Email: u.Email, DisplayName: u.FullName}
}

type Login struct {
	gw          *store.Gateway
	recorder    *audit.Recorder
	emailDomain string
	log         *zap.Logger
}

func NewLogin(gw *store.Gateway, recorder *audit.Recorder, emailDomain string, log *zap.Logger) *Login {
	return &Login{gw: gw, recorder: recorder, emailDomain: emailDomain, log: log}
}

// Execute authenticates against the identity account and requires a
// materialized, active User. Pending registrations cannot sign in.
func (uc *Login) Execute(ctx context.Context, username, password string) (*models.User, error) {
	email := registration.DeriveEmail(username, uc.emailDomain)

	accountID, err := uc.gw.Identity.Authenticate(ctx, email, password)
	if errors.Is(err, identity.ErrInvalidCredentials) {
		return nil, httperr.Unauthorized("invalid_credentials")
	}
	if err != nil {
		return nil, httperr.Transient("login_failed", err)
	}

	user, err := uc.gw.Users.Get(ctx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, httperr.Unauthorized("invalid_credentials")
	}
	if err != nil {
		return nil, httperr.Transient("login_failed", err)
	}
	if !user.IsActive {
		return nil, httperr.Forbidden("user_inactive")
	}

	return user, uc.record(ctx, ActorOf(user), auditlog.ActionLogin, "signed in")
}

func (uc *Login) record(ctx context.Context, actor audit.Actor, action auditlog.Action, detail string) error {
	_, err := uc.recorder.Record(ctx, audit.Entry{
		Actor:      actor,
		Action:     action,
		EntityType: auditlog.EntitySessions,
		EntityID:   actor.ID,
		Detail:     detail,
	})
	if err != nil {
		uc.log.Error("session audit failed",
			zap.String("action", string(action)),
			zap.String("actor_id", actor.ID),
			zap.Error(err),
		)
		return httperr.Partial("audit_write_failed", err)
	}
	return nil
}
