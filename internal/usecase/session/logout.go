package session

import (
	"context"

	"github.com/BruksfildServices01/opsdesk/internal/audit"
	"github.com/BruksfildServices01/opsdesk/internal/domain/auditlog"
)

// Logout only records the event; tokens are stateless and expire on their own.
type Logout struct {
	login *Login
}

func NewLogout(login *Login) *Logout {
	return &Logout{login: login}
}

func (uc *Logout) Execute(ctx context.Context, actor audit.Actor) error {
	return uc.login.record(ctx, actor, auditlog.ActionLogout, "signed out")
}
