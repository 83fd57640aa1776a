package registration

import (
	"context"
	"errors"

	domain "github.com/BruksfildServices01/opsdesk/internal/domain/registration"
	"github.com/BruksfildServices01/opsdesk/internal/httperr"
	"github.com/BruksfildServices01/opsdesk/internal/store"
)

const (
	CodeAlreadyPending    = "username_already_pending"
	CodeAlreadyRegistered = "username_already_registered"
)

// UniquenessValidator checks that a username is free across pending
// registrations, materialized users and identity accounts, in that order.
// The checks are not atomic; the unique indexes catch what slips through.
type UniquenessValidator struct {
	gw          *store.Gateway
	emailDomain string
}

func NewUniquenessValidator(gw *store.Gateway, emailDomain string) *UniquenessValidator {
	return &UniquenessValidator{gw: gw, emailDomain: emailDomain}
}

func (v *UniquenessValidator) Validate(ctx context.Context, username string) error {
	username = domain.NormalizeUsername(username)

	n, err := v.gw.Pending.Count(ctx, store.Eq("username", username))
	if err != nil {
		return httperr.Transient("uniqueness_check_failed", err)
	}
	if n > 0 {
		return httperr.Conflict(CodeAlreadyPending)
	}

	n, err = v.gw.Users.Count(ctx, store.Eq("username", username))
	if err != nil {
		return httperr.Transient("uniqueness_check_failed", err)
	}
	if n > 0 {
		return httperr.Conflict(CodeAlreadyRegistered)
	}

	_, err = v.gw.Identity.FindAccountByEmail(ctx, domain.DeriveEmail(username, v.emailDomain))
	switch {
	case err == nil:
		return httperr.Conflict(CodeAlreadyRegistered)
	case errors.Is(err, store.ErrNotFound):
		return nil
	default:
		return httperr.Transient("uniqueness_check_failed", err)
	}
}
