// Package bootstrap seeds the first administrator so a fresh install has
// someone able to approve registrations.
package bootstrap

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/BruksfildServices01/opsdesk/internal/audit"
	"github.com/BruksfildServices01/opsdesk/internal/domain/auditlog"
	"github.com/BruksfildServices01/opsdesk/internal/domain/registration"
	"github.com/BruksfildServices01/opsdesk/internal/models"
	"github.com/BruksfildServices01/opsdesk/internal/store"
	"github.com/BruksfildServices01/opsdesk/internal/validators"
)

// EnsureAdmin creates the admin identity and User when absent. Running it
// again is a no-op, and a half-finished earlier run is completed.
func EnsureAdmin(
	ctx context.Context,
	gw *store.Gateway,
	recorder *audit.Recorder,
	emailDomain, username, password string,
	log *zap.Logger,
) (*models.User, error) {

	username = registration.NormalizeUsername(username)
	if !validators.IsUsernameValid(username) {
		return nil, errors.New("bootstrap: invalid admin username")
	}
	if !validators.IsPasswordAcceptable(password) {
		return nil, errors.New("bootstrap: admin password too short")
	}
	email := registration.DeriveEmail(username, emailDomain)

	accountID, err := gw.Identity.FindAccountByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		hash, herr := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if herr != nil {
			return nil, herr
		}
		accountID, err = gw.Identity.CreateAccount(ctx, email, string(hash))
	}
	if err != nil {
		return nil, err
	}

	if existing, err := gw.Users.Get(ctx, accountID); err == nil {
		return existing, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	admin := &models.User{
		ID:       accountID,
		Email:    email,
		Username: username,
		FullName: "Administrator",
		Role:     string(registration.RoleAdmin),
		IsActive: true,
	}
	if _, err := gw.Users.Insert(ctx, admin); err != nil {
		return nil, err
	}

	if _, err := recorder.Record(ctx, audit.Entry{
		Actor:      audit.System(),
		Action:     auditlog.ActionCreate,
		EntityType: auditlog.EntityUsers,
		EntityID:   admin.ID,
		After:      admin,
		Detail:     "bootstrap administrator",
	}); err != nil {
		log.Warn("bootstrap admin audit failed", zap.Error(err))
	}

	log.Info("bootstrap administrator created",
		zap.String("user_id", admin.ID),
		zap.String("username", admin.Username),
	)
	return admin, nil
}
