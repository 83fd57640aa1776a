package registration

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/opsdesk/internal/audit"
	"github.com/BruksfildServices01/opsdesk/internal/domain/auditlog"
	domain "github.com/BruksfildServices01/opsdesk/internal/domain/registration"
	"github.com/BruksfildServices01/opsdesk/internal/httperr"
	"github.com/BruksfildServices01/opsdesk/internal/models"
	"github.com/BruksfildServices01/opsdesk/internal/store"
)

// ApproveRegistration materializes a pending registration into an identity
// account and a User. The steps are independent store calls, so every step
// looks for the result of an earlier interrupted attempt before writing.
type ApproveRegistration struct {
	gw          *store.Gateway
	recorder    *audit.Recorder
	queue       QueueNotifier
	emailDomain string
	log         *zap.Logger
}

func NewApproveRegistration(
	gw *store.Gateway,
	recorder *audit.Recorder,
	queue QueueNotifier,
	emailDomain string,
	log *zap.Logger,
) *ApproveRegistration {
	return &ApproveRegistration{
		gw:          gw,
		recorder:    recorder,
		queue:       queue,
		emailDomain: emailDomain,
		log:         log,
	}
}

func (uc *ApproveRegistration) Execute(
	ctx context.Context,
	pendingID string,
	actor audit.Actor,
) (*models.User, error) {

	p, err := uc.gw.Pending.Get(ctx, pendingID)
	if err != nil {
		return nil, httperr.FromStore(err, "registration_not_found")
	}

	log := uc.log.With(
		zap.String("registration_id", p.ID),
		zap.String("username", p.Username),
		zap.String("actor_id", actor.ID),
	)
	email := domain.DeriveEmail(p.Username, uc.emailDomain)

	// --------------------------------------------------
	// Identity account (reused when a prior attempt created it)
	// --------------------------------------------------

	accountID, err := uc.gw.Identity.FindAccountByEmail(ctx, email)
	switch {
	case err == nil:
		log.Info("reusing existing identity account", zap.String("account_id", accountID))
	case errors.Is(err, store.ErrNotFound):
		accountID, err = uc.gw.Identity.CreateAccount(ctx, email, p.PasswordSecret)
		if err != nil {
			return nil, httperr.Transient("identity_account_failed", err)
		}
	default:
		return nil, httperr.Transient("identity_account_failed", err)
	}

	// --------------------------------------------------
	// User row
	// --------------------------------------------------

	user, reused, err := uc.materialize(ctx, p, accountID, email)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// From here on the User exists; nothing below rolls it back.
	// --------------------------------------------------

	if err := uc.gw.Pending.Delete(ctx, p.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Warn("approved registration left pending", zap.Error(err))
	}

	// A retry that finds the approval already audited only finishes the
	// cleanup above.
	if reused && uc.alreadyAudited(ctx, user.ID, log) {
		log.Info("registration approval resumed", zap.String("user_id", user.ID))
		uc.queue.QueueChanged()
		return user, nil
	}

	detail := fmt.Sprintf("%s approved as %s", p.Username, user.Role)
	if reused {
		detail += " (resumed)"
	}

	var partial error
	if _, err := uc.recorder.Record(ctx, audit.Entry{
		Actor:      actor,
		Action:     auditlog.ActionApproveRegistration,
		EntityType: auditlog.EntityUsers,
		EntityID:   user.ID,
		Before:     p,
		After:      user,
		Detail:     detail,
	}); err != nil {
		log.Error("audit write failed after approval", zap.Error(err))
		partial = httperr.Partial("audit_write_failed", err)
	}

	log.Info("registration approved", zap.String("user_id", user.ID))
	uc.queue.QueueChanged()
	return user, partial
}

// alreadyAudited reports false when the lookup fails, so an unreadable audit
// trail gets a second entry rather than none.
func (uc *ApproveRegistration) alreadyAudited(ctx context.Context, userID string, log *zap.Logger) bool {
	n, err := uc.gw.AuditLogs.Count(ctx,
		store.Eq("action", string(auditlog.ActionApproveRegistration)),
		store.Eq("entity_id", userID),
	)
	if err != nil {
		log.Warn("approval audit lookup failed", zap.Error(err))
		return false
	}
	return n > 0
}

// materialize reports whether the User already existed from an earlier
// attempt.
func (uc *ApproveRegistration) materialize(
	ctx context.Context,
	p *models.PendingRegistration,
	accountID string,
	email string,
) (*models.User, bool, error) {

	existing, err := uc.gw.Users.Get(ctx, accountID)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, httperr.Transient("user_lookup_failed", err)
	}

	user := &models.User{
		ID:       accountID,
		Email:    email,
		Username: p.Username,
		FullName: p.FullName,
		Role:     p.RequestedRole,
		IsActive: true,
	}
	if _, err := uc.gw.Users.Insert(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, false, httperr.Conflict(CodeAlreadyRegistered)
		}
		return nil, false, httperr.Transient("user_create_failed", err)
	}
	return user, false, nil
}
