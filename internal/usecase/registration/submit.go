package registration

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	domain "github.com/BruksfildServices01/opsdesk/internal/domain/registration"
	"github.com/BruksfildServices01/opsdesk/internal/httperr"
	"github.com/BruksfildServices01/opsdesk/internal/models"
	"github.com/BruksfildServices01/opsdesk/internal/store"
	"github.com/BruksfildServices01/opsdesk/internal/validators"
)

// QueueNotifier is told whenever the set of pending registrations changes.
type QueueNotifier interface {
	QueueChanged()
}

type SubmitInput struct {
	Username      string
	FullName      string
	Password      string
	RequestedRole string
}

type SubmitRegistration struct {
	gw        *store.Gateway
	validator *UniquenessValidator
	queue     QueueNotifier
	log       *zap.Logger
}

func NewSubmitRegistration(
	gw *store.Gateway,
	validator *UniquenessValidator,
	queue QueueNotifier,
	log *zap.Logger,
) *SubmitRegistration {
	return &SubmitRegistration{
		gw:        gw,
		validator: validator,
		queue:     queue,
		log:       log,
	}
}

func (uc *SubmitRegistration) Execute(
	ctx context.Context,
	in SubmitInput,
) (*models.PendingRegistration, error) {

	username := domain.NormalizeUsername(in.Username)
	if !validators.IsUsernameValid(username) {
		return nil, httperr.ErrBusiness("invalid_username")
	}
	if !validators.IsFullNameValid(in.FullName) {
		return nil, httperr.ErrBusiness("invalid_full_name")
	}
	if !validators.IsPasswordAcceptable(in.Password) {
		return nil, httperr.ErrBusiness("password_too_short")
	}
	role, err := domain.ParseRole(in.RequestedRole)
	if err != nil {
		return nil, err
	}

	if err := uc.validator.Validate(ctx, username); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	p := &models.PendingRegistration{
		Username:       username,
		FullName:       strings.TrimSpace(in.FullName),
		PasswordSecret: string(hash),
		RequestedRole:  string(role),
		SubmittedAt:    time.Now().UTC(),
	}
	if _, err := uc.gw.Pending.Insert(ctx, p); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, httperr.Conflict(CodeAlreadyPending)
		}
		return nil, httperr.FromStore(err, "registration_submit_failed")
	}

	uc.log.Info("registration submitted",
		zap.String("registration_id", p.ID),
		zap.String("username", p.Username),
		zap.String("requested_role", p.RequestedRole),
	)

	uc.queue.QueueChanged()
	return p, nil
}
