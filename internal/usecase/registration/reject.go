package registration

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/opsdesk/internal/audit"
	"github.com/BruksfildServices01/opsdesk/internal/domain/auditlog"
	"github.com/BruksfildServices01/opsdesk/internal/httperr"
	"github.com/BruksfildServices01/opsdesk/internal/models"
	"github.com/BruksfildServices01/opsdesk/internal/store"
)

type RejectRegistration struct {
	gw       *store.Gateway
	recorder *audit.Recorder
	queue    QueueNotifier
	log      *zap.Logger
}

func NewRejectRegistration(
	gw *store.Gateway,
	recorder *audit.Recorder,
	queue QueueNotifier,
	log *zap.Logger,
) *RejectRegistration {
	return &RejectRegistration{
		gw:       gw,
		recorder: recorder,
		queue:    queue,
		log:      log,
	}
}

// Execute removes the pending registration without creating anything. A
// non-empty reason is kept in the audit detail.
func (uc *RejectRegistration) Execute(
	ctx context.Context,
	pendingID string,
	actor audit.Actor,
	reason string,
) error {

	p, err := uc.gw.Pending.Get(ctx, pendingID)
	if err != nil {
		return httperr.FromStore(err, "registration_not_found")
	}

	detail := p.Username + " rejected"
	if r := strings.TrimSpace(reason); r != "" {
		detail += " (" + r + ")"
	}

	_, err = audit.Run(ctx, uc.recorder, audit.Mutation[models.PendingRegistration]{
		Actor:      actor,
		Action:     auditlog.ActionRejectRegistration,
		EntityType: auditlog.EntityRegistrations,
		EntityID:   p.ID,
		Detail:     detail,
		Load: func(context.Context) (*models.PendingRegistration, error) {
			return p, nil
		},
		Apply: func(ctx context.Context, _ *models.PendingRegistration) (*models.PendingRegistration, error) {
			if err := uc.gw.Pending.Delete(ctx, p.ID); err != nil {
				return nil, httperr.FromStore(err, "registration_not_found")
			}
			return nil, nil
		},
	})
	if err != nil && !httperr.IsKind(err, httperr.KindPartial) {
		return err
	}

	uc.log.Info("registration rejected",
		zap.String("registration_id", p.ID),
		zap.String("username", p.Username),
		zap.String("actor_id", actor.ID),
	)
	uc.queue.QueueChanged()
	return err
}
