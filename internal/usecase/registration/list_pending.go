package registration

import (
	"context"

	"github.com/BruksfildServices01/opsdesk/internal/httperr"
	"github.com/BruksfildServices01/opsdesk/internal/models"
	"github.com/BruksfildServices01/opsdesk/internal/store"
)

type ListPending struct {
	gw *store.Gateway
}

func NewListPending(gw *store.Gateway) *ListPending {
	return &ListPending{gw: gw}
}

// Execute returns pending registrations, oldest first.
func (uc *ListPending) Execute(ctx context.Context) ([]models.PendingRegistration, error) {
	rows, err := uc.gw.Pending.Query(ctx, store.Query{
		Order: []store.Order{{Field: "submitted_at"}},
	})
	if err != nil {
		return nil, httperr.FromStore(err, "registration_list_failed")
	}
	return rows, nil
}
