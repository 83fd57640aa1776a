package auditlog

import (
	"context"
	"sort"
	"time"

	"github.com/BruksfildServices01/opsdesk/internal/dto"
	"github.com/BruksfildServices01/opsdesk/internal/httperr"
	"github.com/BruksfildServices01/opsdesk/internal/models"
	"github.com/BruksfildServices01/opsdesk/internal/store"
)

const (
	RecentWindow = 7 * 24 * time.Hour
	TopActors    = 5
)

type AuditStats struct {
	logs store.Collection[models.AuditLog]
	now  func() time.Time
}

func NewAuditStats(logs store.Collection[models.AuditLog]) *AuditStats {
	return &AuditStats{logs: logs, now: time.Now}
}

var actorColumns = []string{"actor_id", "actor_email", "actor_display_name"}

// Execute aggregates in the store; only one row per distinct actor and per
// action comes back.
func (uc *AuditStats) Execute(ctx context.Context) (*dto.AuditStatsDTO, error) {
	since := uc.now().UTC().Add(-RecentWindow)
	inWindow := store.Gte("created_at", since)

	total, err := uc.logs.Count(ctx)
	if err != nil {
		return nil, httperr.FromStore(err, "audit_stats_failed")
	}
	recent, err := uc.logs.Count(ctx, inWindow)
	if err != nil {
		return nil, httperr.FromStore(err, "audit_stats_failed")
	}
	actors, err := uc.logs.GroupCount(ctx, actorColumns, inWindow)
	if err != nil {
		return nil, httperr.FromStore(err, "audit_stats_failed")
	}
	actions, err := uc.logs.GroupCount(ctx, []string{"action"}, inWindow)
	if err != nil {
		return nil, httperr.FromStore(err, "audit_stats_failed")
	}

	return &dto.AuditStatsDTO{
		TotalCount:  total,
		RecentCount: recent,
		Since:       since,
		TopActors:   topActors(actors, TopActors),
		ByAction:    byAction(actions),
	}, nil
}

// topActors merges groups by email, falling back to the actor id, so a
// renamed actor still counts once.
func topActors(groups []store.Group, n int) []dto.ActorActivityDTO {
	idx := map[string]int{}
	out := make([]dto.ActorActivityDTO, 0)

	for _, g := range groups {
		id, email, name := text(g.Values[0]), text(g.Values[1]), text(g.Values[2])
		key := email
		if key == "" {
			key = id
		}
		i, ok := idx[key]
		if !ok {
			i = len(out)
			idx[key] = i
			out = append(out, dto.ActorActivityDTO{
				ActorID:          id,
				ActorEmail:       email,
				ActorDisplayName: name,
			})
		}
		out[i].Count += int(g.Count)
	}

	sort.Slice(out, func(a, b int) bool {
		if out[a].Count != out[b].Count {
			return out[a].Count > out[b].Count
		}
		return out[a].ActorEmail < out[b].ActorEmail
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func byAction(groups []store.Group) map[string]int {
	out := make(map[string]int, len(groups))
	for _, g := range groups {
		out[text(g.Values[0])] += int(g.Count)
	}
	return out
}

func text(v any) string {
	s, _ := v.(string)
	return s
}
