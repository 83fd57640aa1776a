package dto

import "time"

type ActorActivityDTO struct {
	ActorID          string `json:"actor_id"`
	ActorEmail       string `json:"actor_email"`
	ActorDisplayName string `json:"actor_display_name"`
	Count            int    `json:"count"`
}

type AuditStatsDTO struct {
	TotalCount  int64              `json:"total_count"`
	RecentCount int64              `json:"recent_count"`
	Since       time.Time          `json:"since"`
	TopActors   []ActorActivityDTO `json:"top_actors"`
	ByAction    map[string]int     `json:"by_action"`
}
