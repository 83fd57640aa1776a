package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog is write-once. Before is nil for creations and After is nil for
// deletions, so a diff can be rebuilt without re-querying the entity.
type AuditLog struct {
	ID string `gorm:"type:uuid;primaryKey" json:"id"`

	ActorID          string `gorm:"size:64;index" json:"actor_id"`
	ActorEmail       string `gorm:"size:160;index" json:"actor_email"`
	ActorDisplayName string `gorm:"size:120" json:"actor_display_name"`

	Action     string `gorm:"size:50;index;not null" json:"action"`
	EntityType string `gorm:"size:50;index;not null" json:"entity_type"`
	EntityID   string `gorm:"size:64" json:"entity_id,omitempty"`

	Before datatypes.JSON `gorm:"type:jsonb" json:"before,omitempty"`
	After  datatypes.JSON `gorm:"type:jsonb" json:"after,omitempty"`
	Detail string         `gorm:"type:text" json:"detail"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (a AuditLog) RecordID() string { return a.ID }
