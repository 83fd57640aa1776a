package models

import "time"

const (
	NotificationCategoryActivity      = "activity"
	NotificationCategoryApprovalQueue = "approval_queue"
)

type Notification struct {
	ID              string `gorm:"type:uuid;primaryKey" json:"id"`
	RecipientUserID string `gorm:"size:64;index;not null" json:"recipient_user_id"`

	Title    string `gorm:"size:120;not null" json:"title"`
	Message  string `gorm:"type:text;not null" json:"message"`
	Category string `gorm:"size:32;index;not null" json:"category"`

	RelatedAction     string `gorm:"size:50" json:"related_action"`
	RelatedEntityType string `gorm:"size:50" json:"related_entity_type"`
	RelatedEntityID   string `gorm:"size:64" json:"related_entity_id"`

	IsRead    bool       `gorm:"index;not null;default:false" json:"is_read"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	ReadAt    *time.Time `json:"read_at"`
}

func (n Notification) RecordID() string { return n.ID }
