package models

import "time"

// User shares its ID with the identity account it was materialized from.
type User struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	Email    string `gorm:"size:160;uniqueIndex;not null" json:"email"`
	Username string `gorm:"size:64;uniqueIndex;not null" json:"username"`
	FullName string `gorm:"size:120;not null" json:"full_name"`
	Role     string `gorm:"size:20;index;not null;default:'user'" json:"role"`
	IsActive bool   `gorm:"index;not null" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u User) RecordID() string { return u.ID }
