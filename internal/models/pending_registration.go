package models

import "time"

// PendingRegistration exists only while a self-submitted account request
// awaits a decision.
type PendingRegistration struct {
	ID             string    `gorm:"type:uuid;primaryKey" json:"id"`
	Username       string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	FullName       string    `gorm:"size:120;not null" json:"full_name"`
	PasswordSecret string    `gorm:"size:255;not null" json:"-"`
	RequestedRole  string    `gorm:"size:20;not null;default:'user'" json:"requested_role"`
	SubmittedAt    time.Time `gorm:"index;not null" json:"submitted_at"`
}

func (p PendingRegistration) RecordID() string { return p.ID }
