package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoginAttempt is an append-only audit record of a single login outcome.
// All attempts are recorded regardless of success or failure; rows are never
// updated or deleted.
type LoginAttempt struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:char(36);not null;index"`
	Success   bool      `json:"success" gorm:"not null"`
	Timestamp time.Time `json:"timestamp" gorm:"not null;index"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (la *LoginAttempt) BeforeCreate(tx *gorm.DB) error {
	if la.ID == uuid.Nil {
		la.ID = uuid.New()
	}
	return nil
}
