package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserStatus enumerates account lifecycle states. Accounts are never
// hard-deleted; they transition to one of the non-active states instead.
type UserStatus string

const (
	StatusActive    UserStatus = "active"
	StatusInactive  UserStatus = "inactive"
	StatusBanned    UserStatus = "banned"
	StatusSuspended UserStatus = "suspended"
	StatusDeleted   UserStatus = "deleted"
)

// User represents an application user. Password-based and Google OAuth
// accounts share this record; OAuth-only accounts have an empty password hash.
type User struct {
	ID                   uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	Email                string         `json:"email" gorm:"uniqueIndex;size:255;not null"`
	HashedPassword       string         `json:"-" gorm:"size:255"` // Never expose in JSON
	Username             string         `json:"username" gorm:"size:100"`
	IsActive             bool           `json:"is_active" gorm:"default:true"`
	Status               UserStatus     `json:"status" gorm:"type:varchar(20);default:'active';index"`
	GoogleID             *string        `json:"-" gorm:"uniqueIndex;size:255"`
	FailedLoginAttempts  int            `json:"-" gorm:"default:0"`
	LastFailedLogin      *time.Time     `json:"-"`
	LastLogin            *time.Time     `json:"last_login,omitempty"`
	PasswordResetToken   *string        `json:"-" gorm:"size:512"`
	PasswordResetExpires *time.Time     `json:"-"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
