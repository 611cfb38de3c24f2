package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents the canonical identity entity. PasswordHash stays nil for
// accounts that never set a credential, and EmailVerifiedAt nil means the
// account cannot authenticate with a password yet.
type User struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Email              string     `gorm:"type:text;not null;uniqueIndex"`
	Name               string     `gorm:"column:name;not null"`
	PasswordHash       *string    `gorm:"column:password_hash"`
	Image              *string    `gorm:"column:image"`
	EmailVerifiedAt    *time.Time `gorm:"column:email_verified_at"`
	OnboardingComplete bool       `gorm:"column:onboarding_complete;not null;default:false"`
	LastLoginAt        *time.Time `gorm:"column:last_login_at"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
