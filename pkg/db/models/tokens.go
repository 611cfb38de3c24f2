package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailVerificationToken is a single-use 6-digit code. Consuming it deletes
// the row; the (email, token) pair is unique.
type EmailVerificationToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Email     string    `gorm:"column:email;not null;uniqueIndex:idx_email_verification_tokens_email_token"`
	Token     string    `gorm:"column:token;not null;uniqueIndex:idx_email_verification_tokens_email_token"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// PasswordResetToken is keyed by email only; several may be outstanding at
// once and all are deleted together when any of them is redeemed.
type PasswordResetToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"column:email;not null;index"`
	Token     string    `gorm:"column:token;not null;index"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
