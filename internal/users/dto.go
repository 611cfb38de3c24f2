package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/mateovidal/catalogbase-backend/pkg/db/models"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID                 uuid.UUID  `json:"id"`
	Email              string     `json:"email"`
	Name               string     `json:"name"`
	Image              *string    `json:"image,omitempty"`
	EmailVerified      bool       `json:"email_verified"`
	OnboardingComplete bool       `json:"onboarding_complete"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	Name         string
	PasswordHash *string
	Image        *string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:                 u.ID,
		Email:              u.Email,
		Name:               u.Name,
		Image:              u.Image,
		EmailVerified:      u.EmailVerifiedAt != nil,
		OnboardingComplete: u.OnboardingComplete,
		LastLoginAt:        u.LastLoginAt,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Email:        c.Email,
		Name:         c.Name,
		PasswordHash: c.PasswordHash,
		Image:        c.Image,
	}
}
