package auth

import "github.com/mateovidal/catalogbase-backend/internal/users"

type SignupRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Name     string  `json:"name" validate:"required,min=1,max=120"`
	Password string  `json:"password" validate:"required,min=8,max=128"`
	Image    *string `json:"image,omitempty" validate:"omitempty,url"`
}

// LoginRequest accepts either a password or a one-time email code. Exactly
// one of the two must be present.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password,omitempty" validate:"omitempty,min=1"`
	Code     string `json:"code,omitempty" validate:"omitempty,len=6,numeric"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required,len=64,hexadecimal"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// SignupResponse deliberately omits a session: the account must verify its
// email (or redeem the emailed code at login) before it can authenticate.
type SignupResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required,len=6,numeric"`
}

// SessionDTO is returned by both login paths.
type SessionDTO struct {
	Token string         `json:"token"`
	User  *users.UserDTO `json:"user"`
}
