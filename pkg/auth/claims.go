package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionPayload captures the principal data projected into a session token
// when it is minted. OnboardingComplete rides the signed token so the client
// redirect decision needs no database read; it refreshes at next login.
type SessionPayload struct {
	UserID             uuid.UUID
	Name               string
	Image              *string
	OnboardingComplete bool
	JTI                string
}

// SessionClaims represents the typed JWT issued to clients.
type SessionClaims struct {
	UserID             uuid.UUID `json:"user_id"`
	Name               string    `json:"name,omitempty"`
	Image              *string   `json:"image,omitempty"`
	OnboardingComplete bool      `json:"onboarding_complete"`
	jwt.RegisteredClaims
}
