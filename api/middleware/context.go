package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ctxUserID     contextKey = "user_id"
	ctxOnboarding contextKey = "onboarding_complete"
)

// UserIDFromContext returns the authenticated user id, uuid.Nil when absent.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxUserID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

// OnboardingCompleteFromContext reports the flag carried by the session
// token. It reflects the state at last login, not a live DB read.
func OnboardingCompleteFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	if v, ok := ctx.Value(ctxOnboarding).(bool); ok {
		return v
	}
	return false
}

// WithUserID seeds the authenticated principal, used by Auth and by tests.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

func WithOnboardingComplete(ctx context.Context, complete bool) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxOnboarding, complete)
}
