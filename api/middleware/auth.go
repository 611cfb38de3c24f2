package middleware

import (
	"net/http"
	"strings"

	"github.com/mateovidal/catalogbase-backend/api/responses"
	pkgauth "github.com/mateovidal/catalogbase-backend/pkg/auth"
	"github.com/mateovidal/catalogbase-backend/pkg/config"
	pkgerrors "github.com/mateovidal/catalogbase-backend/pkg/errors"
	"github.com/mateovidal/catalogbase-backend/pkg/logger"
)

// Auth validates the bearer session token and seeds the request context with
// the principal. Onboarding state rides the signed token; no DB read happens
// here.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseSessionToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithUserID(r.Context(), claims.UserID)
			ctx = WithOnboardingComplete(ctx, claims.OnboardingComplete)
			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
