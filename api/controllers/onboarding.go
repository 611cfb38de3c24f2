package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mateovidal/catalogbase-backend/api/middleware"
	"github.com/mateovidal/catalogbase-backend/api/responses"
	"github.com/mateovidal/catalogbase-backend/api/validators"
	"github.com/mateovidal/catalogbase-backend/internal/onboarding"
	pkgerrors "github.com/mateovidal/catalogbase-backend/pkg/errors"
	"github.com/mateovidal/catalogbase-backend/pkg/logger"
)

// Onboard materializes the caller's catalog with its first categories and
// seed product in one transaction.
func Onboard(svc *onboarding.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		var req onboarding.OnboardRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Onboard(r.Context(), userID, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, resp)
	}
}
