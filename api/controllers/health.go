package controllers

import (
	"net/http"

	"github.com/mateovidal/catalogbase-backend/api/responses"
	"github.com/mateovidal/catalogbase-backend/pkg/config"
	"github.com/mateovidal/catalogbase-backend/pkg/db"
	pkgerrors "github.com/mateovidal/catalogbase-backend/pkg/errors"
	"github.com/mateovidal/catalogbase-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady verifies the datasources the process depends on. Redis is
// optional, so only the database gates readiness.
func HealthReady(dbc db.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if dbc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "database not configured"))
			return
		}
		if err := dbc.Ping(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
