package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mateovidal/catalogbase-backend/api/middleware"
	"github.com/mateovidal/catalogbase-backend/api/responses"
	"github.com/mateovidal/catalogbase-backend/api/validators"
	"github.com/mateovidal/catalogbase-backend/internal/catalogs"
	"github.com/mateovidal/catalogbase-backend/internal/categories"
	pkgerrors "github.com/mateovidal/catalogbase-backend/pkg/errors"
	"github.com/mateovidal/catalogbase-backend/pkg/logger"
)

// resolveCatalogID maps the authenticated principal to their catalog,
// creating it lazily on first use.
func resolveCatalogID(ctx context.Context, resolver *catalogs.Service) (uuid.UUID, error) {
	userID := middleware.UserIDFromContext(ctx)
	if userID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	catalog, err := resolver.ResolveByUserID(ctx, userID)
	if err != nil {
		return uuid.Nil, err
	}
	return catalog.ID, nil
}

func ListCategories(svc *categories.Service, resolver *catalogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catalogID, err := resolveCatalogID(r.Context(), resolver)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), catalogID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func CreateCategory(svc *categories.Service, resolver *catalogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catalogID, err := resolveCatalogID(r.Context(), resolver)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req categories.CreateCategoryRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), catalogID, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func UpdateCategory(svc *categories.Service, resolver *catalogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catalogID, err := resolveCatalogID(r.Context(), resolver)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		categoryID, err := validators.ParseUUIDParam(chi.URLParam(r, "categoryId"), "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req categories.UpdateCategoryRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), catalogID, categoryID, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func DeleteCategory(svc *categories.Service, resolver *catalogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catalogID, err := resolveCatalogID(r.Context(), resolver)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		categoryID, err := validators.ParseUUIDParam(chi.URLParam(r, "categoryId"), "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), catalogID, categoryID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "category deleted"})
	}
}
