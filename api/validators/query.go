package validators

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	pkgerrors "github.com/mateovidal/catalogbase-backend/pkg/errors"
	"github.com/mateovidal/catalogbase-backend/pkg/pagination"
)

// PaginationFromQuery extracts cursor pagination parameters from the request
// query string.
func PaginationFromQuery(r *http.Request) (pagination.Params, error) {
	params := pagination.Params{
		Cursor: r.URL.Query().Get("cursor"),
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return params, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a non-negative integer")
		}
		params.Limit = limit
	}
	return params, nil
}

// ParseUUIDParam parses a URL path parameter into a UUID.
func ParseUUIDParam(value, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, name+" must be a valid UUID")
	}
	return id, nil
}
