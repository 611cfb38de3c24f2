package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/mateovidal/catalogbase-backend/pkg/errors"
)

type samplePayload struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,min=1,max=10"`
	Code  string `json:"code,omitempty" validate:"omitempty,len=6,numeric"`
}

func requestWithBody(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	var dest samplePayload
	err := DecodeJSONBody(requestWithBody(`{"email":"zoe@example.com","name":"Zoe"}`), &dest)
	require.NoError(t, err)
	require.Equal(t, "zoe@example.com", dest.Email)
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	var dest samplePayload
	err := DecodeJSONBody(requestWithBody(`{"email":"zoe@example.com","name":"Zoe","extra":true}`), &dest)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestDecodeJSONBodyReportsFieldMessages(t *testing.T) {
	var dest samplePayload
	err := DecodeJSONBody(requestWithBody(`{"email":"not-an-email","name":"","code":"12ab"}`), &dest)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)

	details, ok := typed.Details().(map[string]string)
	require.True(t, ok, "details should map field names to messages")
	require.Equal(t, "must be a valid email", details["email"])
	require.Equal(t, "is required", details["name"])
	require.Contains(t, details, "code")
}

func TestPaginationFromQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?cursor=abc&limit=10", nil)
	params, err := PaginationFromQuery(req)
	require.NoError(t, err)
	require.Equal(t, "abc", params.Cursor)
	require.Equal(t, 10, params.Limit)

	req = httptest.NewRequest(http.MethodGet, "/?limit=-3", nil)
	_, err = PaginationFromQuery(req)
	require.Error(t, err)
}

func TestParseUUIDParam(t *testing.T) {
	_, err := ParseUUIDParam("not-a-uuid", "productId")
	require.Error(t, err)

	id, err := ParseUUIDParam("5e3a7b1c-9f2d-4c1e-8a6b-123456789abc", "productId")
	require.NoError(t, err)
	require.NotEqual(t, "00000000-0000-0000-0000-000000000000", id.String())
}
