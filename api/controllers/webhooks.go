package controllers

import (
	"io"
	"net/http"

	"github.com/mateovidal/catalogbase-backend/api/responses"
	"github.com/mateovidal/catalogbase-backend/internal/webhooks/payments"
	pkgerrors "github.com/mateovidal/catalogbase-backend/pkg/errors"
	"github.com/mateovidal/catalogbase-backend/pkg/logger"
)

const webhookSignatureHeader = "X-Signature"

// PaymentsWebhook verifies the provider signature over the raw body before
// any decoding. Signature failures are 400s so a broken secret surfaces in
// the provider's delivery logs instead of silently flipping billing flags.
func PaymentsWebhook(svc *payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unreadable body"))
			return
		}

		if !svc.VerifySignature(body, r.Header.Get(webhookSignatureHeader)) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid signature"))
			return
		}

		if err := svc.Process(r.Context(), body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "received"})
	}
}
