package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/mateovidal/catalogbase-backend/internal/catalogs"
	"github.com/mateovidal/catalogbase-backend/pkg/db"
	"github.com/mateovidal/catalogbase-backend/pkg/errors"
	"github.com/mateovidal/catalogbase-backend/pkg/logger"
	"github.com/mateovidal/catalogbase-backend/pkg/metrics"
	"gorm.io/gorm"
)

// Event types delivered by the payment provider.
const (
	EventPaymentSucceeded     = "payment.succeeded"
	EventPaymentFailed        = "payment.failed"
	EventSubscriptionActive   = "subscription.activated"
	EventSubscriptionCanceled = "subscription.canceled"
)

// Event is the provider's envelope; only the fields we consume are decoded.
type Event struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			CatalogID uuid.UUID `json:"catalog_id"`
		} `json:"object"`
	} `json:"data"`
}

// Service validates inbound payment webhooks and syncs the billing flag on
// the referenced catalog.
type Service struct {
	db      *db.Client
	secret  string
	logger  *logger.Logger
	metrics *metrics.AuthMetrics
}

type ServiceParams struct {
	DB      *db.Client
	Secret  string
	Logger  *logger.Logger
	Metrics *metrics.AuthMetrics
}

func NewService(params ServiceParams) *Service {
	return &Service{
		db:      params.DB,
		secret:  params.Secret,
		logger:  params.Logger,
		metrics: params.Metrics,
	}
}

// VerifySignature checks the hex HMAC-SHA256 of the raw body against the
// shared secret. Fails closed: a missing secret rejects everything.
func (s *Service) VerifySignature(body []byte, signature string) bool {
	if s.secret == "" {
		return false
	}
	signature = strings.TrimSpace(strings.TrimPrefix(signature, "sha256="))
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

// Process decodes and applies one event. Unknown event types are accepted
// silently so the provider stops redelivering them.
func (s *Service) Process(ctx context.Context, body []byte) error {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return errors.New(errors.CodeValidation, "malformed webhook payload")
	}

	var active bool
	switch event.Type {
	case EventPaymentSucceeded, EventSubscriptionActive:
		active = true
	case EventPaymentFailed, EventSubscriptionCanceled:
		active = false
	default:
		s.logger.Info(s.logger.WithField(ctx, "event_type", event.Type), "ignoring unknown webhook event")
		s.metrics.IncWebhookEvent(event.Type, "ignored")
		return nil
	}

	if event.Data.Object.CatalogID == uuid.Nil {
		s.metrics.IncWebhookEvent(event.Type, "invalid")
		return errors.New(errors.CodeValidation, "missing catalog_id")
	}

	repo := catalogs.NewRepository(s.db.DB())
	if _, err := repo.FindByID(ctx, event.Data.Object.CatalogID); err != nil {
		if err == gorm.ErrRecordNotFound {
			s.metrics.IncWebhookEvent(event.Type, "unknown_catalog")
			return errors.New(errors.CodeNotFound, "catalog not found")
		}
		return errors.Wrap(errors.CodeInternal, err, "loading catalog")
	}

	if err := repo.SetBillingActive(ctx, event.Data.Object.CatalogID, active); err != nil {
		s.metrics.IncWebhookEvent(event.Type, "error")
		return errors.Wrap(errors.CodeInternal, err, "updating billing flag")
	}

	s.logger.Info(s.logger.WithFields(ctx, map[string]any{
		"event_type":     event.Type,
		"catalog_id":     event.Data.Object.CatalogID,
		"billing_active": active,
	}), "billing flag synced from webhook")
	s.metrics.IncWebhookEvent(event.Type, "processed")
	return nil
}
