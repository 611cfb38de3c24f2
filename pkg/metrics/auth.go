package metrics

import "github.com/prometheus/client_golang/prometheus"

// AuthMetrics tracks throttling and webhook outcomes on the API surface.
type AuthMetrics struct {
	rateLimited   *prometheus.CounterVec
	webhookEvents *prometheus.CounterVec
}

// NewAuthMetrics registers the API counters on the provided registerer.
func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	if reg == nil {
		return &AuthMetrics{}
	}
	rateLimited := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_rate_limited_total",
		Help: "Requests rejected by the auth rate limiter.",
	}, []string{"action"})
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhook_events_total",
		Help: "Payment webhook events by type and outcome.",
	}, []string{"type", "outcome"})
	reg.MustRegister(rateLimited, webhookEvents)
	return &AuthMetrics{rateLimited: rateLimited, webhookEvents: webhookEvents}
}

// IncRateLimited increments the denial counter for the named action.
func (m *AuthMetrics) IncRateLimited(action string) {
	if m == nil || m.rateLimited == nil {
		return
	}
	m.rateLimited.WithLabelValues(normalizeLabel(action)).Inc()
}

// IncWebhookEvent counts one processed webhook event.
func (m *AuthMetrics) IncWebhookEvent(eventType, outcome string) {
	if m == nil || m.webhookEvents == nil {
		return
	}
	m.webhookEvents.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
