package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics records counters for the payment surface.
type PaymentMetrics struct {
	webhookEvents  *prometheus.CounterVec
	intentsCreated prometheus.Counter
	intentFailures prometheus.Counter
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stripe_webhook_events_total",
		Help: "Stripe webhook events by type and outcome.",
	}, []string{"event_type", "outcome"})
	intentsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payment_intents_created_total",
		Help: "PaymentIntents created for the mobile client.",
	})
	intentFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payment_intent_failures_total",
		Help: "PaymentIntent creation attempts rejected by Stripe.",
	})
	reg.MustRegister(webhookEvents, intentsCreated, intentFailures)
	return &PaymentMetrics{
		webhookEvents:  webhookEvents,
		intentsCreated: intentsCreated,
		intentFailures: intentFailures,
	}
}

// IncWebhookEvent increments the webhook counter for the event type/outcome pair.
func (m *PaymentMetrics) IncWebhookEvent(eventType, outcome string) {
	if m == nil || m.webhookEvents == nil {
		return
	}
	m.webhookEvents.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}

// IncIntentCreated increments the created-intent counter.
func (m *PaymentMetrics) IncIntentCreated() {
	if m == nil || m.intentsCreated == nil {
		return
	}
	m.intentsCreated.Inc()
}

// IncIntentFailure increments the failed-intent counter.
func (m *PaymentMetrics) IncIntentFailure() {
	if m == nil || m.intentFailures == nil {
		return
	}
	m.intentFailures.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
