package webhooks

import (
	"io"
	"net/http"

	"github.com/bookride/backend/api/responses"
	stripewebhook "github.com/bookride/backend/internal/webhooks/stripe"
	pkgerrors "github.com/bookride/backend/pkg/errors"
	"github.com/bookride/backend/pkg/logger"
	"github.com/bookride/backend/pkg/metrics"
	"github.com/stripe/stripe-go/v84/webhook"
)

// Stripe caps event payloads well below this; anything larger is not ours.
const maxWebhookBody = 1 << 20

const (
	outcomeIgnored   = "ignored"
	outcomeDuplicate = "duplicate"
	outcomeError     = "error"
)

type stripeAck struct {
	Received  bool                  `json:"received"`
	Duplicate bool                  `json:"duplicate,omitempty"`
	Result    *stripewebhook.Result `json:"result,omitempty"`
}

// HandleStripeEvent handles POST /api/v1/webhooks/stripe. Signature
// verification runs against the raw body before any JSON decoding; a bad or
// missing signature is a 400 so Stripe marks the delivery failed.
func HandleStripeEvent(
	svc *stripewebhook.Service,
	guard *stripewebhook.IdempotencyGuard,
	signingSecret string,
	logg *logger.Logger,
	m *metrics.PaymentMetrics,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read webhook body"))
			return
		}

		sigHeader := r.Header.Get("Stripe-Signature")
		if sigHeader == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "missing stripe signature"))
			return
		}

		event, err := webhook.ConstructEvent(payload, sigHeader, signingSecret)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stripe signature"))
			return
		}

		ctx = logg.WithEventID(ctx, event.ID)

		if !stripewebhook.Handles(event.Type) {
			m.IncWebhookEvent(string(event.Type), outcomeIgnored)
			responses.WritePayload(w, http.StatusOK, stripeAck{Received: true})
			return
		}

		// Fast-path dedupe. A Redis outage falls through to the durable
		// unique index rather than dropping deliveries.
		marked := false
		if guard != nil {
			alreadyProcessed, guardErr := guard.CheckAndMark(ctx, event.ID)
			switch {
			case guardErr != nil:
				logg.Warn(logg.WithField(ctx, "error", guardErr.Error()), "webhook.idempotency_guard_unavailable")
			case alreadyProcessed:
				m.IncWebhookEvent(string(event.Type), outcomeDuplicate)
				responses.WritePayload(w, http.StatusOK, stripeAck{Received: true, Duplicate: true})
				return
			default:
				marked = true
			}
		}

		outcome, err := svc.Process(ctx, &event)
		if err != nil {
			if marked {
				// Release the mark so Stripe's retry can reprocess.
				if delErr := guard.Delete(ctx, event.ID); delErr != nil {
					logg.Warn(logg.WithField(ctx, "error", delErr.Error()), "webhook.idempotency_release_failed")
				}
			}
			m.IncWebhookEvent(string(event.Type), outcomeError)
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if outcome.Duplicate {
			m.IncWebhookEvent(string(event.Type), outcomeDuplicate)
			responses.WritePayload(w, http.StatusOK, stripeAck{Received: true, Duplicate: true})
			return
		}

		m.IncWebhookEvent(string(event.Type), outcome.Result.Action)
		logg.Info(logg.WithField(ctx, "action", outcome.Result.Action), "webhook.processed")
		responses.WritePayload(w, http.StatusOK, stripeAck{Received: true, Result: outcome.Result})
	}
}
