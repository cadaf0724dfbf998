package controllers

import (
	"net/http"

	"github.com/bookride/backend/api/responses"
	"github.com/bookride/backend/api/validators"
	"github.com/bookride/backend/internal/payments"
	"github.com/bookride/backend/pkg/logger"
	"github.com/bookride/backend/pkg/metrics"
)

type createIntentRequest struct {
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Currency string `json:"currency" validate:"required,len=3"`
}

type createIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// CreatePaymentIntent handles POST /api/v1/payments/intents. The amount is in
// the currency's minor units; only the client secret is returned to the app.
func CreatePaymentIntent(svc *payments.Service, logg *logger.Logger, m *metrics.PaymentMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req createIntentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			m.IncIntentFailure()
			responses.WriteError(ctx, logg, w, err)
			return
		}

		intent, err := svc.CreateIntent(ctx, req.Amount, req.Currency)
		if err != nil {
			m.IncIntentFailure()
			responses.WriteError(ctx, logg, w, err)
			return
		}

		m.IncIntentCreated()
		responses.WritePayload(w, http.StatusOK, createIntentResponse{ClientSecret: intent.ClientSecret})
	}
}
