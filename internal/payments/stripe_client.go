package payments

import (
	"context"

	pkgstripe "github.com/bookride/backend/pkg/stripe"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentintent"
)

// IntentClient creates payment intents with the provider.
type IntentClient interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (*stripe.PaymentIntent, error)
}

type intentClientWrapper struct{}

// NewIntentClient wraps the provided Stripe client so the payment service can be tested.
func NewIntentClient(api *pkgstripe.Client) IntentClient {
	if api == nil {
		return nil
	}
	return &intentClientWrapper{}
}

func (w *intentClientWrapper) CreateIntent(ctx context.Context, amount int64, currency string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	return paymentintent.New(params)
}
