package stripewebhook

import (
	"context"

	pkgstripe "github.com/bookride/backend/pkg/stripe"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/charge"
)

// StripeChargeClient exposes the single Stripe lookup the dispute handler needs.
type StripeChargeClient interface {
	GetCharge(ctx context.Context, id string) (*stripe.Charge, error)
}

type stripeClientWrapper struct{}

// NewStripeClient wraps the provided Stripe client so the webhook service can be tested.
func NewStripeClient(api *pkgstripe.Client) StripeChargeClient {
	if api == nil {
		return nil
	}
	return &stripeClientWrapper{}
}

func (w *stripeClientWrapper) GetCharge(ctx context.Context, id string) (*stripe.Charge, error) {
	params := &stripe.ChargeParams{}
	params.Context = ctx
	return charge.Get(id, params)
}
