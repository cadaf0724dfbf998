package payments

import (
	"context"
	"strings"

	pkgerrors "github.com/bookride/backend/pkg/errors"
)

// Intent is the client-facing slice of a created payment intent. Only the
// client secret leaves the server; the intent id stays internal.
type Intent struct {
	ClientSecret string
}

type ServiceParams struct {
	StripeClient IntentClient
}

type Service struct {
	stripe IntentClient
}

func NewService(params ServiceParams) (*Service, error) {
	if params.StripeClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe client required")
	}
	return &Service{stripe: params.StripeClient}, nil
}

// CreateIntent creates a provider payment intent for the given amount in the
// currency's minor units. Provider rejections surface as validation errors so
// the caller sees a 400, matching the contract for malformed charges.
func (s *Service) CreateIntent(ctx context.Context, amount int64, currency string) (*Intent, error) {
	if amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be a positive integer in minor units")
	}
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "currency is required")
	}

	intent, err := s.stripe.CreateIntent(ctx, amount, currency)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "create payment intent")
	}
	if intent == nil || intent.ClientSecret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment intent missing client secret")
	}

	return &Intent{ClientSecret: intent.ClientSecret}, nil
}
