package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/doctors-portal/api/internal/config"
)

// StripeProvider creates card payment intents against the Stripe API. The
// returned client secret is handed to the browser to complete the charge.
type StripeProvider struct {
	api      *client.API
	currency string
}

func NewStripeProvider(cfg config.StripeConfig) *StripeProvider {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &StripeProvider{api: api, currency: cfg.Currency}
}

func (p *StripeProvider) CreateIntent(ctx context.Context, amount int64, bookingID string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(p.currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	params.AddMetadata("booking_id", bookingID)

	intent, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("creating payment intent: %w", err)
	}

	return intent.ClientSecret, nil
}
