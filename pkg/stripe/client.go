package stripe

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/webhook"
)

type Event = stripe.Event

// Client is the payment gateway boundary the core consumes: create an
// intent, read its status back. Amounts are integer minor units, matching
// the gateway's own convention.
type Client interface {
	CreatePaymentIntent(ctx context.Context, amount int64, currency, description string, metadata map[string]string) (*stripe.PaymentIntent, error)
	RetrievePaymentIntent(ctx context.Context, paymentIntentID string) (*stripe.PaymentIntent, error)
	VerifyWebhookSignature(payload []byte, signature string) (Event, error)
}

type stripeClient struct {
	webhookSecret string
}

func NewStripeClient(apiKey string, webhookSecret string) Client {
	stripe.Key = apiKey

	return &stripeClient{webhookSecret: webhookSecret}
}

func (s *stripeClient) CreatePaymentIntent(ctx context.Context, amount int64, currency, description string, metadata map[string]string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Params:      stripe.Params{Context: ctx, Metadata: metadata},
		Amount:      stripe.Int64(amount),
		Currency:    stripe.String(currency),
		Description: stripe.String(description),
	}

	return paymentintent.New(params)
}

func (s *stripeClient) RetrievePaymentIntent(ctx context.Context, paymentIntentID string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
	}

	return paymentintent.Get(paymentIntentID, params)
}

func (s *stripeClient) VerifyWebhookSignature(payload []byte, signature string) (Event, error) {
	if s.webhookSecret == "" {
		return Event{}, errors.New("webhook secret not configured")
	}

	return webhook.ConstructEvent(payload, signature, s.webhookSecret)
}
