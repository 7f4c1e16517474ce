package service

import (
	"context"
	"encoding/json"
	"log/slog"

	stripeSDK "github.com/stripe/stripe-go/v81"
	"github.com/tireserve/platform/internal/api/middleware"
	"github.com/tireserve/platform/internal/errors"
	"github.com/tireserve/platform/internal/models"
	stripeClient "github.com/tireserve/platform/pkg/stripe"
)

// WebhookService turns gateway callbacks into payment confirmations. An
// intent's metadata says which checkout shape produced it, so the event is
// routed to the matching confirmation path.
type WebhookService struct {
	gateway  stripeClient.Client
	checkout *CheckoutService
	requests *ServiceRequestService
}

func NewWebhookService(gateway stripeClient.Client, checkout *CheckoutService, requests *ServiceRequestService) *WebhookService {
	return &WebhookService{gateway: gateway, checkout: checkout, requests: requests}
}

func (s *WebhookService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (stripeSDK.Event, error) {
	logger := middleware.LoggerFromContext(ctx)

	event, err := s.gateway.VerifyWebhookSignature(payload, signature)
	if err != nil {
		return stripeSDK.Event{}, errors.UnauthorizedError("Invalid webhook signature").WithError(err)
	}

	if event.Type != "payment_intent.succeeded" {
		logger.Info("Ignoring webhook event", slog.String("type", string(event.Type)))
		return event, nil
	}

	var intent stripeSDK.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return event, errors.BadRequestError("Malformed webhook payload").WithError(err)
	}

	switch intent.Metadata[metadataKind] {
	case checkoutKindServiceRequest:
		_, err = s.requests.ConfirmPayment(ctx, intent.ID)
	case checkoutKindCart, checkoutKindBuyNow:
		_, err = s.checkout.ConfirmPayment(ctx, intent.ID)
	default:
		logger.Warn("Webhook intent has unknown checkout kind",
			slog.String("paymentIntentId", intent.ID),
			slog.String("kind", intent.Metadata[metadataKind]))

		return event, nil
	}

	if err != nil {
		return event, err
	}

	return event, nil
}

// PaymentConfirmation carries the outcome of a routed confirmation; exactly
// one field is set, matching the checkout shape that produced the intent.
type PaymentConfirmation struct {
	Order          *models.Order          `json:"order,omitempty"`
	ServiceRequest *models.ServiceRequest `json:"service_request,omitempty"`
}

// ConfirmIntent resolves an intent's checkout kind from the gateway and runs
// the matching confirmation path. Serves the client-driven confirm endpoint;
// webhook events carry the intent inline instead.
func (s *WebhookService) ConfirmIntent(ctx context.Context, paymentIntentID string) (*PaymentConfirmation, error) {
	intent, err := s.gateway.RetrievePaymentIntent(ctx, paymentIntentID)
	if err != nil {
		return nil, errors.ThirdPartyError("Failed to retrieve payment intent").WithError(err)
	}

	switch intent.Metadata[metadataKind] {
	case checkoutKindServiceRequest:
		sr, err := s.requests.ConfirmPayment(ctx, paymentIntentID)
		if err != nil {
			return nil, err
		}

		return &PaymentConfirmation{ServiceRequest: sr}, nil

	case checkoutKindCart, checkoutKindBuyNow:
		order, err := s.checkout.ConfirmPayment(ctx, paymentIntentID)
		if err != nil {
			return nil, err
		}

		return &PaymentConfirmation{Order: order}, nil

	default:
		return nil, errors.BadRequestError("Payment intent has no known checkout kind")
	}
}
