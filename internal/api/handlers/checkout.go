package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/tireserve/platform/internal/errors"
	"github.com/tireserve/platform/internal/models"
	service "github.com/tireserve/platform/internal/services"
	"github.com/tireserve/platform/internal/utils"
	"github.com/tireserve/platform/internal/utils/response"
)

type CheckoutHandler struct {
	checkoutService *service.CheckoutService
	webhookService  *service.WebhookService
	validator       *validator.Validate
}

func NewCheckoutHandler(checkoutService *service.CheckoutService, webhookService *service.WebhookService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		webhookService:  webhookService,
		validator:       validator.New(),
	}
}

func (h *CheckoutHandler) AddCartItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, appErr := actorFromRequest(r)
		if appErr != nil {
			response.Error(w, appErr)
			return
		}

		var req models.AddCartItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		item, err := h.checkoutService.AddCartItem(r.Context(), actor.ID, &req)
		if err != nil {
			slog.Error("Failed to add cart item",
				slog.String("userId", actor.ID.String()),
				slog.String("partId", req.PartID.String()),
				slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, item)
	}
}

func (h *CheckoutHandler) UpdateCartQuantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, appErr := actorFromRequest(r)
		if appErr != nil {
			response.Error(w, appErr)
			return
		}

		var req models.UpdateCartQuantityRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		if err := h.checkoutService.UpdateCartQuantity(r.Context(), actor.ID, &req); err != nil {
			slog.Error("Failed to update cart quantity",
				slog.String("userId", actor.ID.String()),
				slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, map[string]bool{"updated": true})
	}
}

func (h *CheckoutHandler) ListCartItems() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, appErr := actorFromRequest(r)
		if appErr != nil {
			response.Error(w, appErr)
			return
		}

		items, err := h.checkoutService.ListCartItems(r.Context(), actor.ID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, map[string]any{
			"items": items,
			"total": len(items),
		})
	}
}

func (h *CheckoutHandler) CheckoutCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, appErr := actorFromRequest(r)
		if appErr != nil {
			response.Error(w, appErr)
			return
		}

		intent, err := h.checkoutService.CheckoutCart(r.Context(), actor.ID)
		if err != nil {
			slog.Error("Failed to checkout cart",
				slog.String("userId", actor.ID.String()),
				slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		slog.Info("Cart checkout initiated",
			slog.String("userId", actor.ID.String()),
			slog.String("paymentIntentId", intent.PaymentIntentID))
		response.Success(w, http.StatusOK, intent)
	}
}

func (h *CheckoutHandler) BuyNow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, appErr := actorFromRequest(r)
		if appErr != nil {
			response.Error(w, appErr)
			return
		}

		var req models.BuyNowRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		intent, err := h.checkoutService.BuyNow(r.Context(), actor.ID, req.PartID, req.Quantity)
		if err != nil {
			slog.Error("Failed to initiate buy-now checkout",
				slog.String("userId", actor.ID.String()),
				slog.String("partId", req.PartID.String()),
				slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, intent)
	}
}

// ConfirmPayment lets a client confirm synchronously instead of waiting for
// the gateway webhook. The intent's metadata decides whether an order or a
// service request is confirmed; both paths converge on the same idempotent
// service calls the webhook uses.
func (h *CheckoutHandler) ConfirmPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.ConfirmPaymentRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		result, err := h.webhookService.ConfirmIntent(r.Context(), req.PaymentIntentID)
		if err != nil {
			slog.Error("Failed to confirm payment",
				slog.String("paymentIntentId", req.PaymentIntentID),
				slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		slog.Info("Payment confirmed", slog.String("paymentIntentId", req.PaymentIntentID))
		response.Success(w, http.StatusOK, result)
	}
}

func (h *CheckoutHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, appErr := pathUUID(r, "id")
		if appErr != nil {
			response.Error(w, appErr)
			return
		}

		order, err := h.checkoutService.GetOrder(r.Context(), id)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, order)
	}
}

func (h *CheckoutHandler) HandleStripeWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(r.Body)
		if err != nil {
			slog.Error("Error reading webhook body", slog.String("error", err.Error()))
			response.Error(w, errors.BadRequestError("Failed to read request body"))

			return
		}

		signature := r.Header.Get("Stripe-Signature")
		if signature == "" {
			slog.Error("Missing Stripe signature")
			response.Error(w, errors.BadRequestError("Stripe Signature is required"))

			return
		}

		event, err := h.webhookService.ProcessWebhook(r.Context(), payload, signature)
		if err != nil {
			slog.Error("Failed to process payment webhook",
				slog.String("eventId", event.ID),
				slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		slog.Info("Payment webhook processed", slog.String("eventId", event.ID))
		response.Success(w, http.StatusOK, map[string]bool{"success": true})
	}
}
