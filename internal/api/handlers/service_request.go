package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/tireserve/platform/internal/models"
	service "github.com/tireserve/platform/internal/services"
	"github.com/tireserve/platform/internal/utils"
	"github.com/tireserve/platform/internal/utils/response"
)

type ServiceRequestHandler struct {
	requestService *service.ServiceRequestService
	validator      *validator.Validate
}

func NewServiceRequestHandler(requestService *service.ServiceRequestService) *ServiceRequestHandler {
	return &ServiceRequestHandler{requestService: requestService, validator: validator.New()}
}

func (h *ServiceRequestHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, appErr := actorFromRequest(r)
		if appErr != nil {
			response.Error(w, appErr)
			return
		}

		var req models.CreateServiceRequestRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		sr, err := h.requestService.Create(r.Context(), actor, &req)
		if err != nil {
			slog.Error("Failed to create service request",
				slog.String("userId", actor.ID.String()),
				slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		slog.Info("Service request created",
			slog.String("requestNumber", sr.RequestNumber),
			slog.String("userId", actor.ID.String()))
		response.Success(w, http.StatusCreated, sr)
	}
}

func (h *ServiceRequestHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, appErr := pathUUID(r, "id")
		if appErr != nil {
			response.Error(w, appErr)
			return
		}

		sr, err := h.requestService.Get(r.Context(), id)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, sr)
	}
}

func (h *ServiceRequestHandler) Accept() http.HandlerFunc {
	return h.transition("accept", h.requestService.Accept)
}

func (h *ServiceRequestHandler) Complete() http.HandlerFunc {
	return h.transition("complete", h.requestService.Complete)
}

func (h *ServiceRequestHandler) Reject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, appErr := actorFromRequest(r)
		if appErr != nil {
			response.Error(w, appErr)
			return
		}

		id, appErr := pathUUID(r, "id")
		if appErr != nil {
			response.Error(w, appErr)
			return
		}

		var req models.RejectServiceRequestRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		sr, err := h.requestService.Reject(r.Context(), actor, id, req.Reason)
		if err != nil {
			slog.Error("Failed to reject service request",
				slog.String("requestId", id.String()),
				slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, sr)
	}
}

func (h *ServiceRequestHandler) Pay() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, appErr := actorFromRequest(r)
		if appErr != nil {
			response.Error(w, appErr)
			return
		}

		id, appErr := pathUUID(r, "id")
		if appErr != nil {
			response.Error(w, appErr)
			return
		}

		intent, err := h.requestService.Pay(r.Context(), actor, id)
		if err != nil {
			slog.Error("Failed to initiate service payment",
				slog.String("requestId", id.String()),
				slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		slog.Info("Service payment initiated",
			slog.String("requestId", id.String()),
			slog.String("paymentIntentId", intent.PaymentIntentID))
		response.Success(w, http.StatusOK, intent)
	}
}

func (h *ServiceRequestHandler) AttachParts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, appErr := actorFromRequest(r)
		if appErr != nil {
			response.Error(w, appErr)
			return
		}

		id, appErr := pathUUID(r, "id")
		if appErr != nil {
			response.Error(w, appErr)
			return
		}

		var req struct {
			Parts []models.ServicePartInput `json:"parts" validate:"required,min=1,dive"`
		}
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		sr, err := h.requestService.AttachParts(r.Context(), actor, id, req.Parts)
		if err != nil {
			slog.Error("Failed to attach parts to service request",
				slog.String("requestId", id.String()),
				slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, sr)
	}
}

type transitionFunc func(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.ServiceRequest, error)

func (h *ServiceRequestHandler) transition(name string, fn transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, appErr := actorFromRequest(r)
		if appErr != nil {
			response.Error(w, appErr)
			return
		}

		id, appErr := pathUUID(r, "id")
		if appErr != nil {
			response.Error(w, appErr)
			return
		}

		sr, err := fn(r.Context(), actor, id)
		if err != nil {
			slog.Error("Service request transition failed",
				slog.String("transition", name),
				slog.String("requestId", id.String()),
				slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		slog.Info("Service request transitioned",
			slog.String("transition", name),
			slog.String("requestId", id.String()),
			slog.String("status", string(sr.Status)))
		response.Success(w, http.StatusOK, sr)
	}
}
