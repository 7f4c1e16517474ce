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

type QuotationHandler struct {
	quotationService *service.QuotationService
	validator        *validator.Validate
}

func NewQuotationHandler(quotationService *service.QuotationService) *QuotationHandler {
	return &QuotationHandler{quotationService: quotationService, validator: validator.New()}
}

func (h *QuotationHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateQuotationRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		quotation, err := h.quotationService.Create(r.Context(), &req)
		if err != nil {
			slog.Error("Failed to create quotation",
				slog.String("serviceRequestId", req.ServiceRequestID.String()),
				slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		slog.Info("Quotation created",
			slog.String("quotationNumber", quotation.QuotationNumber),
			slog.String("serviceRequestId", req.ServiceRequestID.String()))
		response.Success(w, http.StatusCreated, quotation)
	}
}

func (h *QuotationHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, appErr := pathUUID(r, "id")
		if appErr != nil {
			response.Error(w, appErr)
			return
		}

		quotation, err := h.quotationService.Get(r.Context(), id)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, quotation)
	}
}

func (h *QuotationHandler) Send() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, appErr := pathUUID(r, "id")
		if appErr != nil {
			response.Error(w, appErr)
			return
		}

		quotation, err := h.quotationService.Send(r.Context(), id)
		if err != nil {
			slog.Error("Failed to send quotation",
				slog.String("quotationId", id.String()),
				slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		slog.Info("Quotation sent", slog.String("quotationNumber", quotation.QuotationNumber))
		response.Success(w, http.StatusOK, quotation)
	}
}

func (h *QuotationHandler) UpdateCosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, appErr := pathUUID(r, "id")
		if appErr != nil {
			response.Error(w, appErr)
			return
		}

		var req struct {
			LaborCost int64 `json:"labor_cost" validate:"gte=0"`
			PartsCost int64 `json:"parts_cost" validate:"gte=0"`
		}
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		quotation, err := h.quotationService.UpdateCosts(r.Context(), id, req.LaborCost, req.PartsCost)
		if err != nil {
			slog.Error("Failed to update quotation costs",
				slog.String("quotationId", id.String()),
				slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, quotation)
	}
}

func (h *QuotationHandler) Accept() http.HandlerFunc {
	return h.decision("accept", h.quotationService.Accept)
}

func (h *QuotationHandler) Reject() http.HandlerFunc {
	return h.decision("reject", h.quotationService.Reject)
}

func (h *QuotationHandler) decision(name string, fn func(ctx context.Context, id uuid.UUID) (*models.Quotation, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, appErr := pathUUID(r, "id")
		if appErr != nil {
			response.Error(w, appErr)
			return
		}

		quotation, err := fn(r.Context(), id)
		if err != nil {
			slog.Error("Quotation decision failed",
				slog.String("decision", name),
				slog.String("quotationId", id.String()),
				slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		slog.Info("Quotation decision recorded",
			slog.String("decision", name),
			slog.String("quotationId", id.String()),
			slog.String("status", string(quotation.Status)))
		response.Success(w, http.StatusOK, quotation)
	}
}
