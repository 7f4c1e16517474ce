package handlers

import (
	"net/http"

	service "github.com/tireserve/platform/internal/services"
	"github.com/tireserve/platform/internal/utils/response"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
}

func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) GetPart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, appErr := pathUUID(r, "id")
		if appErr != nil {
			response.Error(w, appErr)
			return
		}

		part, err := h.catalogService.GetPart(r.Context(), id)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, part)
	}
}
