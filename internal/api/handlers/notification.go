package handlers

import (
	"log/slog"
	"net/http"

	service "github.com/tireserve/platform/internal/services"
	"github.com/tireserve/platform/internal/utils/response"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) ListNotifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, size := pagination(r)

		notifications, err := h.notificationService.ListNotifications(r.Context(), page, size)
		if err != nil {
			slog.Error("Failed to list notifications", slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, map[string]any{
			"notifications": notifications,
			"total":         len(notifications),
			"page":          page,
			"pageSize":      size,
		})
	}
}
