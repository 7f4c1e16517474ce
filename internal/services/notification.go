package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tireserve/platform/internal/api/middleware"
	"github.com/tireserve/platform/internal/models"
	repository "github.com/tireserve/platform/internal/repositories"
	"github.com/tireserve/platform/pkg/sendGrid"
)

// Dispatcher consumes the events emitted by state transitions. It is a side
// channel: it never returns an error and never participates in the business
// transaction that produced the events.
type Dispatcher interface {
	Dispatch(ctx context.Context, events []models.Event)
}

type NotificationService interface {
	Dispatcher
	ListNotifications(ctx context.Context, page, size int) ([]*models.Notification, error)
}

type notificationService struct {
	repo         repository.NotificationRepository
	emailService sendGrid.EmailService
}

func NewNotificationService(repo repository.NotificationRepository, emailService sendGrid.EmailService) NotificationService {
	return &notificationService{repo: repo, emailService: emailService}
}

// Dispatch records and delivers each event best-effort. Failures are logged
// and swallowed; a committed business transaction is never rolled back over
// a notification.
func (n *notificationService) Dispatch(ctx context.Context, events []models.Event) {
	logger := middleware.LoggerFromContext(ctx)

	for _, event := range events {
		if event.Recipient == "" {
			logger.Warn("Skipping notification without recipient", slog.String("kind", string(event.Kind)))

			continue
		}

		var payloadJSON json.RawMessage

		if event.Payload != nil {
			payloadBytes, err := json.Marshal(event.Payload)
			if err != nil {
				logger.Error("Failed to marshal notification payload", slog.String("kind", string(event.Kind)), slog.String("error", err.Error()))

				continue
			}

			payloadJSON = payloadBytes
		}

		notification := &models.Notification{
			ID:        uuid.New(),
			Kind:      event.Kind,
			Recipient: event.Recipient,
			Subject:   event.Subject,
			Payload:   payloadJSON,
			Status:    models.NotificationStatusPending,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		if err := n.repo.CreateNotification(ctx, notification); err != nil {
			logger.Error("Failed to record notification", slog.String("kind", string(event.Kind)), slog.String("error", err.Error()))

			continue
		}

		if err := n.emailService.Send(ctx, event.Recipient, event.Subject, renderEventBody(event)); err != nil {
			logger.Error("Failed to send notification email", slog.String("kind", string(event.Kind)), slog.String("error", err.Error()))

			if updateErr := n.repo.UpdateNotificationStatus(ctx, notification.ID, models.NotificationStatusFailed, err.Error()); updateErr != nil {
				logger.Error("Failed to update notification status", slog.String("error", updateErr.Error()))
			}

			continue
		}

		if err := n.repo.UpdateNotificationStatus(ctx, notification.ID, models.NotificationStatusSent, ""); err != nil {
			logger.Error("Failed to update notification status", slog.String("error", err.Error()))
		}
	}
}

func (n *notificationService) ListNotifications(ctx context.Context, page, size int) ([]*models.Notification, error) {
	if page < 1 {
		page = 1
	}

	if size < 1 || size > 50 {
		size = 10
	}

	return n.repo.ListNotifications(ctx, page, size)
}

func renderEventBody(event models.Event) string {
	if len(event.Payload) == 0 {
		return event.Subject
	}

	body, err := json.MarshalIndent(event.Payload, "", "  ")
	if err != nil {
		return event.Subject
	}

	return string(body)
}

// dispatchAsync hands events to the dispatcher on a detached context, after
// the triggering transaction has committed.
func dispatchAsync(ctx context.Context, dispatcher Dispatcher, events []models.Event) {
	if dispatcher == nil || len(events) == 0 {
		return
	}

	go dispatcher.Dispatch(context.WithoutCancel(ctx), events)
}
