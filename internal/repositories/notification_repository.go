package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/tireserve/platform/internal/models"
	"github.com/tireserve/platform/internal/utils"
)

type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	UpdateNotificationStatus(ctx context.Context, id uuid.UUID, status models.NotificationStatus, errorMessage string) error
	ListNotifications(ctx context.Context, page, size int) ([]*models.Notification, error)
}

type notificationRepository struct {
	DB *sql.DB
}

func NewNotificationRepo(db *sql.DB) NotificationRepository {
	return &notificationRepository{DB: db}
}

func (r *notificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO notifications (id, kind, recipient, subject, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	return r.DB.QueryRowContext(dbCtx, query, n.ID, n.Kind, n.Recipient, n.Subject, n.Payload, n.Status).Scan(&n.CreatedAt, &n.UpdatedAt)
}

func (r *notificationRepository) UpdateNotificationStatus(ctx context.Context, id uuid.UUID, status models.NotificationStatus, errorMessage string) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `
		UPDATE notifications
		SET status = $2, error_message = $3, updated_at = NOW()
		WHERE id = $1
	`, id, status, errorMessage)
	if err != nil {
		return fmt.Errorf("failed to update notification status: %w", err)
	}

	return requireRowAffected(result)
}

func (r *notificationRepository) ListNotifications(ctx context.Context, page, size int) ([]*models.Notification, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	offset := (page - 1) * size

	query := `
		SELECT id, kind, recipient, subject, payload, status, COALESCE(error_message, ''), created_at, updated_at
		FROM notifications
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.DB.QueryContext(dbCtx, query, size, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	defer rows.Close()

	var notifications []*models.Notification

	for rows.Next() {
		n := &models.Notification{}

		err := rows.Scan(&n.ID, &n.Kind, &n.Recipient, &n.Subject, &n.Payload, &n.Status, &n.ErrorMessage, &n.CreatedAt, &n.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}

		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return notifications, nil
}
