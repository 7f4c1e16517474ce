package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/tireserve/platform/internal/models"
	"github.com/tireserve/platform/internal/utils"
)

type ServiceRequestRepository interface {
	CreateServiceRequestTx(ctx context.Context, tx *sql.Tx, sr *models.ServiceRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error)
	GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.ServiceRequest, error)
	MarkAccepted(ctx context.Context, id uuid.UUID) (bool, error)
	MarkRejected(ctx context.Context, id uuid.UUID, reason string) (bool, error)
	MarkPaid(ctx context.Context, id uuid.UUID) (bool, error)
	MarkCompleted(ctx context.Context, id uuid.UUID) (bool, error)
	SetPaymentIntent(ctx context.Context, id uuid.UUID, paymentIntentID string) error
	UpdateCostsTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, laborCost, partsCost, totalCost int64) error
	AttachPartsTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, parts []models.ServiceRequestPart) error
	ListPartsTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) ([]models.ServiceRequestPart, error)
}

type serviceRequestRepository struct {
	DB *sql.DB
}

func NewServiceRequestRepo(db *sql.DB) ServiceRequestRepository {
	return &serviceRequestRepository{DB: db}
}

// CreateServiceRequestTx inserts the request and its part lines on the
// caller's transaction, so a failing part insert rolls the request back too.
func (r *serviceRequestRepository) CreateServiceRequestTx(ctx context.Context, tx *sql.Tx, sr *models.ServiceRequest) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO service_requests
			(id, request_number, user_id, mechanic_id, description, status, payment_status, labor_cost, parts_cost, total_cost, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := tx.QueryRowContext(dbCtx, query,
		sr.ID, sr.RequestNumber, sr.UserID, sr.MechanicID, sr.Description,
		sr.Status, sr.PaymentStatus, sr.LaborCost, sr.PartsCost, sr.TotalCost,
	).Scan(&sr.CreatedAt, &sr.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert service request: %w", err)
	}

	if len(sr.Parts) > 0 {
		if err := r.AttachPartsTx(ctx, tx, sr.ID, sr.Parts); err != nil {
			return err
		}
	}

	return nil
}

func (r *serviceRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error) {
	return r.getServiceRequest(ctx, `WHERE id = $1`, id)
}

func (r *serviceRequestRepository) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.ServiceRequest, error) {
	return r.getServiceRequest(ctx, `WHERE payment_intent_id = $1`, paymentIntentID)
}

func (r *serviceRequestRepository) getServiceRequest(ctx context.Context, where string, arg any) (*models.ServiceRequest, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	sr := &models.ServiceRequest{}

	query := `
		SELECT id, request_number, user_id, mechanic_id, description, status, payment_status,
		       COALESCE(payment_intent_id, ''), labor_cost, parts_cost, total_cost,
		       COALESCE(rejection_reason, ''), accepted_at, started_at, completed_at, paid_at,
		       created_at, updated_at
		FROM service_requests
	` + where

	err := r.DB.QueryRowContext(dbCtx, query, arg).Scan(
		&sr.ID, &sr.RequestNumber, &sr.UserID, &sr.MechanicID, &sr.Description,
		&sr.Status, &sr.PaymentStatus, &sr.PaymentIntentID,
		&sr.LaborCost, &sr.PartsCost, &sr.TotalCost, &sr.RejectionReason,
		&sr.AcceptedAt, &sr.StartedAt, &sr.CompletedAt, &sr.PaidAt,
		&sr.CreatedAt, &sr.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("failed to get service request: %w", err)
	}

	rows, err := r.DB.QueryContext(dbCtx, listPartsQuery, sr.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get service request parts: %w", err)
	}

	defer rows.Close()

	parts, err := scanServiceParts(rows, sr.ID)
	if err != nil {
		return nil, err
	}

	sr.Parts = parts

	return sr, nil
}

const listPartsQuery = `
	SELECT id, part_id, part_name, quantity, unit_price, subtotal, status, created_at
	FROM service_request_parts
	WHERE service_request_id = $1
`

func scanServiceParts(rows *sql.Rows, serviceRequestID uuid.UUID) ([]models.ServiceRequestPart, error) {
	var parts []models.ServiceRequestPart

	for rows.Next() {
		var part models.ServiceRequestPart

		err := rows.Scan(&part.ID, &part.PartID, &part.PartName, &part.Quantity, &part.UnitPrice, &part.Subtotal, &part.Status, &part.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service request part: %w", err)
		}

		part.ServiceRequestID = serviceRequestID

		parts = append(parts, part)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return parts, nil
}

// ListPartsTx reads the stored part lines through the caller's transaction,
// so a recompute sees its own uncommitted upserts.
func (r *serviceRequestRepository) ListPartsTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) ([]models.ServiceRequestPart, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	rows, err := tx.QueryContext(dbCtx, listPartsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get service request parts: %w", err)
	}

	defer rows.Close()

	return scanServiceParts(rows, id)
}

// The Mark* methods key the update on the current status, so a transition
// either applies in full or touches nothing. The boolean reports whether a
// row matched.

func (r *serviceRequestRepository) MarkAccepted(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE service_requests
		SET status = $2, accepted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = $3
	`

	return r.execTransition(ctx, query, id, models.ServiceStatusAccepted, models.ServiceStatusMechanicAssigned)
}

func (r *serviceRequestRepository) MarkRejected(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE service_requests
		SET status = $2, mechanic_id = NULL, rejection_reason = $4, updated_at = NOW()
		WHERE id = $1 AND status = $3
	`

	result, err := r.DB.ExecContext(dbCtx, query, id, models.ServiceStatusRejected, models.ServiceStatusMechanicAssigned, reason)
	if err != nil {
		return false, fmt.Errorf("failed to update service request status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected > 0, nil
}

func (r *serviceRequestRepository) MarkPaid(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE service_requests
		SET status = $2, payment_status = 'paid', paid_at = NOW(), started_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = $3 AND payment_status = 'pending'
	`

	return r.execTransition(ctx, query, id, models.ServiceStatusInProgress, models.ServiceStatusAccepted)
}

func (r *serviceRequestRepository) MarkCompleted(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE service_requests
		SET status = $2, completed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = $3 AND payment_status = 'paid'
	`

	return r.execTransition(ctx, query, id, models.ServiceStatusCompleted, models.ServiceStatusInProgress)
}

func (r *serviceRequestRepository) execTransition(ctx context.Context, query string, id uuid.UUID, to, from models.ServiceRequestStatus) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, query, id, to, from)
	if err != nil {
		return false, fmt.Errorf("failed to update service request status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected > 0, nil
}

func (r *serviceRequestRepository) SetPaymentIntent(ctx context.Context, id uuid.UUID, paymentIntentID string) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `
		UPDATE service_requests SET payment_intent_id = $2, updated_at = NOW() WHERE id = $1
	`, id, paymentIntentID)
	if err != nil {
		return fmt.Errorf("failed to set payment intent: %w", err)
	}

	return requireRowAffected(result)
}

func (r *serviceRequestRepository) UpdateCostsTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, laborCost, partsCost, totalCost int64) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := tx.ExecContext(dbCtx, updateCostsQuery, id, laborCost, partsCost, totalCost)
	if err != nil {
		return fmt.Errorf("failed to update service request costs: %w", err)
	}

	return requireRowAffected(result)
}

const updateCostsQuery = `
	UPDATE service_requests
	SET labor_cost = $2, parts_cost = $3, total_cost = $4, updated_at = NOW()
	WHERE id = $1
`

func (r *serviceRequestRepository) AttachPartsTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, parts []models.ServiceRequestPart) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	for i := range parts {
		part := &parts[i]
		part.ServiceRequestID = id

		query := `
			INSERT INTO service_request_parts
				(id, service_request_id, part_id, part_name, quantity, unit_price, subtotal, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
			ON CONFLICT (service_request_id, part_id)
			DO UPDATE SET quantity = EXCLUDED.quantity, unit_price = EXCLUDED.unit_price, subtotal = EXCLUDED.subtotal, status = EXCLUDED.status
			RETURNING created_at
		`

		err := tx.QueryRowContext(dbCtx, query,
			part.ID, part.ServiceRequestID, part.PartID, part.PartName,
			part.Quantity, part.UnitPrice, part.Subtotal, part.Status,
		).Scan(&part.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to attach service request part: %w", err)
		}
	}

	return nil
}
