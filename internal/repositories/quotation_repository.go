package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/tireserve/platform/internal/models"
	"github.com/tireserve/platform/internal/utils"
)

type QuotationRepository interface {
	CreateQuotation(ctx context.Context, q *models.Quotation) error
	GetQuotationByID(ctx context.Context, id uuid.UUID) (*models.Quotation, error)
	MarkSentTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) (bool, error)
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to models.QuotationStatus) (bool, error)
	UpdateCosts(ctx context.Context, id uuid.UUID, laborCost, partsCost, totalAmount int64) error
	ExpireOverdue(ctx context.Context) (int64, error)
}

type quotationRepository struct {
	DB *sql.DB
}

func NewQuotationRepo(db *sql.DB) QuotationRepository {
	return &quotationRepository{DB: db}
}

func (r *quotationRepository) CreateQuotation(ctx context.Context, q *models.Quotation) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO quotations
			(id, quotation_number, service_request_id, labor_cost, parts_cost, total_amount, status, valid_from, valid_until, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	return r.DB.QueryRowContext(dbCtx, query,
		q.ID, q.QuotationNumber, q.ServiceRequestID, q.LaborCost, q.PartsCost,
		q.TotalAmount, q.Status, q.ValidFrom, q.ValidUntil,
	).Scan(&q.CreatedAt, &q.UpdatedAt)
}

func (r *quotationRepository) GetQuotationByID(ctx context.Context, id uuid.UUID) (*models.Quotation, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	q := &models.Quotation{}

	query := `
		SELECT id, quotation_number, service_request_id, labor_cost, parts_cost, total_amount,
		       status, valid_from, valid_until, sent_at, created_at, updated_at
		FROM quotations
		WHERE id = $1
	`

	err := r.DB.QueryRowContext(dbCtx, query, id).Scan(
		&q.ID, &q.QuotationNumber, &q.ServiceRequestID, &q.LaborCost, &q.PartsCost,
		&q.TotalAmount, &q.Status, &q.ValidFrom, &q.ValidUntil, &q.SentAt,
		&q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}

	return q, nil
}

// MarkSentTx flips draft to sent inside the caller's transaction; sending is
// one-way, so the WHERE clause only matches a draft row.
func (r *quotationRepository) MarkSentTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE quotations
		SET status = $2, sent_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = $3
	`

	result, err := tx.ExecContext(dbCtx, query, id, models.QuotationStatusSent, models.QuotationStatusDraft)
	if err != nil {
		return false, fmt.Errorf("failed to mark quotation sent: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected > 0, nil
}

func (r *quotationRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to models.QuotationStatus) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE quotations
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
	`

	result, err := r.DB.ExecContext(dbCtx, query, id, to, from)
	if err != nil {
		return false, fmt.Errorf("failed to update quotation status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected > 0, nil
}

// UpdateCosts mutates the quotation row only; it never touches the linked
// service request. Propagation happens exclusively through Send.
func (r *quotationRepository) UpdateCosts(ctx context.Context, id uuid.UUID, laborCost, partsCost, totalAmount int64) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `
		UPDATE quotations
		SET labor_cost = $2, parts_cost = $3, total_amount = $4, updated_at = NOW()
		WHERE id = $1
	`, id, laborCost, partsCost, totalAmount)
	if err != nil {
		return fmt.Errorf("failed to update quotation costs: %w", err)
	}

	return requireRowAffected(result)
}

// ExpireOverdue marks every sent quotation whose validity window has closed.
func (r *quotationRepository) ExpireOverdue(ctx context.Context) (int64, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `
		UPDATE quotations
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND valid_until < NOW()
	`, models.QuotationStatusExpired, models.QuotationStatusSent)
	if err != nil {
		return 0, fmt.Errorf("failed to expire quotations: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected, nil
}
