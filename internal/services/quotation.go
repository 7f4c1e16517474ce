package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tireserve/platform/internal/api/middleware"
	"github.com/tireserve/platform/internal/errors"
	"github.com/tireserve/platform/internal/models"
	repository "github.com/tireserve/platform/internal/repositories"
)

// QuotationService produces priced quotations for service requests. Sending
// is the only operation that makes a quotation's numbers authoritative on
// the linked request.
type QuotationService struct {
	repo        repository.QuotationRepository
	serviceRepo repository.ServiceRequestRepository
	userRepo    repository.UserRepository
	tx          TxManager
	dispatcher  Dispatcher
}

func NewQuotationService(
	repo repository.QuotationRepository,
	serviceRepo repository.ServiceRequestRepository,
	userRepo repository.UserRepository,
	tx TxManager,
	dispatcher Dispatcher,
) *QuotationService {
	return &QuotationService{
		repo:        repo,
		serviceRepo: serviceRepo,
		userRepo:    userRepo,
		tx:          tx,
		dispatcher:  dispatcher,
	}
}

func (s *QuotationService) Create(ctx context.Context, req *models.CreateQuotationRequest) (*models.Quotation, error) {
	if _, err := s.serviceRepo.GetByID(ctx, req.ServiceRequestID); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundError("Service request not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to load service request").WithError(err)
	}

	now := time.Now()

	quotation := &models.Quotation{
		ID:               uuid.New(),
		QuotationNumber:  newRequestNumber("QT"),
		ServiceRequestID: req.ServiceRequestID,
		LaborCost:        req.LaborCost,
		PartsCost:        req.PartsCost,
		TotalAmount:      req.LaborCost + req.PartsCost,
		Status:           models.QuotationStatusDraft,
		ValidFrom:        now,
		ValidUntil:       now.AddDate(0, 0, req.ValidityDays),
	}

	if err := s.repo.CreateQuotation(ctx, quotation); err != nil {
		return nil, errors.DatabaseError("Failed to create quotation").WithError(err)
	}

	return quotation, nil
}

func (s *QuotationService) Get(ctx context.Context, id uuid.UUID) (*models.Quotation, error) {
	quotation, err := s.repo.GetQuotationByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundError("Quotation not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to load quotation").WithError(err)
	}

	return quotation, nil
}

// Send moves a draft quotation to sent and copies its costs onto the linked
// service request, in one transaction. Sending is one-way; a quotation in
// any other state fails with InvalidState and touches nothing.
func (s *QuotationService) Send(ctx context.Context, id uuid.UUID) (*models.Quotation, error) {
	quotation, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if quotation.Status != models.QuotationStatusDraft {
		return nil, errors.InvalidStateError("Only a draft quotation can be sent")
	}

	txErr := s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		ok, err := s.repo.MarkSentTx(ctx, tx, id)
		if err != nil {
			return err
		}

		if !ok {
			// raced with another send
			return errors.InvalidStateError("Only a draft quotation can be sent")
		}

		return s.serviceRepo.UpdateCostsTx(ctx, tx, quotation.ServiceRequestID,
			quotation.LaborCost, quotation.PartsCost, quotation.TotalAmount)
	})

	if txErr != nil {
		if appErr, ok := errors.IsAppError(txErr); ok {
			return nil, appErr
		}

		return nil, errors.DatabaseError("Failed to send quotation").WithError(txErr)
	}

	s.notifyQuotationReady(ctx, quotation)

	return s.Get(ctx, id)
}

// UpdateCosts edits the quotation row only. A sent or accepted quotation
// never re-propagates its numbers to the service request.
func (s *QuotationService) UpdateCosts(ctx context.Context, id uuid.UUID, laborCost, partsCost int64) (*models.Quotation, error) {
	if laborCost < 0 || partsCost < 0 {
		return nil, errors.ValidationError("Costs must not be negative")
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateCosts(ctx, id, laborCost, partsCost, laborCost+partsCost); err != nil {
		return nil, errors.DatabaseError("Failed to update quotation").WithError(err)
	}

	return s.Get(ctx, id)
}

// Accept, Reject and Expire are one-way moves out of sent.
func (s *QuotationService) Accept(ctx context.Context, id uuid.UUID) (*models.Quotation, error) {
	return s.transition(ctx, id, models.QuotationStatusAccepted)
}

func (s *QuotationService) Reject(ctx context.Context, id uuid.UUID) (*models.Quotation, error) {
	return s.transition(ctx, id, models.QuotationStatusRejected)
}

func (s *QuotationService) Expire(ctx context.Context, id uuid.UUID) (*models.Quotation, error) {
	return s.transition(ctx, id, models.QuotationStatusExpired)
}

// ExpireOverdue sweeps sent quotations whose validity window has closed.
// Called periodically from the process main loop.
func (s *QuotationService) ExpireOverdue(ctx context.Context) (int64, error) {
	expired, err := s.repo.ExpireOverdue(ctx)
	if err != nil {
		return 0, errors.DatabaseError("Failed to expire quotations").WithError(err)
	}

	if expired > 0 {
		middleware.LoggerFromContext(ctx).Info("Expired overdue quotations", slog.Int64("count", expired))
	}

	return expired, nil
}

func (s *QuotationService) transition(ctx context.Context, id uuid.UUID, to models.QuotationStatus) (*models.Quotation, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	ok, err := s.repo.UpdateStatusIf(ctx, id, models.QuotationStatusSent, to)
	if err != nil {
		return nil, errors.DatabaseError("Failed to update quotation").WithError(err)
	}

	if !ok {
		return nil, errors.InvalidStateError("Only a sent quotation can be " + string(to))
	}

	return s.Get(ctx, id)
}

func (s *QuotationService) notifyQuotationReady(ctx context.Context, quotation *models.Quotation) {
	sr, err := s.serviceRepo.GetByID(ctx, quotation.ServiceRequestID)
	if err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to load service request for notification", slog.String("error", err.Error()))

		return
	}

	user, err := s.userRepo.GetUserByID(ctx, sr.UserID)
	if err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to resolve notification recipient", slog.String("error", err.Error()))

		return
	}

	dispatchAsync(ctx, s.dispatcher, []models.Event{{
		Kind:      models.EventQuotationReady,
		Recipient: user.Email,
		Subject:   "Your quotation " + quotation.QuotationNumber + " is ready",
		Payload: map[string]any{
			"quotation_number": quotation.QuotationNumber,
			"labor_cost":       quotation.LaborCost,
			"parts_cost":       quotation.PartsCost,
			"total_amount":     quotation.TotalAmount,
			"valid_until":      quotation.ValidUntil,
		},
	}})
}
