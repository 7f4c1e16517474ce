package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/tireserve/platform/internal/errors"
	"github.com/tireserve/platform/internal/metrics"
	"github.com/tireserve/platform/internal/models"
	repository "github.com/tireserve/platform/internal/repositories"
)

// TxManager runs a function inside one database transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// InventoryService is the only component that mutates stock quantities.
// Every decrement is a single conditional update, never a read-then-write.
type InventoryService struct {
	partRepo       repository.PartRepository
	alertRecipient string
}

func NewInventoryService(partRepo repository.PartRepository, alertRecipient string) *InventoryService {
	return &InventoryService{partRepo: partRepo, alertRecipient: alertRecipient}
}

func (s *InventoryService) CheckAvailability(ctx context.Context, partID uuid.UUID, quantity int) (bool, error) {
	part, err := s.partRepo.GetPartByID(ctx, partID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, errors.NotFoundError("Part not found").WithError(err)
		}

		return false, errors.DatabaseError("Failed to look up part").WithError(err)
	}

	return part.IsActive() && quantity <= part.StockQuantity, nil
}

// Decrement runs inside the caller's transaction so that a failure later in
// the checkout rolls the stock change back with everything else.
func (s *InventoryService) Decrement(ctx context.Context, tx *sql.Tx, partID uuid.UUID, quantity int) (*models.StockChange, error) {
	change, err := s.partRepo.DecrementStock(ctx, tx, partID, quantity)
	if err != nil {
		if err == repository.ErrInsufficientStock {
			metrics.StockDecrements.WithLabelValues("insufficient").Inc()

			return nil, errors.InsufficientStockError().WithError(err)
		}

		metrics.StockDecrements.WithLabelValues("error").Inc()

		return nil, errors.DatabaseError("Failed to decrement stock").WithError(err)
	}

	metrics.StockDecrements.WithLabelValues("ok").Inc()

	return change, nil
}

// EvaluateLowStock returns a low_stock event only when this change moved the
// quantity across the minimum threshold. Updates that land below an already
// crossed threshold stay silent, so each crossing alerts exactly once.
func (s *InventoryService) EvaluateLowStock(change *models.StockChange) *models.Event {
	if change == nil || !change.CrossedThreshold() {
		return nil
	}

	metrics.LowStockEvents.Inc()

	return &models.Event{
		Kind:      models.EventLowStock,
		Recipient: s.alertRecipient,
		Subject:   "Low stock alert",
		Payload: map[string]any{
			"part_id":         change.PartID.String(),
			"stock_quantity":  change.After,
			"min_stock_level": change.MinStockLevel,
		},
	}
}
