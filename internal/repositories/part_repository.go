package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/tireserve/platform/internal/models"
	"github.com/tireserve/platform/internal/utils"
)

// ErrInsufficientStock is returned when a decrement would take the stock
// quantity below zero. The conditional update simply matches no row.
var ErrInsufficientStock = errors.New("insufficient stock")

type PartRepository interface {
	GetPartByID(ctx context.Context, id uuid.UUID) (*models.Part, error)
	GetPartsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Part, error)
	DecrementStock(ctx context.Context, tx *sql.Tx, partID uuid.UUID, quantity int) (*models.StockChange, error)
}

type partRepository struct {
	DB *sql.DB
}

func NewPartRepo(db *sql.DB) PartRepository {
	return &partRepository{DB: db}
}

func (r *partRepository) GetPartByID(ctx context.Context, id uuid.UUID) (*models.Part, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	part := &models.Part{}

	query := `
		SELECT id, name, sku, price, stock_quantity, min_stock_level, status, created_at, updated_at
		FROM parts
		WHERE id = $1
	`

	err := r.DB.QueryRowContext(dbCtx, query, id).Scan(&part.ID, &part.Name, &part.SKU, &part.Price, &part.StockQuantity, &part.MinStockLevel, &part.Status, &part.CreatedAt, &part.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	return part, nil
}

func (r *partRepository) GetPartsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Part, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, name, sku, price, stock_quantity, min_stock_level, status, created_at, updated_at
		FROM parts
		WHERE id = ANY($1)
	`

	idStrings := make([]string, 0, len(ids))
	for _, id := range ids {
		idStrings = append(idStrings, id.String())
	}

	rows, err := r.DB.QueryContext(dbCtx, query, pq.Array(idStrings))
	if err != nil {
		return nil, fmt.Errorf("failed to query parts: %w", err)
	}

	defer rows.Close()

	parts := make(map[uuid.UUID]*models.Part, len(ids))

	for rows.Next() {
		part := &models.Part{}

		err := rows.Scan(&part.ID, &part.Name, &part.SKU, &part.Price, &part.StockQuantity, &part.MinStockLevel, &part.Status, &part.CreatedAt, &part.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan part: %w", err)
		}

		parts[part.ID] = part
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return parts, nil
}

// DecrementStock performs the single conditional update that serializes
// concurrent buyers. The WHERE clause guarantees stock never goes negative;
// when the requested quantity exceeds the stock at the instant of the update
// no row matches and ErrInsufficientStock is returned. Must run inside the
// caller's transaction so a later failure undoes the decrement.
func (r *partRepository) DecrementStock(ctx context.Context, tx *sql.Tx, partID uuid.UUID, quantity int) (*models.StockChange, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE parts
		SET stock_quantity = stock_quantity - $2, updated_at = NOW()
		WHERE id = $1 AND stock_quantity >= $2 AND status = 'active'
		RETURNING stock_quantity, min_stock_level
	`

	var after, minLevel int

	err := tx.QueryRowContext(dbCtx, query, partID, quantity).Scan(&after, &minLevel)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInsufficientStock
		}

		return nil, fmt.Errorf("failed to decrement stock: %w", err)
	}

	return &models.StockChange{
		PartID:        partID,
		Before:        after + quantity,
		After:         after,
		MinStockLevel: minLevel,
	}, nil
}
