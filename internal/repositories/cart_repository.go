package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/tireserve/platform/internal/models"
	"github.com/tireserve/platform/internal/utils"
)

type CartRepository interface {
	ListItemsByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	ListItemsByUserTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID) ([]models.CartItem, error)
	UpsertItem(ctx context.Context, item *models.CartItem) error
	UpdateQuantity(ctx context.Context, userID, partID uuid.UUID, quantity int) error
	ClearCartTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID) error
}

type cartRepository struct {
	DB *sql.DB
}

func NewCartRepo(db *sql.DB) CartRepository {
	return &cartRepository{DB: db}
}

const listCartItemsQuery = `
	SELECT user_id, part_id, quantity, created_at, updated_at
	FROM cart_items
	WHERE user_id = $1
	ORDER BY created_at
`

func (r *cartRepository) ListItemsByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	rows, err := r.DB.QueryContext(dbCtx, listCartItemsQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}

	return scanCartItems(rows)
}

// ListItemsByUserTx reads the cart inside the checkout transaction so the
// booked order reflects exactly the rows that get cleared on commit.
func (r *cartRepository) ListItemsByUserTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID) ([]models.CartItem, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	rows, err := tx.QueryContext(dbCtx, listCartItemsQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}

	return scanCartItems(rows)
}

func scanCartItems(rows *sql.Rows) ([]models.CartItem, error) {
	defer rows.Close()

	var items []models.CartItem

	for rows.Next() {
		var item models.CartItem

		err := rows.Scan(&item.UserID, &item.PartID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *cartRepository) UpsertItem(ctx context.Context, item *models.CartItem) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO cart_items (user_id, part_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (user_id, part_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
		RETURNING quantity, created_at, updated_at
	`

	return r.DB.QueryRowContext(dbCtx, query, item.UserID, item.PartID, item.Quantity).Scan(&item.Quantity, &item.CreatedAt, &item.UpdatedAt)
}

// UpdateQuantity sets the absolute quantity; zero removes the row.
func (r *cartRepository) UpdateQuantity(ctx context.Context, userID, partID uuid.UUID, quantity int) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	if quantity == 0 {
		result, err := r.DB.ExecContext(dbCtx, `DELETE FROM cart_items WHERE user_id = $1 AND part_id = $2`, userID, partID)
		if err != nil {
			return fmt.Errorf("failed to remove cart item: %w", err)
		}

		return requireRowAffected(result)
	}

	result, err := r.DB.ExecContext(dbCtx, `
		UPDATE cart_items SET quantity = $3, updated_at = NOW()
		WHERE user_id = $1 AND part_id = $2
	`, userID, partID, quantity)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}

	return requireRowAffected(result)
}

func (r *cartRepository) ClearCartTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	if _, err := tx.ExecContext(dbCtx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}

func requireRowAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
