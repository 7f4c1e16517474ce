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

// uniqueViolation is the Postgres error code raised when a second order is
// inserted for the same payment intent.
const uniqueViolation = "23505"

// ErrDuplicatePaymentIntent signals that an order for this intent already
// exists; the caller resolves it by returning the existing order.
var ErrDuplicatePaymentIntent = errors.New("order already exists for payment intent")

type OrderRepository interface {
	CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetOrderByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error)
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

func (r *orderRepository) CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO orders (id, user_id, payment_intent_id, status, total_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`

	err := tx.QueryRowContext(dbCtx, query, order.ID, order.UserID, order.PaymentIntentID, order.Status, order.TotalAmount).Scan(&order.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicatePaymentIntent
		}

		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID

		query := `
			INSERT INTO order_items (id, order_id, part_id, part_name, sku, quantity, unit_price, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
			RETURNING created_at
		`

		err := tx.QueryRowContext(dbCtx, query, item.ID, item.OrderID, item.PartID, item.PartName, item.SKU, item.Quantity, item.UnitPrice).Scan(&item.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return r.getOrder(ctx, `WHERE id = $1`, id)
}

func (r *orderRepository) GetOrderByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error) {
	return r.getOrder(ctx, `WHERE payment_intent_id = $1`, paymentIntentID)
}

func (r *orderRepository) getOrder(ctx context.Context, where string, arg any) (*models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	order := &models.Order{}

	query := `
		SELECT id, user_id, payment_intent_id, status, total_amount, created_at
		FROM orders
	` + where

	err := r.DB.QueryRowContext(dbCtx, query, arg).Scan(&order.ID, &order.UserID, &order.PaymentIntentID, &order.Status, &order.TotalAmount, &order.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	itemsQuery := `
		SELECT id, part_id, part_name, sku, quantity, unit_price, created_at
		FROM order_items
		WHERE order_id = $1
	`

	rows, err := r.DB.QueryContext(dbCtx, itemsQuery, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}

	defer rows.Close()

	var items []models.OrderItem

	for rows.Next() {
		var item models.OrderItem

		err := rows.Scan(&item.ID, &item.PartID, &item.PartName, &item.SKU, &item.Quantity, &item.UnitPrice, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		item.OrderID = order.ID

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	order.Items = items

	return order, nil
}
