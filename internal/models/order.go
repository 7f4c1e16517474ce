package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	// Orders are only created after a confirmed payment.
	OrderStatusCompleted OrderStatus = "completed"
)

type Order struct {
	ID              uuid.UUID   `json:"id"`
	UserID          uuid.UUID   `json:"user_id"`
	PaymentIntentID string      `json:"payment_intent_id"`
	Status          OrderStatus `json:"status"`
	TotalAmount     int64       `json:"total_amount"`
	Items           []OrderItem `json:"items"`
	CreatedAt       time.Time   `json:"created_at"`
}

// OrderItem snapshots the part's name, sku and price at purchase time so
// historic orders stay stable when the catalog changes.
type OrderItem struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	PartID    uuid.UUID `json:"part_id"`
	PartName  string    `json:"part_name"`
	SKU       string    `json:"sku"`
	Quantity  int       `json:"quantity"`
	UnitPrice int64     `json:"unit_price"`
	CreatedAt time.Time `json:"created_at"`
}

func (i *OrderItem) Subtotal() int64 {
	return int64(i.Quantity) * i.UnitPrice
}

type BuyNowRequest struct {
	PartID   uuid.UUID `json:"part_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,min=1"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

// PaymentIntentResponse is handed back to the caller so the client can
// complete the payment against the gateway.
type PaymentIntentResponse struct {
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}
