package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one (user, part) row. The pair is unique; quantity is always
// at least one, removal deletes the row.
type CartItem struct {
	UserID    uuid.UUID `json:"user_id"`
	PartID    uuid.UUID `json:"part_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AddCartItemRequest struct {
	PartID   uuid.UUID `json:"part_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,min=1"`
}

type UpdateCartQuantityRequest struct {
	PartID   uuid.UUID `json:"part_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"min=0"`
}
