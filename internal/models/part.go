package models

import (
	"time"

	"github.com/google/uuid"
)

// All monetary values in this package are integer minor units (cents).

const (
	PartStatusActive       = "active"
	PartStatusInactive     = "inactive"
	PartStatusDiscontinued = "discontinued"
)

type Part struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	SKU           string    `json:"sku"`
	Price         int64     `json:"price"`
	StockQuantity int       `json:"stock_quantity"`
	MinStockLevel int       `json:"min_stock_level"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (p *Part) IsActive() bool {
	return p.Status == PartStatusActive
}

// StockChange is the outcome of a single atomic decrement.
type StockChange struct {
	PartID        uuid.UUID `json:"part_id"`
	Before        int       `json:"before"`
	After         int       `json:"after"`
	MinStockLevel int       `json:"min_stock_level"`
}

// CrossedThreshold reports whether this decrement moved the quantity from
// above the minimum level to at-or-below it. Reads that are already below
// the threshold do not count as a crossing.
func (c *StockChange) CrossedThreshold() bool {
	return c.Before > c.MinStockLevel && c.After <= c.MinStockLevel
}
