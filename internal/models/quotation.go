package models

import (
	"time"

	"github.com/google/uuid"
)

type QuotationStatus string

const (
	QuotationStatusDraft    QuotationStatus = "draft"
	QuotationStatusSent     QuotationStatus = "sent"
	QuotationStatusAccepted QuotationStatus = "accepted"
	QuotationStatusRejected QuotationStatus = "rejected"
	QuotationStatusExpired  QuotationStatus = "expired"
)

type Quotation struct {
	ID               uuid.UUID       `json:"id"`
	QuotationNumber  string          `json:"quotation_number"`
	ServiceRequestID uuid.UUID       `json:"service_request_id"`
	LaborCost        int64           `json:"labor_cost"`
	PartsCost        int64           `json:"parts_cost"`
	TotalAmount      int64           `json:"total_amount"`
	Status           QuotationStatus `json:"status"`
	ValidFrom        time.Time       `json:"valid_from"`
	ValidUntil       time.Time       `json:"valid_until"`
	SentAt           *time.Time      `json:"sent_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type CreateQuotationRequest struct {
	ServiceRequestID uuid.UUID `json:"service_request_id" validate:"required"`
	LaborCost        int64     `json:"labor_cost" validate:"gte=0"`
	PartsCost        int64     `json:"parts_cost" validate:"gte=0"`
	ValidityDays     int       `json:"validity_days" validate:"required,min=1,max=90"`
}
