package models

import (
	"time"

	"github.com/google/uuid"
)

type ServiceRequestStatus string

type PaymentStatus string

const (
	ServiceStatusPending          ServiceRequestStatus = "pending"
	ServiceStatusMechanicAssigned ServiceRequestStatus = "mechanic_assigned"
	ServiceStatusAccepted         ServiceRequestStatus = "accepted"
	ServiceStatusRejected         ServiceRequestStatus = "rejected"
	ServiceStatusInProgress       ServiceRequestStatus = "in_progress"
	ServiceStatusCompleted        ServiceRequestStatus = "completed"
	ServiceStatusCancelled        ServiceRequestStatus = "cancelled"

	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

const (
	PartUsageRecommended = "recommended"
	PartUsageConfirmed   = "confirmed"
	PartUsageInstalled   = "installed"
)

type ServiceRequest struct {
	ID              uuid.UUID            `json:"id"`
	RequestNumber   string               `json:"request_number"`
	UserID          uuid.UUID            `json:"user_id"`
	MechanicID      *uuid.UUID           `json:"mechanic_id,omitempty"`
	Description     string               `json:"description"`
	Status          ServiceRequestStatus `json:"status"`
	PaymentStatus   PaymentStatus        `json:"payment_status"`
	PaymentIntentID string               `json:"payment_intent_id,omitempty"`
	LaborCost       int64                `json:"labor_cost"`
	PartsCost       int64                `json:"parts_cost"`
	TotalCost       int64                `json:"total_cost"`
	RejectionReason string               `json:"rejection_reason,omitempty"`
	Parts           []ServiceRequestPart `json:"parts,omitempty"`
	AcceptedAt      *time.Time           `json:"accepted_at,omitempty"`
	StartedAt       *time.Time           `json:"started_at,omitempty"`
	CompletedAt     *time.Time           `json:"completed_at,omitempty"`
	PaidAt          *time.Time           `json:"paid_at,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// ServiceRequestPart is one recommended/confirmed part line; unit price is a
// snapshot taken when the line is attached.
type ServiceRequestPart struct {
	ID               uuid.UUID `json:"id"`
	ServiceRequestID uuid.UUID `json:"service_request_id"`
	PartID           uuid.UUID `json:"part_id"`
	PartName         string    `json:"part_name"`
	Quantity         int       `json:"quantity"`
	UnitPrice        int64     `json:"unit_price"`
	Subtotal         int64     `json:"subtotal"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

// Actor identifies who is performing a state-machine operation. It is always
// passed explicitly, never carried in ambient state.
type Actor struct {
	ID   uuid.UUID `json:"id"`
	Role string    `json:"role"`
}

const (
	RoleCustomer = "customer"
	RoleMechanic = "mechanic"
	RoleAdmin    = "admin"
)

type ServicePartInput struct {
	PartID   uuid.UUID `json:"part_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,min=1"`
}

type CreateServiceRequestRequest struct {
	Description string             `json:"description" validate:"required,min=3,max=2000"`
	MechanicID  *uuid.UUID         `json:"mechanic_id,omitempty"`
	LaborCost   int64              `json:"labor_cost" validate:"gte=0"`
	Parts       []ServicePartInput `json:"parts,omitempty" validate:"omitempty,dive"`
}

type RejectServiceRequestRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}
