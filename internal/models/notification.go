package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventKind string

const (
	EventMechanicAssigned EventKind = "mechanic_assigned"
	EventServiceAccepted  EventKind = "service_accepted"
	EventServiceRejected  EventKind = "service_rejected"
	EventServicePaid      EventKind = "service_paid"
	EventServiceCompleted EventKind = "service_completed"
	EventQuotationReady   EventKind = "quotation_ready"
	EventOrderConfirmed   EventKind = "order_confirmed"
	EventLowStock         EventKind = "low_stock"
)

// Event is emitted by a state transition and consumed by the dispatcher
// after the business transaction has committed. It never participates in
// the transaction itself.
type Event struct {
	Kind      EventKind      `json:"kind"`
	Recipient string         `json:"recipient"`
	Subject   string         `json:"subject"`
	Payload   map[string]any `json:"payload,omitempty"`
}

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

type Notification struct {
	ID           uuid.UUID          `json:"id"`
	Kind         EventKind          `json:"kind"`
	Recipient    string             `json:"recipient"`
	Subject      string             `json:"subject"`
	Payload      json.RawMessage    `json:"payload,omitempty"`
	Status       NotificationStatus `json:"status"`
	ErrorMessage string             `json:"error_message,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}
