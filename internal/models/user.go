package models

import (
	"time"

	"github.com/google/uuid"
)

// User rows are owned by the external identity surface; this core only ever
// reads them to resolve notification recipients.
type User struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

const (
	MechanicAvailable = "available"
	MechanicBusy      = "busy"
)

type Mechanic struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Availability string    `json:"availability"`
	UpdatedAt    time.Time `json:"updated_at"`
}
