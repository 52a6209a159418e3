package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReservationStatusReserved   = "RESERVED"
	ReservationStatusWaitlisted = "WAITLISTED"
)

// Reservation is a borrower's claim on an edition at a location, not on a
// specific copy. WAITLISTED entries carry no expiration; promotion to
// RESERVED is one-way and sets a fresh expiration.
type Reservation struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	EditionID  uuid.UUID  `json:"edition_id" db:"edition_id"`
	LocationID uuid.UUID  `json:"location_id" db:"location_id"`
	BorrowerID uuid.UUID  `json:"borrower_id" db:"borrower_id"`
	Status     string     `json:"status" db:"status"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	ReservedAt time.Time  `json:"reserved_at" db:"reserved_at"`
}

// DTOs for requests and responses

type CreateReservationRequest struct {
	EditionID  uuid.UUID `json:"edition_id" validate:"required"`
	LocationID uuid.UUID `json:"location_id" validate:"required"`
	BorrowerID uuid.UUID `json:"borrower_id" validate:"required"`
}

// ReservationOutcome reports which branch a reservation request took.
// Granted means an active hold; AlreadyHeld is the benign duplicate case.
type ReservationOutcome struct {
	Granted     bool         `json:"granted"`
	AlreadyHeld bool         `json:"already_held"`
	Reservation *Reservation `json:"reservation,omitempty"`
}
