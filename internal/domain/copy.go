package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	CopyStatusAvailable = "AVAILABLE"
	CopyStatusIssued    = "ISSUED"
)

// Copy represents one physical unit of an edition held by a single location.
type Copy struct {
	ID            uuid.UUID `json:"id" db:"id"`
	EditionID     uuid.UUID `json:"edition_id" db:"edition_id"`
	LocationID    uuid.UUID `json:"location_id" db:"location_id"`
	Status        string    `json:"status" db:"status"`
	ShelfLocation string    `json:"shelf_location" db:"shelf_location"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
