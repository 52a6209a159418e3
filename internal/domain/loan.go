package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	LoanStatusOpen     = "OPEN"
	LoanStatusReturned = "RETURNED"
)

// Loan is an open or closed borrowing record tying one copy to one borrower.
// At most one OPEN loan exists per copy; issue enforces this by requiring
// the copy to be AVAILABLE.
type Loan struct {
	ID         uuid.UUID `json:"id" db:"id"`
	CopyID     uuid.UUID `json:"copy_id" db:"copy_id"`
	LocationID uuid.UUID `json:"location_id" db:"location_id"`
	BorrowerID uuid.UUID `json:"borrower_id" db:"borrower_id"`
	IssuedOn   time.Time `json:"issued_on" db:"issued_on"`
	DueDate    time.Time `json:"due_date" db:"due_date"`
	Status     string    `json:"status" db:"status"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// DTOs for requests and responses

type IssueCopyRequest struct {
	CopyID     uuid.UUID `json:"copy_id" validate:"required"`
	BorrowerID uuid.UUID `json:"borrower_id" validate:"required"`
}

type IssueCopyResponse struct {
	LoanID  uuid.UUID `json:"loan_id"`
	DueDate time.Time `json:"due_date"`
}

type AvailabilityResponse struct {
	EditionID  uuid.UUID `json:"edition_id"`
	LocationID uuid.UUID `json:"location_id"`
	Available  int       `json:"available"`
}
