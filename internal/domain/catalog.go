package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Edition is the catalog-level description shared by all copies of the
// same publication.
type Edition struct {
	ID       uuid.UUID `json:"id" db:"id"`
	ISBN     string    `json:"isbn" db:"isbn"`
	Title    string    `json:"title" db:"title"`
	Author   string    `json:"author" db:"author"`
	Language string    `json:"language" db:"language"`
	Pages    int       `json:"pages" db:"pages"`
}

type Location struct {
	ID      uuid.UUID `json:"id" db:"id"`
	Name    string    `json:"name" db:"name"`
	Address string    `json:"address" db:"address"`
}

// Borrower carries its classification values. PenaltyRate and MaxLoanDays
// are nullable in the store; zero values fall back to the configured defaults.
type Borrower struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Class       string          `json:"class" db:"class"`
	PenaltyRate decimal.Decimal `json:"penalty_rate" db:"penalty_rate"`
	MaxLoanDays int             `json:"max_loan_days" db:"max_loan_days"`
}
