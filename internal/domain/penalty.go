package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Penalty is one overdue charge tied to exactly one loan. The amount is
// fixed when the accrual job creates it and never recomputed.
type Penalty struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	LoanID    uuid.UUID       `json:"loan_id" db:"loan_id"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Paid      bool            `json:"paid" db:"paid"`
	PaidDate  *time.Time      `json:"paid_date,omitempty" db:"paid_date"`
	Reason    string          `json:"reason" db:"reason"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
