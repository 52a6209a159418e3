package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpirationDate returns the end of the day `days` days after `from`.
// Holds and loans expire at 23:59:59.999 local time so a same-day pickup
// or return never trips the expiry.
func ExpirationDate(from time.Time, days int) time.Time {
	d := from.AddDate(0, 0, days)
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 999000000, d.Location())
}

// DaysLate returns how many whole days past due a loan is, never less than 1.
// A loan that tipped over at midnight still counts as one day late.
func DaysLate(dueDate, now time.Time) int {
	days := int(now.Sub(dueDate).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

// PenaltyAmount computes the penalty for a loan that is daysLate days overdue.
func PenaltyAmount(rate decimal.Decimal, daysLate int) decimal.Decimal {
	return rate.Mul(decimal.NewFromInt(int64(daysLate))).Round(2)
}
