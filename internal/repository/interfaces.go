package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/opaclabs/circulation-engine/internal/domain"
)

// OverdueLoan is a loan past due joined with the borrower's penalty rate.
// A zero rate means the borrower class carries no override and the
// configured default applies.
type OverdueLoan struct {
	domain.Loan
	PenaltyRate decimal.Decimal `db:"penalty_rate"`
}

// Queries is the set of data operations available both on the connection
// pool and inside a transaction. Methods never start transactions of their
// own; use Store.WithinTx for multi-step sequences.
type Queries interface {
	// LockCirculationPair serializes competing transactions on the same
	// (edition, location) pair. Only meaningful inside a transaction; the
	// lock is released on commit or rollback.
	LockCirculationPair(ctx context.Context, editionID, locationID uuid.UUID) error

	// GetCopy retrieves a copy by ID
	GetCopy(ctx context.Context, id uuid.UUID) (*domain.Copy, error)

	// CreateCopy records a new physical copy (intake)
	CreateCopy(ctx context.Context, copy *domain.Copy) error

	// UpdateCopyStatus flips a copy between AVAILABLE and ISSUED
	UpdateCopyStatus(ctx context.Context, id uuid.UUID, status string) error

	// CountAvailableCopies counts AVAILABLE copies of an edition at a location
	CountAvailableCopies(ctx context.Context, editionID, locationID uuid.UUID) (int, error)

	// CountAvailableCopiesExcluding is CountAvailableCopies minus one specific copy
	CountAvailableCopiesExcluding(ctx context.Context, editionID, locationID, excludedCopyID uuid.UUID) (int, error)

	// CreateLoan inserts a new loan row
	CreateLoan(ctx context.Context, loan *domain.Loan) error

	// CloseOpenLoanByCopy marks the copy's OPEN loan as RETURNED
	CloseOpenLoanByCopy(ctx context.Context, copyID uuid.UUID) error

	// ListLoansByBorrower lists a borrower's loans in the given status
	ListLoansByBorrower(ctx context.Context, borrowerID uuid.UUID, status string) ([]*domain.Loan, error)

	// ListOverdueLoansWithoutPenalty finds OPEN loans past due that have no
	// penalty row yet, joined with the borrower penalty rate
	ListOverdueLoansWithoutPenalty(ctx context.Context, asOf time.Time) ([]*OverdueLoan, error)

	// CreateReservation inserts a reservation row
	CreateReservation(ctx context.Context, reservation *domain.Reservation) error

	// GetReservation retrieves a reservation by ID
	GetReservation(ctx context.Context, id uuid.UUID) (*domain.Reservation, error)

	// FindReservation looks up the reservation for a (borrower, edition, location) triple
	FindReservation(ctx context.Context, editionID, locationID, borrowerID uuid.UUID) (*domain.Reservation, error)

	// DeleteReservation removes a reservation by ID
	DeleteReservation(ctx context.Context, id uuid.UUID) error

	// DeleteReservations removes reservations in bulk
	DeleteReservations(ctx context.Context, ids []uuid.UUID) error

	// CountActiveReservations counts RESERVED holds for an edition at a location
	CountActiveReservations(ctx context.Context, editionID, locationID uuid.UUID) (int, error)

	// CountReservations counts all reservations (both states) for an edition at a location
	CountReservations(ctx context.Context, editionID, locationID uuid.UUID) (int, error)

	// ListWaitlisted returns the oldest WAITLISTED entries, FIFO, up to limit
	ListWaitlisted(ctx context.Context, editionID, locationID uuid.UUID, limit int) ([]*domain.Reservation, error)

	// PromoteReservations batch-updates the given reservations to RESERVED
	PromoteReservations(ctx context.Context, ids []uuid.UUID, expiresAt time.Time) error

	// ListExpiredReserved returns RESERVED reservations whose expiration has passed
	ListExpiredReserved(ctx context.Context, now time.Time) ([]*domain.Reservation, error)

	// ListReservationsByBorrower lists a borrower's reservations, newest first
	ListReservationsByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]*domain.Reservation, error)

	// CreatePenalty inserts a penalty row
	CreatePenalty(ctx context.Context, penalty *domain.Penalty) error

	// GetPenalty retrieves a penalty by ID
	GetPenalty(ctx context.Context, id uuid.UUID) (*domain.Penalty, error)

	// ListPenaltiesByBorrower lists all penalties on a borrower's loans
	ListPenaltiesByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]*domain.Penalty, error)

	// MarkPenaltyPaid flips the paid flag and records the paid date
	MarkPenaltyPaid(ctx context.Context, id uuid.UUID, paidDate time.Time) error

	// GetBorrower retrieves a borrower with its classification values
	GetBorrower(ctx context.Context, id uuid.UUID) (*domain.Borrower, error)
}

// Store is the transactional entry point over Queries.
type Store interface {
	Queries

	// WithinTx runs fn inside a single transaction. The Queries passed to fn
	// are bound to that transaction; any error rolls everything back.
	WithinTx(ctx context.Context, fn func(ctx context.Context, q Queries) error) error
}
