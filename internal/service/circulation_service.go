package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/opaclabs/circulation-engine/internal/config"
	"github.com/opaclabs/circulation-engine/internal/domain"
	"github.com/opaclabs/circulation-engine/internal/notify"
	"github.com/opaclabs/circulation-engine/internal/repository"
	customError "github.com/opaclabs/circulation-engine/pkg/errors"
	"github.com/opaclabs/circulation-engine/pkg/utils"
)

type CirculationService struct {
	store    repository.Store
	notifier notify.Notifier
	config   *config.Config
}

func NewCirculationService(store repository.Store, notifier notify.Notifier, config *config.Config) *CirculationService {
	return &CirculationService{
		store:    store,
		notifier: notifier,
		config:   config,
	}
}

// IssueCopy hands a specific copy to a borrower. Holders collect through
// their reservation; walk-ins are admitted only when doing so cannot starve
// an existing reservation holder.
func (s *CirculationService) IssueCopy(ctx context.Context, copyID, borrowerID uuid.UUID) (*domain.Loan, error) {
	var loan *domain.Loan
	var promoted []*domain.Reservation

	err := s.store.WithinTx(ctx, func(ctx context.Context, q repository.Queries) error {
		cp, err := q.GetCopy(ctx, copyID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return customError.WrapCopyNotFound(copyID)
			}
			return customError.WrapDatabaseError(err)
		}

		if err := q.LockCirculationPair(ctx, cp.EditionID, cp.LocationID); err != nil {
			return customError.WrapDatabaseError(err)
		}

		// The first read only keyed the lock; a concurrent issue may have
		// committed while we waited, so the status check runs on a re-read.
		cp, err = q.GetCopy(ctx, copyID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return customError.WrapCopyNotFound(copyID)
			}
			return customError.WrapDatabaseError(err)
		}

		if cp.Status != domain.CopyStatusAvailable {
			return customError.WrapCopyAlreadyIssued(copyID)
		}

		borrower, err := q.GetBorrower(ctx, borrowerID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return customError.WrapBorrowerNotFound(borrowerID)
			}
			return customError.WrapDatabaseError(err)
		}

		heldReservation := false
		reservation, err := q.FindReservation(ctx, cp.EditionID, cp.LocationID, borrowerID)
		switch {
		case err == nil:
			if reservation.Status == domain.ReservationStatusWaitlisted {
				return customError.WrapBorrowerWaitlisted(borrowerID)
			}

			if err := q.DeleteReservation(ctx, reservation.ID); err != nil {
				return customError.WrapDatabaseError(err)
			}
			heldReservation = true

		case errors.Is(err, sql.ErrNoRows):
			// Walk-in. Every remaining available copy must still cover every
			// outstanding reservation, waitlisted ones included.
			remaining, err := q.CountAvailableCopiesExcluding(ctx, cp.EditionID, cp.LocationID, copyID)
			if err != nil {
				return customError.WrapDatabaseError(err)
			}

			claims, err := q.CountReservations(ctx, cp.EditionID, cp.LocationID)
			if err != nil {
				return customError.WrapDatabaseError(err)
			}

			if remaining < claims {
				return customError.WrapCopiesClaimed()
			}

		default:
			return customError.WrapDatabaseError(err)
		}

		loanPeriodDays := borrower.MaxLoanDays
		if loanPeriodDays <= 0 {
			loanPeriodDays = s.config.Circulation.LoanPeriodDays
		}

		now := time.Now()
		loan = &domain.Loan{
			ID:         uuid.New(),
			CopyID:     copyID,
			LocationID: cp.LocationID,
			BorrowerID: borrowerID,
			IssuedOn:   now,
			DueDate:    utils.ExpirationDate(now, loanPeriodDays),
			Status:     domain.LoanStatusOpen,
		}

		if err := q.CreateLoan(ctx, loan); err != nil {
			return customError.WrapDatabaseError(err)
		}

		if err := q.UpdateCopyStatus(ctx, copyID, domain.CopyStatusIssued); err != nil {
			return customError.WrapDatabaseError(err)
		}

		// A consumed hold frees a queue slot only once the copy is ISSUED,
		// otherwise the hand-over copy would be counted as available.
		if heldReservation {
			promoted, err = promoteQueue(ctx, q, cp.EditionID, cp.LocationID, s.config.Circulation.HoldPeriodDays)
			if err != nil {
				return customError.WrapDatabaseError(err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyPromoted(ctx, promoted)
	return loan, nil
}

// ReturnCopy accepts a copy back at the counter. The freed copy reaches the
// longest-waiting borrower through queue promotion in the same transaction.
// Overdue penalties are left to the accrual job.
func (s *CirculationService) ReturnCopy(ctx context.Context, copyID uuid.UUID) error {
	var promoted []*domain.Reservation

	err := s.store.WithinTx(ctx, func(ctx context.Context, q repository.Queries) error {
		cp, err := q.GetCopy(ctx, copyID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return customError.WrapCopyNotFound(copyID)
			}
			return customError.WrapDatabaseError(err)
		}

		if err := q.LockCirculationPair(ctx, cp.EditionID, cp.LocationID); err != nil {
			return customError.WrapDatabaseError(err)
		}

		// Re-read under the lock; a concurrent return may have already
		// shelved this copy.
		cp, err = q.GetCopy(ctx, copyID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return customError.WrapCopyNotFound(copyID)
			}
			return customError.WrapDatabaseError(err)
		}

		if cp.Status != domain.CopyStatusIssued {
			return customError.WrapCopyNotIssued(copyID)
		}

		if err := q.UpdateCopyStatus(ctx, copyID, domain.CopyStatusAvailable); err != nil {
			return customError.WrapDatabaseError(err)
		}

		if err := q.CloseOpenLoanByCopy(ctx, copyID); err != nil {
			return customError.WrapDatabaseError(err)
		}

		promoted, err = promoteQueue(ctx, q, cp.EditionID, cp.LocationID, s.config.Circulation.HoldPeriodDays)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.notifyPromoted(ctx, promoted)
	return nil
}

// ListOpenLoans returns a borrower's active loans, newest first.
func (s *CirculationService) ListOpenLoans(ctx context.Context, borrowerID uuid.UUID) ([]*domain.Loan, error) {
	loans, err := s.store.ListLoansByBorrower(ctx, borrowerID, domain.LoanStatusOpen)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return loans, nil
}

// ListClosedLoans returns a borrower's returned loans, newest first.
func (s *CirculationService) ListClosedLoans(ctx context.Context, borrowerID uuid.UUID) ([]*domain.Loan, error) {
	loans, err := s.store.ListLoansByBorrower(ctx, borrowerID, domain.LoanStatusReturned)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return loans, nil
}

// Availability reports how many copies of an edition are available at a
// location right now. Derived read, never cached.
func (s *CirculationService) Availability(ctx context.Context, editionID, locationID uuid.UUID) (int, error) {
	available, err := s.store.CountAvailableCopies(ctx, editionID, locationID)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	return available, nil
}

func (s *CirculationService) notifyPromoted(ctx context.Context, promoted []*domain.Reservation) {
	for _, reservation := range promoted {
		s.notifier.ReservationPromoted(ctx, reservation)
	}
}
