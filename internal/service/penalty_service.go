package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/opaclabs/circulation-engine/internal/config"
	"github.com/opaclabs/circulation-engine/internal/domain"
	"github.com/opaclabs/circulation-engine/internal/repository"
	customError "github.com/opaclabs/circulation-engine/pkg/errors"
	"github.com/opaclabs/circulation-engine/pkg/utils"
)

type PenaltyService struct {
	store  repository.Store
	config *config.Config
}

func NewPenaltyService(store repository.Store, config *config.Config) *PenaltyService {
	return &PenaltyService{
		store:  store,
		config: config,
	}
}

// AccrueOverduePenalties scans open loans past their due date and creates
// one penalty per qualifying loan. The scan's anti-join on existing penalty
// rows makes the job idempotent across re-runs; a failed loan is logged and
// skipped so one bad row cannot block the batch. Returns the number accrued.
func (s *PenaltyService) AccrueOverduePenalties(ctx context.Context) (int, error) {
	now := time.Now()

	overdue, err := s.store.ListOverdueLoansWithoutPenalty(ctx, now)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	if len(overdue) == 0 {
		return 0, nil
	}

	accrued := 0
	for _, loan := range overdue {
		rate := loan.PenaltyRate
		if rate.IsZero() {
			rate = s.config.GetDefaultPenaltyRate()
		}

		daysLate := utils.DaysLate(loan.DueDate, now)

		penalty := &domain.Penalty{
			ID:     uuid.New(),
			LoanID: loan.ID,
			Amount: utils.PenaltyAmount(rate, daysLate),
			Paid:   false,
			Reason: fmt.Sprintf("Overdue by %d days", daysLate),
		}

		if err := s.store.CreatePenalty(ctx, penalty); err != nil {
			log.Printf("Error accruing penalty for loan %s: %v", loan.ID, err)
			continue
		}

		accrued++
	}

	return accrued, nil
}

// ListPenalties returns all penalties on a borrower's loans, newest first.
func (s *PenaltyService) ListPenalties(ctx context.Context, borrowerID uuid.UUID) ([]*domain.Penalty, error) {
	penalties, err := s.store.ListPenaltiesByBorrower(ctx, borrowerID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return penalties, nil
}

// GetPenalty retrieves one penalty by ID.
func (s *PenaltyService) GetPenalty(ctx context.Context, penaltyID uuid.UUID) (*domain.Penalty, error) {
	penalty, err := s.store.GetPenalty(ctx, penaltyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapPenaltyNotFound(penaltyID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	return penalty, nil
}

// PayPenalty settles a penalty. Paying flips the paid flag and records the
// date; the underlying loan is never touched.
func (s *PenaltyService) PayPenalty(ctx context.Context, penaltyID uuid.UUID) (*domain.Penalty, error) {
	var paid *domain.Penalty

	err := s.store.WithinTx(ctx, func(ctx context.Context, q repository.Queries) error {
		penalty, err := q.GetPenalty(ctx, penaltyID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return customError.WrapPenaltyNotFound(penaltyID)
			}
			return customError.WrapDatabaseError(err)
		}

		if penalty.Paid {
			return customError.WrapPenaltyAlreadyPaid(penaltyID)
		}

		paidDate := time.Now()
		if err := q.MarkPenaltyPaid(ctx, penaltyID, paidDate); err != nil {
			return customError.WrapDatabaseError(err)
		}

		penalty.Paid = true
		penalty.PaidDate = &paidDate
		paid = penalty
		return nil
	})
	if err != nil {
		return nil, err
	}

	return paid, nil
}
