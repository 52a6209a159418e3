package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/opaclabs/circulation-engine/internal/domain"
)

func (s *sqlStore) CreateLoan(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (id, copy_id, location_id, borrower_id, issued_on, due_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	now := time.Now()
	_, err := s.ext.ExecContext(ctx, query,
		loan.ID,
		loan.CopyID,
		loan.LocationID,
		loan.BorrowerID,
		loan.IssuedOn,
		loan.DueDate,
		loan.Status,
		now,
		now,
	)

	return err
}

func (s *sqlStore) CloseOpenLoanByCopy(ctx context.Context, copyID uuid.UUID) error {
	query := `
		UPDATE loans
		SET status = $3, updated_at = $4
		WHERE copy_id = $1 AND status = $2
	`

	_, err := s.ext.ExecContext(ctx, query, copyID, domain.LoanStatusOpen, domain.LoanStatusReturned, time.Now())
	return err
}

func (s *sqlStore) ListLoansByBorrower(ctx context.Context, borrowerID uuid.UUID, status string) ([]*domain.Loan, error) {
	query := `
		SELECT id, copy_id, location_id, borrower_id, issued_on, due_date, status, created_at, updated_at
		FROM loans
		WHERE borrower_id = $1 AND status = $2
		ORDER BY issued_on DESC
	`

	var loans []*domain.Loan
	if err := sqlx.SelectContext(ctx, s.ext, &loans, query, borrowerID, status); err != nil {
		return nil, err
	}

	return loans, nil
}

// ListOverdueLoansWithoutPenalty is the accrual job's scan: OPEN loans past
// due with no penalty row yet. The anti-join is what makes the job
// idempotent across re-runs.
func (s *sqlStore) ListOverdueLoansWithoutPenalty(ctx context.Context, asOf time.Time) ([]*OverdueLoan, error) {
	query := `
		SELECT l.id, l.copy_id, l.location_id, l.borrower_id, l.issued_on, l.due_date, l.status,
			l.created_at, l.updated_at,
			COALESCE(b.penalty_rate, 0) AS penalty_rate
		FROM loans l
		JOIN borrowers b ON l.borrower_id = b.id
		WHERE l.status = $1
			AND l.due_date < $2
			AND NOT EXISTS (
				SELECT 1 FROM penalties p WHERE p.loan_id = l.id
			)
		ORDER BY l.due_date
	`

	var loans []*OverdueLoan
	if err := sqlx.SelectContext(ctx, s.ext, &loans, query, domain.LoanStatusOpen, asOf); err != nil {
		return nil, err
	}

	return loans, nil
}
