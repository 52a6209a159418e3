package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/opaclabs/circulation-engine/internal/domain"
)

func (s *sqlStore) CreatePenalty(ctx context.Context, penalty *domain.Penalty) error {
	query := `
		INSERT INTO penalties (id, loan_id, amount, paid, paid_date, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.ext.ExecContext(ctx, query,
		penalty.ID,
		penalty.LoanID,
		penalty.Amount,
		penalty.Paid,
		penalty.PaidDate,
		penalty.Reason,
		time.Now(),
	)

	return err
}

func (s *sqlStore) GetPenalty(ctx context.Context, id uuid.UUID) (*domain.Penalty, error) {
	query := `
		SELECT id, loan_id, amount, paid, paid_date, reason, created_at
		FROM penalties
		WHERE id = $1
	`

	var penalty domain.Penalty
	if err := sqlx.GetContext(ctx, s.ext, &penalty, query, id); err != nil {
		return nil, err
	}

	return &penalty, nil
}

func (s *sqlStore) ListPenaltiesByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]*domain.Penalty, error) {
	query := `
		SELECT p.id, p.loan_id, p.amount, p.paid, p.paid_date, p.reason, p.created_at
		FROM penalties p
		JOIN loans l ON p.loan_id = l.id
		WHERE l.borrower_id = $1
		ORDER BY p.created_at DESC
	`

	var penalties []*domain.Penalty
	if err := sqlx.SelectContext(ctx, s.ext, &penalties, query, borrowerID); err != nil {
		return nil, err
	}

	return penalties, nil
}

func (s *sqlStore) MarkPenaltyPaid(ctx context.Context, id uuid.UUID, paidDate time.Time) error {
	query := `
		UPDATE penalties
		SET paid = TRUE, paid_date = $2
		WHERE id = $1
	`

	_, err := s.ext.ExecContext(ctx, query, id, paidDate)
	return err
}
