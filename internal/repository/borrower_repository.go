package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/opaclabs/circulation-engine/internal/domain"
)

func (s *sqlStore) GetBorrower(ctx context.Context, id uuid.UUID) (*domain.Borrower, error) {
	query := `
		SELECT id, name, class,
			COALESCE(penalty_rate, 0) AS penalty_rate,
			COALESCE(max_loan_days, 0) AS max_loan_days
		FROM borrowers
		WHERE id = $1
	`

	var borrower domain.Borrower
	if err := sqlx.GetContext(ctx, s.ext, &borrower, query, id); err != nil {
		return nil, err
	}

	return &borrower, nil
}
