package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/opaclabs/circulation-engine/internal/domain"
)

func (s *sqlStore) GetCopy(ctx context.Context, id uuid.UUID) (*domain.Copy, error) {
	query := `
		SELECT id, edition_id, location_id, status, shelf_location, created_at, updated_at
		FROM copies
		WHERE id = $1
	`

	var copy domain.Copy
	if err := sqlx.GetContext(ctx, s.ext, &copy, query, id); err != nil {
		return nil, err
	}

	return &copy, nil
}

func (s *sqlStore) CreateCopy(ctx context.Context, copy *domain.Copy) error {
	query := `
		INSERT INTO copies (id, edition_id, location_id, status, shelf_location, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	now := time.Now()
	_, err := s.ext.ExecContext(ctx, query,
		copy.ID,
		copy.EditionID,
		copy.LocationID,
		copy.Status,
		copy.ShelfLocation,
		now,
		now,
	)

	return err
}

func (s *sqlStore) UpdateCopyStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `
		UPDATE copies
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := s.ext.ExecContext(ctx, query, id, status, time.Now())
	return err
}

func (s *sqlStore) CountAvailableCopies(ctx context.Context, editionID, locationID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM copies
		WHERE edition_id = $1 AND location_id = $2 AND status = $3
	`

	var count int
	if err := sqlx.GetContext(ctx, s.ext, &count, query, editionID, locationID, domain.CopyStatusAvailable); err != nil {
		return 0, err
	}

	return count, nil
}

func (s *sqlStore) CountAvailableCopiesExcluding(ctx context.Context, editionID, locationID, excludedCopyID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM copies
		WHERE edition_id = $1 AND location_id = $2 AND status = $3 AND id != $4
	`

	var count int
	if err := sqlx.GetContext(ctx, s.ext, &count, query, editionID, locationID, domain.CopyStatusAvailable, excludedCopyID); err != nil {
		return 0, err
	}

	return count, nil
}
