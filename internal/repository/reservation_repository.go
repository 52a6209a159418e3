package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/opaclabs/circulation-engine/internal/domain"
	customError "github.com/opaclabs/circulation-engine/pkg/errors"
)

const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
)

const selectReservationColumns = `id, edition_id, location_id, borrower_id, status, expires_at, reserved_at`

func (s *sqlStore) CreateReservation(ctx context.Context, reservation *domain.Reservation) error {
	query := `
		INSERT INTO reservations (id, edition_id, location_id, borrower_id, status, expires_at, reserved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.ext.ExecContext(ctx, query,
		reservation.ID,
		reservation.EditionID,
		reservation.LocationID,
		reservation.BorrowerID,
		reservation.Status,
		reservation.ExpiresAt,
		reservation.ReservedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch string(pqErr.Code) {
			case pqForeignKeyViolation:
				return customError.WrapCatalogRefNotFound(err)
			case pqUniqueViolation:
				return customError.WrapDuplicateHold(reservation.BorrowerID)
			}
		}
		return err
	}

	return nil
}

func (s *sqlStore) GetReservation(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	query := `SELECT ` + selectReservationColumns + ` FROM reservations WHERE id = $1`

	var reservation domain.Reservation
	if err := sqlx.GetContext(ctx, s.ext, &reservation, query, id); err != nil {
		return nil, err
	}

	return &reservation, nil
}

func (s *sqlStore) FindReservation(ctx context.Context, editionID, locationID, borrowerID uuid.UUID) (*domain.Reservation, error) {
	query := `SELECT ` + selectReservationColumns + `
		FROM reservations
		WHERE edition_id = $1 AND location_id = $2 AND borrower_id = $3`

	var reservation domain.Reservation
	if err := sqlx.GetContext(ctx, s.ext, &reservation, query, editionID, locationID, borrowerID); err != nil {
		return nil, err
	}

	return &reservation, nil
}

func (s *sqlStore) DeleteReservation(ctx context.Context, id uuid.UUID) error {
	_, err := s.ext.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	return err
}

func (s *sqlStore) DeleteReservations(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := s.ext.ExecContext(ctx, `DELETE FROM reservations WHERE id = ANY($1)`, pq.Array(ids))
	return err
}

func (s *sqlStore) CountActiveReservations(ctx context.Context, editionID, locationID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM reservations
		WHERE edition_id = $1 AND location_id = $2 AND status = $3
	`

	var count int
	if err := sqlx.GetContext(ctx, s.ext, &count, query, editionID, locationID, domain.ReservationStatusReserved); err != nil {
		return 0, err
	}

	return count, nil
}

func (s *sqlStore) CountReservations(ctx context.Context, editionID, locationID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM reservations
		WHERE edition_id = $1 AND location_id = $2
	`

	var count int
	if err := sqlx.GetContext(ctx, s.ext, &count, query, editionID, locationID); err != nil {
		return 0, err
	}

	return count, nil
}

// ListWaitlisted returns the oldest waitlisted entries first. reserved_at is
// the FIFO key; promotion order depends on it.
func (s *sqlStore) ListWaitlisted(ctx context.Context, editionID, locationID uuid.UUID, limit int) ([]*domain.Reservation, error) {
	query := `SELECT ` + selectReservationColumns + `
		FROM reservations
		WHERE edition_id = $1 AND location_id = $2 AND status = $3
		ORDER BY reserved_at ASC
		LIMIT $4`

	var reservations []*domain.Reservation
	if err := sqlx.SelectContext(ctx, s.ext, &reservations, query, editionID, locationID, domain.ReservationStatusWaitlisted, limit); err != nil {
		return nil, err
	}

	return reservations, nil
}

func (s *sqlStore) PromoteReservations(ctx context.Context, ids []uuid.UUID, expiresAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		UPDATE reservations
		SET status = $2, expires_at = $3
		WHERE id = ANY($1)
	`

	_, err := s.ext.ExecContext(ctx, query, pq.Array(ids), domain.ReservationStatusReserved, expiresAt)
	return err
}

func (s *sqlStore) ListExpiredReserved(ctx context.Context, now time.Time) ([]*domain.Reservation, error) {
	query := `SELECT ` + selectReservationColumns + `
		FROM reservations
		WHERE status = $1 AND expires_at < $2`

	var reservations []*domain.Reservation
	if err := sqlx.SelectContext(ctx, s.ext, &reservations, query, domain.ReservationStatusReserved, now); err != nil {
		return nil, err
	}

	return reservations, nil
}

func (s *sqlStore) ListReservationsByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]*domain.Reservation, error) {
	query := `SELECT ` + selectReservationColumns + `
		FROM reservations
		WHERE borrower_id = $1
		ORDER BY reserved_at DESC`

	var reservations []*domain.Reservation
	if err := sqlx.SelectContext(ctx, s.ext, &reservations, query, borrowerID); err != nil {
		return nil, err
	}

	return reservations, nil
}
