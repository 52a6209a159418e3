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

type ReservationService struct {
	store    repository.Store
	notifier notify.Notifier
	config   *config.Config
}

func NewReservationService(store repository.Store, notifier notify.Notifier, config *config.Config) *ReservationService {
	return &ReservationService{
		store:    store,
		notifier: notifier,
		config:   config,
	}
}

// CreateReservation places a claim on an edition at a location. The claim
// becomes an active hold if a free slot exists, otherwise it joins the
// waitlist. A duplicate request is a benign already-held outcome.
func (s *ReservationService) CreateReservation(ctx context.Context, request *domain.CreateReservationRequest) (*domain.ReservationOutcome, error) {
	outcome := &domain.ReservationOutcome{}

	err := s.store.WithinTx(ctx, func(ctx context.Context, q repository.Queries) error {
		if err := q.LockCirculationPair(ctx, request.EditionID, request.LocationID); err != nil {
			return customError.WrapDatabaseError(err)
		}

		existing, err := q.FindReservation(ctx, request.EditionID, request.LocationID, request.BorrowerID)
		if err == nil {
			outcome.AlreadyHeld = true
			outcome.Granted = existing.Status == domain.ReservationStatusReserved
			outcome.Reservation = existing
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return customError.WrapDatabaseError(err)
		}

		available, err := q.CountAvailableCopies(ctx, request.EditionID, request.LocationID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}

		active, err := q.CountActiveReservations(ctx, request.EditionID, request.LocationID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}

		reservation := &domain.Reservation{
			ID:         uuid.New(),
			EditionID:  request.EditionID,
			LocationID: request.LocationID,
			BorrowerID: request.BorrowerID,
			Status:     domain.ReservationStatusWaitlisted,
			ReservedAt: time.Now(),
		}

		if available > active {
			reservation.Status = domain.ReservationStatusReserved
			expiresAt := utils.ExpirationDate(time.Now(), s.config.Circulation.HoldPeriodDays)
			reservation.ExpiresAt = &expiresAt
		}

		if err := q.CreateReservation(ctx, reservation); err != nil {
			var businessErr *customError.BusinessError
			if errors.As(err, &businessErr) {
				return err
			}
			return customError.WrapDatabaseError(err)
		}

		outcome.Granted = reservation.Status == domain.ReservationStatusReserved
		outcome.Reservation = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}

	return outcome, nil
}

// CancelReservation deletes a reservation. Cancelling an active hold frees a
// slot, so the queue is re-evaluated in the same transaction.
func (s *ReservationService) CancelReservation(ctx context.Context, reservationID uuid.UUID) error {
	var promoted []*domain.Reservation

	err := s.store.WithinTx(ctx, func(ctx context.Context, q repository.Queries) error {
		reservation, err := q.GetReservation(ctx, reservationID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return customError.WrapReservationNotFound(reservationID)
			}
			return customError.WrapDatabaseError(err)
		}

		if err := q.LockCirculationPair(ctx, reservation.EditionID, reservation.LocationID); err != nil {
			return customError.WrapDatabaseError(err)
		}

		// Re-read under the lock: a concurrent return or sweep may have
		// promoted (or already expired) this reservation while we waited,
		// and deleting a promoted hold must free its slot.
		reservation, err = q.GetReservation(ctx, reservationID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return customError.WrapReservationNotFound(reservationID)
			}
			return customError.WrapDatabaseError(err)
		}

		if err := q.DeleteReservation(ctx, reservationID); err != nil {
			return customError.WrapDatabaseError(err)
		}

		if reservation.Status == domain.ReservationStatusReserved {
			promoted, err = promoteQueue(ctx, q, reservation.EditionID, reservation.LocationID, s.config.Circulation.HoldPeriodDays)
			if err != nil {
				return customError.WrapDatabaseError(err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.notifyPromoted(ctx, promoted)
	return nil
}

// ExpireStaleReservations deletes every active hold whose expiration has
// passed, then re-evaluates the queue once per (edition, location) pair
// touched. Zero matches is a no-op. Returns the number of holds expired.
func (s *ReservationService) ExpireStaleReservations(ctx context.Context) (int, error) {
	var expired int
	var promoted []*domain.Reservation

	err := s.store.WithinTx(ctx, func(ctx context.Context, q repository.Queries) error {
		stale, err := q.ListExpiredReserved(ctx, time.Now())
		if err != nil {
			return customError.WrapDatabaseError(err)
		}

		if len(stale) == 0 {
			return nil
		}

		type pair struct {
			editionID  uuid.UUID
			locationID uuid.UUID
		}

		ids := make([]uuid.UUID, 0, len(stale))
		pairs := make([]pair, 0, len(stale))
		seen := make(map[pair]bool)

		for _, reservation := range stale {
			ids = append(ids, reservation.ID)
			p := pair{reservation.EditionID, reservation.LocationID}
			if !seen[p] {
				seen[p] = true
				pairs = append(pairs, p)
			}
		}

		for _, p := range pairs {
			if err := q.LockCirculationPair(ctx, p.editionID, p.locationID); err != nil {
				return customError.WrapDatabaseError(err)
			}
		}

		if err := q.DeleteReservations(ctx, ids); err != nil {
			return customError.WrapDatabaseError(err)
		}

		for _, p := range pairs {
			batch, err := promoteQueue(ctx, q, p.editionID, p.locationID, s.config.Circulation.HoldPeriodDays)
			if err != nil {
				return customError.WrapDatabaseError(err)
			}
			promoted = append(promoted, batch...)
		}

		expired = len(stale)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.notifyPromoted(ctx, promoted)
	return expired, nil
}

// ListReservations returns a borrower's reservations, newest first.
func (s *ReservationService) ListReservations(ctx context.Context, borrowerID uuid.UUID) ([]*domain.Reservation, error) {
	reservations, err := s.store.ListReservationsByBorrower(ctx, borrowerID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return reservations, nil
}

func (s *ReservationService) notifyPromoted(ctx context.Context, promoted []*domain.Reservation) {
	for _, reservation := range promoted {
		s.notifier.ReservationPromoted(ctx, reservation)
	}
}
