package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/opaclabs/circulation-engine/internal/domain"
	"github.com/opaclabs/circulation-engine/internal/repository"
	"github.com/opaclabs/circulation-engine/pkg/utils"
)

// promoteQueue re-evaluates the reservation queue for one (edition, location)
// pair inside the caller's transaction. It promotes up to
// available - active waitlisted entries, oldest first, and returns the
// promoted reservations so the caller can notify after commit.
//
// Invoked after any event that frees a copy or removes an active hold.
// Re-invoking with no free slots is a no-op.
func promoteQueue(ctx context.Context, q repository.Queries, editionID, locationID uuid.UUID, holdPeriodDays int) ([]*domain.Reservation, error) {
	available, err := q.CountAvailableCopies(ctx, editionID, locationID)
	if err != nil {
		return nil, err
	}

	active, err := q.CountActiveReservations(ctx, editionID, locationID)
	if err != nil {
		return nil, err
	}

	slots := available - active
	if slots <= 0 {
		return nil, nil
	}

	waitlisted, err := q.ListWaitlisted(ctx, editionID, locationID, slots)
	if err != nil {
		return nil, err
	}

	if len(waitlisted) == 0 {
		return nil, nil
	}

	expiresAt := utils.ExpirationDate(time.Now(), holdPeriodDays)

	ids := make([]uuid.UUID, 0, len(waitlisted))
	for _, reservation := range waitlisted {
		ids = append(ids, reservation.ID)
	}

	if err := q.PromoteReservations(ctx, ids, expiresAt); err != nil {
		return nil, err
	}

	promoted := make([]*domain.Reservation, 0, len(waitlisted))
	for _, reservation := range waitlisted {
		r := *reservation
		r.Status = domain.ReservationStatusReserved
		e := expiresAt
		r.ExpiresAt = &e
		promoted = append(promoted, &r)
	}

	return promoted, nil
}
