package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/opaclabs/circulation-engine/internal/domain"
)

// PromotionChannel is the pub/sub channel promotion events go out on.
// A separate delivery worker turns these into borrower emails.
const PromotionChannel = "circulation.promotions"

// Notifier announces promotion events. Implementations are best-effort:
// a failed notification must never affect the state transition that
// triggered it.
type Notifier interface {
	ReservationPromoted(ctx context.Context, reservation *domain.Reservation)
}

type promotionEvent struct {
	ReservationID string     `json:"reservation_id"`
	EditionID     string     `json:"edition_id"`
	LocationID    string     `json:"location_id"`
	BorrowerID    string     `json:"borrower_id"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	PromotedAt    time.Time  `json:"promoted_at"`
}

// RedisNotifier publishes promotion events to a redis channel.
type RedisNotifier struct {
	client *redis.Client
}

func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

func (n *RedisNotifier) ReservationPromoted(ctx context.Context, reservation *domain.Reservation) {
	event := promotionEvent{
		ReservationID: reservation.ID.String(),
		EditionID:     reservation.EditionID.String(),
		LocationID:    reservation.LocationID.String(),
		BorrowerID:    reservation.BorrowerID.String(),
		ExpiresAt:     reservation.ExpiresAt,
		PromotedAt:    time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error encoding promotion event for reservation %s: %v", reservation.ID, err)
		return
	}

	if err := n.client.Publish(ctx, PromotionChannel, payload).Err(); err != nil {
		log.Printf("Error publishing promotion event for reservation %s: %v", reservation.ID, err)
	}
}

// NopNotifier discards promotion events. Used in tests.
type NopNotifier struct{}

func (NopNotifier) ReservationPromoted(context.Context, *domain.Reservation) {}
