package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/opaclabs/circulation-engine/internal/domain"
	"github.com/opaclabs/circulation-engine/pkg/response"
)

// ReservationService is the reservation surface the HTTP edge needs.
type ReservationService interface {
	CreateReservation(ctx context.Context, request *domain.CreateReservationRequest) (*domain.ReservationOutcome, error)
	CancelReservation(ctx context.Context, reservationID uuid.UUID) error
	ListReservations(ctx context.Context, borrowerID uuid.UUID) ([]*domain.Reservation, error)
}

type ReservationHandler struct {
	service   ReservationService
	validator *validator.Validate
}

func NewReservationHandler(service ReservationService) *ReservationHandler {
	return &ReservationHandler{
		service:   service,
		validator: validator.New(),
	}
}

// CreateReservation handles POST /reservations
func (h *ReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "missing required fields: edition_id, location_id, borrower_id", err)
		return
	}

	outcome, err := h.service.CreateReservation(r.Context(), &request)
	if err != nil {
		respondError(w, err)
		return
	}

	if outcome.AlreadyHeld {
		response.Success(w, outcome)
		return
	}

	response.Created(w, outcome)
}

// CancelReservation handles DELETE /reservations/{reservationId}
func (h *ReservationHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	reservationID, err := uuid.Parse(mux.Vars(r)["reservationId"])
	if err != nil {
		response.BadRequest(w, "invalid reservation ID", err)
		return
	}

	if err := h.service.CancelReservation(r.Context(), reservationID); err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "reservation cancelled successfully"})
}

// ListReservations handles GET /borrowers/{borrowerId}/reservations
func (h *ReservationHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	borrowerID, err := uuid.Parse(mux.Vars(r)["borrowerId"])
	if err != nil {
		response.BadRequest(w, "invalid borrower ID", err)
		return
	}

	reservations, err := h.service.ListReservations(r.Context(), borrowerID)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, reservations)
}
