package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/opaclabs/circulation-engine/internal/domain"
	"github.com/opaclabs/circulation-engine/pkg/response"
)

// PenaltyService is the penalty surface the HTTP edge needs.
type PenaltyService interface {
	ListPenalties(ctx context.Context, borrowerID uuid.UUID) ([]*domain.Penalty, error)
	GetPenalty(ctx context.Context, penaltyID uuid.UUID) (*domain.Penalty, error)
	PayPenalty(ctx context.Context, penaltyID uuid.UUID) (*domain.Penalty, error)
}

type PenaltyHandler struct {
	service PenaltyService
}

func NewPenaltyHandler(service PenaltyService) *PenaltyHandler {
	return &PenaltyHandler{service: service}
}

// ListPenalties handles GET /borrowers/{borrowerId}/penalties
func (h *PenaltyHandler) ListPenalties(w http.ResponseWriter, r *http.Request) {
	borrowerID, err := uuid.Parse(mux.Vars(r)["borrowerId"])
	if err != nil {
		response.BadRequest(w, "invalid borrower ID", err)
		return
	}

	penalties, err := h.service.ListPenalties(r.Context(), borrowerID)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, penalties)
}

// GetPenalty handles GET /penalties/{penaltyId}
func (h *PenaltyHandler) GetPenalty(w http.ResponseWriter, r *http.Request) {
	penaltyID, err := uuid.Parse(mux.Vars(r)["penaltyId"])
	if err != nil {
		response.BadRequest(w, "invalid penalty ID", err)
		return
	}

	penalty, err := h.service.GetPenalty(r.Context(), penaltyID)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, penalty)
}

// PayPenalty handles POST /penalties/{penaltyId}/pay
func (h *PenaltyHandler) PayPenalty(w http.ResponseWriter, r *http.Request) {
	penaltyID, err := uuid.Parse(mux.Vars(r)["penaltyId"])
	if err != nil {
		response.BadRequest(w, "invalid penalty ID", err)
		return
	}

	penalty, err := h.service.PayPenalty(r.Context(), penaltyID)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, penalty)
}
