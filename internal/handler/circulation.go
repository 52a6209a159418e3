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

// CirculationService is the circulation surface the HTTP edge needs.
type CirculationService interface {
	IssueCopy(ctx context.Context, copyID, borrowerID uuid.UUID) (*domain.Loan, error)
	ReturnCopy(ctx context.Context, copyID uuid.UUID) error
	ListOpenLoans(ctx context.Context, borrowerID uuid.UUID) ([]*domain.Loan, error)
	ListClosedLoans(ctx context.Context, borrowerID uuid.UUID) ([]*domain.Loan, error)
	Availability(ctx context.Context, editionID, locationID uuid.UUID) (int, error)
}

type CirculationHandler struct {
	service   CirculationService
	validator *validator.Validate
}

func NewCirculationHandler(service CirculationService) *CirculationHandler {
	return &CirculationHandler{
		service:   service,
		validator: validator.New(),
	}
}

// IssueCopy handles POST /loans
func (h *CirculationHandler) IssueCopy(w http.ResponseWriter, r *http.Request) {
	var request domain.IssueCopyRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "missing required fields: copy_id, borrower_id", err)
		return
	}

	loan, err := h.service.IssueCopy(r.Context(), request.CopyID, request.BorrowerID)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Created(w, domain.IssueCopyResponse{
		LoanID:  loan.ID,
		DueDate: loan.DueDate,
	})
}

// ReturnCopy handles POST /copies/{copyId}/return
func (h *CirculationHandler) ReturnCopy(w http.ResponseWriter, r *http.Request) {
	copyID, err := uuid.Parse(mux.Vars(r)["copyId"])
	if err != nil {
		response.BadRequest(w, "invalid copy ID", err)
		return
	}

	if err := h.service.ReturnCopy(r.Context(), copyID); err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "copy returned successfully"})
}

// ListLoans handles GET /borrowers/{borrowerId}/loans?status=open|closed
func (h *CirculationHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	borrowerID, err := uuid.Parse(mux.Vars(r)["borrowerId"])
	if err != nil {
		response.BadRequest(w, "invalid borrower ID", err)
		return
	}

	var loans []*domain.Loan
	switch status := r.URL.Query().Get("status"); status {
	case "", "open":
		loans, err = h.service.ListOpenLoans(r.Context(), borrowerID)
	case "closed":
		loans, err = h.service.ListClosedLoans(r.Context(), borrowerID)
	default:
		response.BadRequest(w, "status must be open or closed", nil)
		return
	}

	if err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, loans)
}

// Availability handles GET /availability?edition_id=&location_id=
func (h *CirculationHandler) Availability(w http.ResponseWriter, r *http.Request) {
	editionID, err := uuid.Parse(r.URL.Query().Get("edition_id"))
	if err != nil {
		response.BadRequest(w, "invalid edition ID", err)
		return
	}

	locationID, err := uuid.Parse(r.URL.Query().Get("location_id"))
	if err != nil {
		response.BadRequest(w, "invalid location ID", err)
		return
	}

	available, err := h.service.Availability(r.Context(), editionID, locationID)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, domain.AvailabilityResponse{
		EditionID:  editionID,
		LocationID: locationID,
		Available:  available,
	})
}
