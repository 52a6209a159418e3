package errors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error taxonomy sentinels. Handlers map these to HTTP statuses.
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeCopyNotFound        = "COPY_NOT_FOUND"
	ErrCodeCopyAlreadyIssued   = "COPY_ALREADY_ISSUED"
	ErrCodeCopyNotIssued       = "COPY_NOT_ISSUED"
	ErrCodeBorrowerNotFound    = "BORROWER_NOT_FOUND"
	ErrCodeBorrowerWaitlisted  = "BORROWER_WAITLISTED"
	ErrCodeCopiesClaimed       = "COPIES_CLAIMED"
	ErrCodeReservationNotFound = "RESERVATION_NOT_FOUND"
	ErrCodeDuplicateHold       = "DUPLICATE_RESERVATION"
	ErrCodeCatalogRefNotFound  = "CATALOG_REF_NOT_FOUND"
	ErrCodePenaltyNotFound     = "PENALTY_NOT_FOUND"
	ErrCodePenaltyAlreadyPaid  = "PENALTY_ALREADY_PAID"
	ErrCodeDatabaseError       = "DATABASE_ERROR"
)

// Wrap common errors with business context
func WrapCopyNotFound(copyID uuid.UUID) *BusinessError {
	return NewBusinessError(
		ErrCodeCopyNotFound,
		fmt.Sprintf("Copy with ID %s not found", copyID),
		ErrNotFound,
	)
}

func WrapCopyAlreadyIssued(copyID uuid.UUID) *BusinessError {
	return NewBusinessError(
		ErrCodeCopyAlreadyIssued,
		fmt.Sprintf("Copy with ID %s is already issued", copyID),
		ErrConflict,
	)
}

func WrapCopyNotIssued(copyID uuid.UUID) *BusinessError {
	return NewBusinessError(
		ErrCodeCopyNotIssued,
		fmt.Sprintf("Copy with ID %s is not currently issued", copyID),
		ErrConflict,
	)
}

func WrapBorrowerNotFound(borrowerID uuid.UUID) *BusinessError {
	return NewBusinessError(
		ErrCodeBorrowerNotFound,
		fmt.Sprintf("Borrower with ID %s not found", borrowerID),
		ErrNotFound,
	)
}

func WrapBorrowerWaitlisted(borrowerID uuid.UUID) *BusinessError {
	return NewBusinessError(
		ErrCodeBorrowerWaitlisted,
		fmt.Sprintf("Borrower %s is waitlisted, cannot issue directly", borrowerID),
		ErrConflict,
	)
}

func WrapCopiesClaimed() *BusinessError {
	return NewBusinessError(
		ErrCodeCopiesClaimed,
		"All remaining copies are already claimed by reservation holders",
		ErrConflict,
	)
}

func WrapReservationNotFound(reservationID uuid.UUID) *BusinessError {
	return NewBusinessError(
		ErrCodeReservationNotFound,
		fmt.Sprintf("Reservation with ID %s not found", reservationID),
		ErrNotFound,
	)
}

func WrapDuplicateHold(borrowerID uuid.UUID) *BusinessError {
	return NewBusinessError(
		ErrCodeDuplicateHold,
		fmt.Sprintf("Borrower %s already holds a reservation for this edition at this location", borrowerID),
		ErrAlreadyExists,
	)
}

func WrapCatalogRefNotFound(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCatalogRefNotFound,
		"Referenced edition, location or borrower does not exist",
		errors.Join(ErrNotFound, err),
	)
}

func WrapPenaltyNotFound(penaltyID uuid.UUID) *BusinessError {
	return NewBusinessError(
		ErrCodePenaltyNotFound,
		fmt.Sprintf("Penalty with ID %s not found", penaltyID),
		ErrNotFound,
	)
}

func WrapPenaltyAlreadyPaid(penaltyID uuid.UUID) *BusinessError {
	return NewBusinessError(
		ErrCodePenaltyAlreadyPaid,
		fmt.Sprintf("Penalty with ID %s is already paid", penaltyID),
		ErrConflict,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}
