package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/opaclabs/circulation-engine/internal/domain"
	"github.com/opaclabs/circulation-engine/pkg/errors"
	"github.com/opaclabs/circulation-engine/tests/mocks"
)

func availableCopy(editionID, locationID uuid.UUID) *domain.Copy {
	return &domain.Copy{
		ID:         uuid.New(),
		EditionID:  editionID,
		LocationID: locationID,
		Status:     domain.CopyStatusAvailable,
	}
}

func TestIssueCopy_CopyNotFound(t *testing.T) {
	store := &mocks.MockStore{}
	svc := NewCirculationService(store, &mocks.MockNotifier{}, testConfig())

	copyID := uuid.New()
	store.On("GetCopy", mock.Anything, copyID).Return(nil, sql.ErrNoRows)

	loan, err := svc.IssueCopy(context.Background(), copyID, uuid.New())

	assert.Nil(t, loan)
	assert.ErrorIs(t, err, errors.ErrNotFound)
	store.AssertExpectations(t)
}

func TestIssueCopy_AlreadyIssued(t *testing.T) {
	store := &mocks.MockStore{}
	svc := NewCirculationService(store, &mocks.MockNotifier{}, testConfig())

	cp := availableCopy(uuid.New(), uuid.New())
	cp.Status = domain.CopyStatusIssued
	store.On("GetCopy", mock.Anything, cp.ID).Return(cp, nil)
	store.On("LockCirculationPair", mock.Anything, cp.EditionID, cp.LocationID).Return(nil)

	loan, err := svc.IssueCopy(context.Background(), cp.ID, uuid.New())

	assert.Nil(t, loan)
	assert.ErrorIs(t, err, errors.ErrConflict)

	var businessErr *errors.BusinessError
	require.ErrorAs(t, err, &businessErr)
	assert.Equal(t, errors.ErrCodeCopyAlreadyIssued, businessErr.Code)

	store.AssertNotCalled(t, "CreateLoan", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestIssueCopy_RevalidatesStatusUnderLock(t *testing.T) {
	store := &mocks.MockStore{}
	svc := NewCirculationService(store, &mocks.MockNotifier{}, testConfig())

	cp := availableCopy(uuid.New(), uuid.New())
	issued := *cp
	issued.Status = domain.CopyStatusIssued

	// Copy looks AVAILABLE going in, but another issue commits while we
	// wait on the pair lock. The re-read must see ISSUED and refuse.
	store.On("GetCopy", mock.Anything, cp.ID).Return(cp, nil).Once()
	store.On("LockCirculationPair", mock.Anything, cp.EditionID, cp.LocationID).Return(nil)
	store.On("GetCopy", mock.Anything, cp.ID).Return(&issued, nil).Once()

	loan, err := svc.IssueCopy(context.Background(), cp.ID, uuid.New())

	assert.Nil(t, loan)
	assert.ErrorIs(t, err, errors.ErrConflict)

	var businessErr *errors.BusinessError
	require.ErrorAs(t, err, &businessErr)
	assert.Equal(t, errors.ErrCodeCopyAlreadyIssued, businessErr.Code)

	store.AssertNotCalled(t, "CreateLoan", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestIssueCopy_BorrowerNotFound(t *testing.T) {
	store := &mocks.MockStore{}
	svc := NewCirculationService(store, &mocks.MockNotifier{}, testConfig())

	cp := availableCopy(uuid.New(), uuid.New())
	borrowerID := uuid.New()

	store.On("GetCopy", mock.Anything, cp.ID).Return(cp, nil)
	store.On("LockCirculationPair", mock.Anything, cp.EditionID, cp.LocationID).Return(nil)
	store.On("GetBorrower", mock.Anything, borrowerID).Return(nil, sql.ErrNoRows)

	loan, err := svc.IssueCopy(context.Background(), cp.ID, borrowerID)

	assert.Nil(t, loan)
	assert.ErrorIs(t, err, errors.ErrNotFound)
	store.AssertExpectations(t)
}

func TestIssueCopy_WaitlistedBorrowerRejected(t *testing.T) {
	store := &mocks.MockStore{}
	svc := NewCirculationService(store, &mocks.MockNotifier{}, testConfig())

	cp := availableCopy(uuid.New(), uuid.New())
	borrowerID := uuid.New()

	store.On("GetCopy", mock.Anything, cp.ID).Return(cp, nil)
	store.On("LockCirculationPair", mock.Anything, cp.EditionID, cp.LocationID).Return(nil)
	store.On("GetBorrower", mock.Anything, borrowerID).Return(&domain.Borrower{ID: borrowerID}, nil)
	store.On("FindReservation", mock.Anything, cp.EditionID, cp.LocationID, borrowerID).
		Return(&domain.Reservation{ID: uuid.New(), Status: domain.ReservationStatusWaitlisted}, nil)

	loan, err := svc.IssueCopy(context.Background(), cp.ID, borrowerID)

	assert.Nil(t, loan)
	assert.ErrorIs(t, err, errors.ErrConflict)

	var businessErr *errors.BusinessError
	require.ErrorAs(t, err, &businessErr)
	assert.Equal(t, errors.ErrCodeBorrowerWaitlisted, businessErr.Code)

	store.AssertNotCalled(t, "DeleteReservation", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestIssueCopy_HolderConsumesReservation(t *testing.T) {
	store := &mocks.MockStore{}
	notifier := &mocks.MockNotifier{}
	svc := NewCirculationService(store, notifier, testConfig())

	cp := availableCopy(uuid.New(), uuid.New())
	borrowerID := uuid.New()
	hold := &domain.Reservation{
		ID:         uuid.New(),
		EditionID:  cp.EditionID,
		LocationID: cp.LocationID,
		BorrowerID: borrowerID,
		Status:     domain.ReservationStatusReserved,
	}

	store.On("GetCopy", mock.Anything, cp.ID).Return(cp, nil)
	store.On("LockCirculationPair", mock.Anything, cp.EditionID, cp.LocationID).Return(nil)
	store.On("GetBorrower", mock.Anything, borrowerID).Return(&domain.Borrower{ID: borrowerID}, nil)
	store.On("FindReservation", mock.Anything, cp.EditionID, cp.LocationID, borrowerID).Return(hold, nil)
	store.On("DeleteReservation", mock.Anything, hold.ID).Return(nil)
	store.On("CountAvailableCopies", mock.Anything, cp.EditionID, cp.LocationID).Return(1, nil)
	store.On("CountActiveReservations", mock.Anything, cp.EditionID, cp.LocationID).Return(1, nil)
	store.On("CreateLoan", mock.Anything, mock.MatchedBy(func(l *domain.Loan) bool {
		return l.CopyID == cp.ID && l.BorrowerID == borrowerID && l.Status == domain.LoanStatusOpen
	})).Return(nil)
	store.On("UpdateCopyStatus", mock.Anything, cp.ID, domain.CopyStatusIssued).Return(nil)

	loan, err := svc.IssueCopy(context.Background(), cp.ID, borrowerID)

	require.NoError(t, err)
	require.NotNil(t, loan)
	assert.True(t, loan.DueDate.After(time.Now().Add(29*24*time.Hour)))
	store.AssertExpectations(t)
	notifier.AssertNotCalled(t, "ReservationPromoted", mock.Anything, mock.Anything)
}

func TestIssueCopy_WalkInBlockedWhenCopiesClaimed(t *testing.T) {
	store := &mocks.MockStore{}
	svc := NewCirculationService(store, &mocks.MockNotifier{}, testConfig())

	cp := availableCopy(uuid.New(), uuid.New())
	borrowerID := uuid.New()

	store.On("GetCopy", mock.Anything, cp.ID).Return(cp, nil)
	store.On("LockCirculationPair", mock.Anything, cp.EditionID, cp.LocationID).Return(nil)
	store.On("GetBorrower", mock.Anything, borrowerID).Return(&domain.Borrower{ID: borrowerID}, nil)
	store.On("FindReservation", mock.Anything, cp.EditionID, cp.LocationID, borrowerID).Return(nil, sql.ErrNoRows)
	store.On("CountAvailableCopiesExcluding", mock.Anything, cp.EditionID, cp.LocationID, cp.ID).Return(0, nil)
	store.On("CountReservations", mock.Anything, cp.EditionID, cp.LocationID).Return(1, nil)

	loan, err := svc.IssueCopy(context.Background(), cp.ID, borrowerID)

	assert.Nil(t, loan)
	assert.ErrorIs(t, err, errors.ErrConflict)

	var businessErr *errors.BusinessError
	require.ErrorAs(t, err, &businessErr)
	assert.Equal(t, errors.ErrCodeCopiesClaimed, businessErr.Code)

	store.AssertNotCalled(t, "CreateLoan", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestIssueCopy_WalkInAdmittedWhenCovered(t *testing.T) {
	store := &mocks.MockStore{}
	svc := NewCirculationService(store, &mocks.MockNotifier{}, testConfig())

	cp := availableCopy(uuid.New(), uuid.New())
	borrowerID := uuid.New()

	store.On("GetCopy", mock.Anything, cp.ID).Return(cp, nil)
	store.On("LockCirculationPair", mock.Anything, cp.EditionID, cp.LocationID).Return(nil)
	store.On("GetBorrower", mock.Anything, borrowerID).
		Return(&domain.Borrower{ID: borrowerID, MaxLoanDays: 14}, nil)
	store.On("FindReservation", mock.Anything, cp.EditionID, cp.LocationID, borrowerID).Return(nil, sql.ErrNoRows)
	store.On("CountAvailableCopiesExcluding", mock.Anything, cp.EditionID, cp.LocationID, cp.ID).Return(1, nil)
	store.On("CountReservations", mock.Anything, cp.EditionID, cp.LocationID).Return(1, nil)
	store.On("CreateLoan", mock.Anything, mock.AnythingOfType("*domain.Loan")).Return(nil)
	store.On("UpdateCopyStatus", mock.Anything, cp.ID, domain.CopyStatusIssued).Return(nil)

	loan, err := svc.IssueCopy(context.Background(), cp.ID, borrowerID)

	require.NoError(t, err)
	require.NotNil(t, loan)
	// borrower-specific period wins over the default
	assert.True(t, loan.DueDate.After(time.Now().Add(13*24*time.Hour)))
	assert.True(t, loan.DueDate.Before(time.Now().Add(15*24*time.Hour)))
	store.AssertExpectations(t)
}

func TestReturnCopy_NotFound(t *testing.T) {
	store := &mocks.MockStore{}
	svc := NewCirculationService(store, &mocks.MockNotifier{}, testConfig())

	copyID := uuid.New()
	store.On("GetCopy", mock.Anything, copyID).Return(nil, sql.ErrNoRows)

	err := svc.ReturnCopy(context.Background(), copyID)

	assert.ErrorIs(t, err, errors.ErrNotFound)
	store.AssertExpectations(t)
}

func TestReturnCopy_NotIssued(t *testing.T) {
	store := &mocks.MockStore{}
	svc := NewCirculationService(store, &mocks.MockNotifier{}, testConfig())

	cp := availableCopy(uuid.New(), uuid.New())
	store.On("GetCopy", mock.Anything, cp.ID).Return(cp, nil)
	store.On("LockCirculationPair", mock.Anything, cp.EditionID, cp.LocationID).Return(nil)

	err := svc.ReturnCopy(context.Background(), cp.ID)

	assert.ErrorIs(t, err, errors.ErrConflict)

	var businessErr *errors.BusinessError
	require.ErrorAs(t, err, &businessErr)
	assert.Equal(t, errors.ErrCodeCopyNotIssued, businessErr.Code)

	store.AssertNotCalled(t, "UpdateCopyStatus", mock.Anything, mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestReturnCopy_RevalidatesStatusUnderLock(t *testing.T) {
	store := &mocks.MockStore{}
	svc := NewCirculationService(store, &mocks.MockNotifier{}, testConfig())

	cp := availableCopy(uuid.New(), uuid.New())
	cp.Status = domain.CopyStatusIssued
	shelved := *cp
	shelved.Status = domain.CopyStatusAvailable

	// A concurrent return shelves the copy while we wait on the pair
	// lock; the re-read must see AVAILABLE and refuse a second return.
	store.On("GetCopy", mock.Anything, cp.ID).Return(cp, nil).Once()
	store.On("LockCirculationPair", mock.Anything, cp.EditionID, cp.LocationID).Return(nil)
	store.On("GetCopy", mock.Anything, cp.ID).Return(&shelved, nil).Once()

	err := svc.ReturnCopy(context.Background(), cp.ID)

	assert.ErrorIs(t, err, errors.ErrConflict)

	var businessErr *errors.BusinessError
	require.ErrorAs(t, err, &businessErr)
	assert.Equal(t, errors.ErrCodeCopyNotIssued, businessErr.Code)

	store.AssertNotCalled(t, "UpdateCopyStatus", mock.Anything, mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestReturnCopy_FreedCopyReachesLongestWaiting(t *testing.T) {
	store := &mocks.MockStore{}
	notifier := &mocks.MockNotifier{}
	svc := NewCirculationService(store, notifier, testConfig())

	cp := availableCopy(uuid.New(), uuid.New())
	cp.Status = domain.CopyStatusIssued

	waiting := &domain.Reservation{
		ID:         uuid.New(),
		EditionID:  cp.EditionID,
		LocationID: cp.LocationID,
		Status:     domain.ReservationStatusWaitlisted,
	}

	store.On("GetCopy", mock.Anything, cp.ID).Return(cp, nil)
	store.On("LockCirculationPair", mock.Anything, cp.EditionID, cp.LocationID).Return(nil)
	store.On("UpdateCopyStatus", mock.Anything, cp.ID, domain.CopyStatusAvailable).Return(nil)
	store.On("CloseOpenLoanByCopy", mock.Anything, cp.ID).Return(nil)
	store.On("CountAvailableCopies", mock.Anything, cp.EditionID, cp.LocationID).Return(1, nil)
	store.On("CountActiveReservations", mock.Anything, cp.EditionID, cp.LocationID).Return(0, nil)
	store.On("ListWaitlisted", mock.Anything, cp.EditionID, cp.LocationID, 1).
		Return([]*domain.Reservation{waiting}, nil)
	store.On("PromoteReservations", mock.Anything, []uuid.UUID{waiting.ID}, mock.Anything).Return(nil)
	notifier.On("ReservationPromoted", mock.Anything, mock.MatchedBy(func(r *domain.Reservation) bool {
		return r.ID == waiting.ID && r.Status == domain.ReservationStatusReserved
	})).Return()

	err := svc.ReturnCopy(context.Background(), cp.ID)

	assert.NoError(t, err)
	store.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestAvailability(t *testing.T) {
	store := &mocks.MockStore{}
	svc := NewCirculationService(store, &mocks.MockNotifier{}, testConfig())

	editionID, locationID := uuid.New(), uuid.New()
	store.On("CountAvailableCopies", mock.Anything, editionID, locationID).Return(3, nil)

	available, err := svc.Availability(context.Background(), editionID, locationID)

	assert.NoError(t, err)
	assert.Equal(t, 3, available)
	store.AssertExpectations(t)
}

func TestListLoans_FiltersByStatus(t *testing.T) {
	store := &mocks.MockStore{}
	svc := NewCirculationService(store, &mocks.MockNotifier{}, testConfig())

	borrowerID := uuid.New()
	open := []*domain.Loan{{ID: uuid.New(), Status: domain.LoanStatusOpen}}
	closed := []*domain.Loan{{ID: uuid.New(), Status: domain.LoanStatusReturned}}

	store.On("ListLoansByBorrower", mock.Anything, borrowerID, domain.LoanStatusOpen).Return(open, nil)
	store.On("ListLoansByBorrower", mock.Anything, borrowerID, domain.LoanStatusReturned).Return(closed, nil)

	gotOpen, err := svc.ListOpenLoans(context.Background(), borrowerID)
	assert.NoError(t, err)
	assert.Equal(t, open, gotOpen)

	gotClosed, err := svc.ListClosedLoans(context.Background(), borrowerID)
	assert.NoError(t, err)
	assert.Equal(t, closed, gotClosed)

	store.AssertExpectations(t)
}
