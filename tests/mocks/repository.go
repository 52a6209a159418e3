package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/opaclabs/circulation-engine/internal/domain"
	"github.com/opaclabs/circulation-engine/internal/repository"
)

// MockStore mocks repository.Store. WithinTx is not an expectation: it runs
// the callback against the mock itself, so a test sets expectations on the
// query methods and the transactional wrapper stays transparent.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) WithinTx(ctx context.Context, fn func(ctx context.Context, q repository.Queries) error) error {
	return fn(ctx, m)
}

func (m *MockStore) LockCirculationPair(ctx context.Context, editionID, locationID uuid.UUID) error {
	args := m.Called(ctx, editionID, locationID)
	return args.Error(0)
}

func (m *MockStore) GetCopy(ctx context.Context, id uuid.UUID) (*domain.Copy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Copy), args.Error(1)
}

func (m *MockStore) CreateCopy(ctx context.Context, copy *domain.Copy) error {
	args := m.Called(ctx, copy)
	return args.Error(0)
}

func (m *MockStore) UpdateCopyStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockStore) CountAvailableCopies(ctx context.Context, editionID, locationID uuid.UUID) (int, error) {
	args := m.Called(ctx, editionID, locationID)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) CountAvailableCopiesExcluding(ctx context.Context, editionID, locationID, excludedCopyID uuid.UUID) (int, error) {
	args := m.Called(ctx, editionID, locationID, excludedCopyID)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) CreateLoan(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockStore) CloseOpenLoanByCopy(ctx context.Context, copyID uuid.UUID) error {
	args := m.Called(ctx, copyID)
	return args.Error(0)
}

func (m *MockStore) ListLoansByBorrower(ctx context.Context, borrowerID uuid.UUID, status string) ([]*domain.Loan, error) {
	args := m.Called(ctx, borrowerID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockStore) ListOverdueLoansWithoutPenalty(ctx context.Context, asOf time.Time) ([]*repository.OverdueLoan, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.OverdueLoan), args.Error(1)
}

func (m *MockStore) CreateReservation(ctx context.Context, reservation *domain.Reservation) error {
	args := m.Called(ctx, reservation)
	return args.Error(0)
}

func (m *MockStore) GetReservation(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockStore) FindReservation(ctx context.Context, editionID, locationID, borrowerID uuid.UUID) (*domain.Reservation, error) {
	args := m.Called(ctx, editionID, locationID, borrowerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockStore) DeleteReservation(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) DeleteReservations(ctx context.Context, ids []uuid.UUID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockStore) CountActiveReservations(ctx context.Context, editionID, locationID uuid.UUID) (int, error) {
	args := m.Called(ctx, editionID, locationID)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) CountReservations(ctx context.Context, editionID, locationID uuid.UUID) (int, error) {
	args := m.Called(ctx, editionID, locationID)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) ListWaitlisted(ctx context.Context, editionID, locationID uuid.UUID, limit int) ([]*domain.Reservation, error) {
	args := m.Called(ctx, editionID, locationID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Reservation), args.Error(1)
}

func (m *MockStore) PromoteReservations(ctx context.Context, ids []uuid.UUID, expiresAt time.Time) error {
	args := m.Called(ctx, ids, expiresAt)
	return args.Error(0)
}

func (m *MockStore) ListExpiredReserved(ctx context.Context, now time.Time) ([]*domain.Reservation, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Reservation), args.Error(1)
}

func (m *MockStore) ListReservationsByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]*domain.Reservation, error) {
	args := m.Called(ctx, borrowerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Reservation), args.Error(1)
}

func (m *MockStore) CreatePenalty(ctx context.Context, penalty *domain.Penalty) error {
	args := m.Called(ctx, penalty)
	return args.Error(0)
}

func (m *MockStore) GetPenalty(ctx context.Context, id uuid.UUID) (*domain.Penalty, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Penalty), args.Error(1)
}

func (m *MockStore) ListPenaltiesByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]*domain.Penalty, error) {
	args := m.Called(ctx, borrowerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Penalty), args.Error(1)
}

func (m *MockStore) MarkPenaltyPaid(ctx context.Context, id uuid.UUID, paidDate time.Time) error {
	args := m.Called(ctx, id, paidDate)
	return args.Error(0)
}

func (m *MockStore) GetBorrower(ctx context.Context, id uuid.UUID) (*domain.Borrower, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Borrower), args.Error(1)
}

// MockNotifier records promotion events for assertions.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) ReservationPromoted(ctx context.Context, reservation *domain.Reservation) {
	m.Called(ctx, reservation)
}
