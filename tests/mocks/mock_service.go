package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/opaclabs/circulation-engine/internal/domain"
)

type MockReservationService struct {
	mock.Mock
}

func (m *MockReservationService) CreateReservation(ctx context.Context, request *domain.CreateReservationRequest) (*domain.ReservationOutcome, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReservationOutcome), args.Error(1)
}

func (m *MockReservationService) CancelReservation(ctx context.Context, reservationID uuid.UUID) error {
	args := m.Called(ctx, reservationID)
	return args.Error(0)
}

func (m *MockReservationService) ListReservations(ctx context.Context, borrowerID uuid.UUID) ([]*domain.Reservation, error) {
	args := m.Called(ctx, borrowerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Reservation), args.Error(1)
}

type MockCirculationService struct {
	mock.Mock
}

func (m *MockCirculationService) IssueCopy(ctx context.Context, copyID, borrowerID uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, copyID, borrowerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockCirculationService) ReturnCopy(ctx context.Context, copyID uuid.UUID) error {
	args := m.Called(ctx, copyID)
	return args.Error(0)
}

func (m *MockCirculationService) ListOpenLoans(ctx context.Context, borrowerID uuid.UUID) ([]*domain.Loan, error) {
	args := m.Called(ctx, borrowerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockCirculationService) ListClosedLoans(ctx context.Context, borrowerID uuid.UUID) ([]*domain.Loan, error) {
	args := m.Called(ctx, borrowerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockCirculationService) Availability(ctx context.Context, editionID, locationID uuid.UUID) (int, error) {
	args := m.Called(ctx, editionID, locationID)
	return args.Int(0), args.Error(1)
}

type MockPenaltyService struct {
	mock.Mock
}

func (m *MockPenaltyService) ListPenalties(ctx context.Context, borrowerID uuid.UUID) ([]*domain.Penalty, error) {
	args := m.Called(ctx, borrowerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Penalty), args.Error(1)
}

func (m *MockPenaltyService) GetPenalty(ctx context.Context, penaltyID uuid.UUID) (*domain.Penalty, error) {
	args := m.Called(ctx, penaltyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Penalty), args.Error(1)
}

func (m *MockPenaltyService) PayPenalty(ctx context.Context, penaltyID uuid.UUID) (*domain.Penalty, error) {
	args := m.Called(ctx, penaltyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Penalty), args.Error(1)
}
