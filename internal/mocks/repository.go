package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/installment-engine/internal/domain"
	"github.com/segyhp/installment-engine/pkg/calendar"
)

type MockContractRepository struct {
	mock.Mock
}

func (m *MockContractRepository) Create(ctx context.Context, contract *domain.Contract) error {
	args := m.Called(ctx, contract)
	return args.Error(0)
}

func (m *MockContractRepository) GetByNumber(ctx context.Context, clientName, contractNumber string) (*domain.Contract, error) {
	args := m.Called(ctx, clientName, contractNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contract), args.Error(1)
}

func (m *MockContractRepository) UpdateStatus(ctx context.Context, contractID uuid.UUID, status string) error {
	args := m.Called(ctx, contractID, status)
	return args.Error(0)
}

func (m *MockContractRepository) AddAdministrator(ctx context.Context, admin *domain.ContractAdministrator) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

func (m *MockContractRepository) CreateEvent(ctx context.Context, event *domain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockContractRepository) CompleteEvent(ctx context.Context, event *domain.Event, installments []*domain.Installment) error {
	args := m.Called(ctx, event, installments)
	return args.Error(0)
}

type MockInstallmentRepository struct {
	mock.Mock
}

func (m *MockInstallmentRepository) CreateForContract(ctx context.Context, contractID uuid.UUID, installments []*domain.Installment) error {
	args := m.Called(ctx, contractID, installments)
	return args.Error(0)
}

func (m *MockInstallmentRepository) GetByContract(ctx context.Context, contractID uuid.UUID) ([]*domain.Installment, error) {
	args := m.Called(ctx, contractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) GetByPeriod(ctx context.Context, period calendar.PeriodDate) ([]*domain.Installment, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Installment), args.Error(1)
}
