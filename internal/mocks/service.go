package mocks

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/installment-engine/internal/domain"
	"github.com/segyhp/installment-engine/pkg/calendar"
)

type MockContractService struct {
	mock.Mock
}

func (m *MockContractService) CreateContract(ctx context.Context, request *domain.CreateContractRequest) (*domain.Contract, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contract), args.Error(1)
}

func (m *MockContractService) GetContract(ctx context.Context, clientName, contractNumber string) (*domain.Contract, error) {
	args := m.Called(ctx, clientName, contractNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contract), args.Error(1)
}

func (m *MockContractService) Deactivate(ctx context.Context, clientName, contractNumber string) error {
	args := m.Called(ctx, clientName, contractNumber)
	return args.Error(0)
}

func (m *MockContractService) AddAdministrator(ctx context.Context, clientName, contractNumber string, request *domain.AddAdministratorRequest) (*domain.AddAdministratorResponse, error) {
	args := m.Called(ctx, clientName, contractNumber, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AddAdministratorResponse), args.Error(1)
}

func (m *MockContractService) AddEvent(ctx context.Context, clientName, contractNumber string, request *domain.AddEventRequest) (*domain.Event, error) {
	args := m.Called(ctx, clientName, contractNumber, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockContractService) CompleteEvent(ctx context.Context, clientName, contractNumber string, eventID int, completionDate time.Time) (*domain.DistributionResult, error) {
	args := m.Called(ctx, clientName, contractNumber, eventID, completionDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DistributionResult), args.Error(1)
}

func (m *MockContractService) GenerateInstallments(ctx context.Context, clientName, contractNumber string) (*domain.DistributionResult, error) {
	args := m.Called(ctx, clientName, contractNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DistributionResult), args.Error(1)
}

func (m *MockContractService) GetInstallments(ctx context.Context, clientName, contractNumber string) ([]*domain.Installment, error) {
	args := m.Called(ctx, clientName, contractNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Installment), args.Error(1)
}

func (m *MockContractService) PreviewPlan(ctx context.Context, request *domain.PreviewPlanRequest) (*domain.PreviewPlanResponse, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PreviewPlanResponse), args.Error(1)
}

func (m *MockContractService) PeriodPayment(ctx context.Context, clientName, contractNumber, taxID string, periodTotal decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, clientName, contractNumber, taxID, periodTotal)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockContractService) Period(date time.Time, expenseType int) *domain.PeriodResponse {
	args := m.Called(date, expenseType)
	return args.Get(0).(*domain.PeriodResponse)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) ExportPeriod(ctx context.Context, period calendar.PeriodDate, w io.Writer) error {
	args := m.Called(ctx, period, w)
	return args.Error(0)
}
