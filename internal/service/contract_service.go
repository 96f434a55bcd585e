package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/segyhp/installment-engine/internal/domain"
	"github.com/segyhp/installment-engine/internal/repository"
	"github.com/segyhp/installment-engine/pkg/calendar"
	customError "github.com/segyhp/installment-engine/pkg/errors"
	"github.com/segyhp/installment-engine/pkg/utils"
)

const installmentsCacheTTL = 24 * time.Hour

type ContractService struct {
	ContractRepo    repository.ContractRepository
	InstallmentRepo repository.InstallmentRepository
	redis           *redis.Client
	distributor     *Distributor
	logger          *slog.Logger
}

func NewContractService(
	contractRepo repository.ContractRepository,
	installmentRepo repository.InstallmentRepository,
	redis *redis.Client,
	distributor *Distributor,
	logger *slog.Logger,
) *ContractService {
	if distributor == nil {
		distributor = NewDistributor(NewScheduleGenerator(nil, nil), DefaultEventOffsetDays, 0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ContractService{
		ContractRepo:    contractRepo,
		InstallmentRepo: installmentRepo,
		redis:           redis,
		distributor:     distributor,
		logger:          logger,
	}
}

// CreateContract registers a new active contract
func (s *ContractService) CreateContract(ctx context.Context, request *domain.CreateContractRequest) (*domain.Contract, error) {
	contract, err := request.ToContract()
	if err != nil {
		return nil, err
	}

	existing, err := s.ContractRepo.GetByNumber(ctx, request.ClientName, request.ContractNumber)
	if err == nil && existing != nil {
		return nil, customError.WrapContractAlreadyExists(request.ClientName, request.ContractNumber)
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	if err := s.ContractRepo.Create(ctx, contract); err != nil {
		if errors.Is(err, repository.ErrContractExists) {
			return nil, customError.WrapContractAlreadyExists(request.ClientName, request.ContractNumber)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.Info("contract created",
		slog.String("client", contract.ClientName),
		slog.String("contract", contract.ContractNumber),
		slog.String("global_value", contract.GlobalValue.StringFixed(2)),
	)

	return contract, nil
}

// GetContract loads a contract with its administrators and events
func (s *ContractService) GetContract(ctx context.Context, clientName, contractNumber string) (*domain.Contract, error) {
	contract, err := s.ContractRepo.GetByNumber(ctx, clientName, contractNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapContractNotFound(contractNumber)
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return contract, nil
}

// Deactivate soft-deletes a contract
func (s *ContractService) Deactivate(ctx context.Context, clientName, contractNumber string) error {
	contract, err := s.GetContract(ctx, clientName, contractNumber)
	if err != nil {
		return err
	}
	if !contract.IsActive() {
		return customError.WrapInvalidStateTransition("contract "+contractNumber, contract.Status, domain.ContractStatusInactive)
	}

	if err := s.ContractRepo.UpdateStatus(ctx, contract.ID, domain.ContractStatusInactive); err != nil {
		return customError.WrapDatabaseError(err)
	}

	s.logger.Info("contract deactivated", slog.String("client", clientName), slog.String("contract", contractNumber))
	return nil
}

// AddAdministrator appends an administrator and reports share warnings
func (s *ContractService) AddAdministrator(ctx context.Context, clientName, contractNumber string, request *domain.AddAdministratorRequest) (*domain.AddAdministratorResponse, error) {
	contract, err := s.GetContract(ctx, clientName, contractNumber)
	if err != nil {
		return nil, err
	}
	if !contract.IsActive() {
		return nil, customError.WrapInvalidStateTransition("contract "+contractNumber, contract.Status, "administrator added")
	}

	admin, err := newAdministrator(contract, request)
	if err != nil {
		return nil, err
	}

	contract.Administrators = append(contract.Administrators, admin)
	warnings := s.distributor.ValidateShares(contract)

	if err := s.ContractRepo.AddAdministrator(ctx, admin); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	for _, w := range warnings {
		s.logger.Warn(w.Message, slog.String("code", w.Code), slog.String("contract", contractNumber))
	}

	return &domain.AddAdministratorResponse{Administrator: admin, Warnings: warnings}, nil
}

func newAdministrator(contract *domain.Contract, request *domain.AddAdministratorRequest) (*domain.ContractAdministrator, error) {
	if !utils.IsValidTaxID(request.TaxID) {
		return nil, customError.InvalidArgument("invalid CPF/CNPJ %q", request.TaxID)
	}
	if !request.ShareValue.IsPositive() {
		return nil, customError.InvalidArgument("share value must be greater than 0")
	}
	if request.ShareType == domain.ShareTypePercentage && request.ShareValue.GreaterThan(hundred) {
		return nil, customError.InvalidArgument("share percentage must not exceed 100, got %s", request.ShareValue.String())
	}

	switch request.PaymentMethod {
	case domain.PaymentMethodFixedInstallments:
		if request.InstallmentCount <= 0 {
			return nil, customError.InvalidArgument("fixed installments need an installment count")
		}
		if contract.Schedule.Kind == domain.ScheduleExplicitDates && len(contract.Schedule.Dates) != request.InstallmentCount {
			return nil, customError.WrapCountMismatch(request.InstallmentCount, len(contract.Schedule.Dates))
		}
	case domain.PaymentMethodPercentage:
		if request.ShareType != domain.ShareTypePercentage {
			return nil, customError.InvalidArgument("percentage payment requires a percentage share")
		}
	case domain.PaymentMethodEvents:
	default:
		return nil, customError.InvalidArgument("unknown payment method %q", request.PaymentMethod)
	}

	transfer := request.TransferMethod
	if transfer == "" {
		transfer = domain.TransferPIX
	}

	return &domain.ContractAdministrator{
		ID:                      uuid.New(),
		ContractID:              contract.ID,
		Position:                len(contract.Administrators) + 1,
		TaxID:                   utils.OnlyDigits(request.TaxID),
		Name:                    request.Name,
		ShareType:               request.ShareType,
		ShareValue:              request.ShareValue,
		InstallmentCount:        request.InstallmentCount,
		PaymentMethod:           request.PaymentMethod,
		TransferMethod:          transfer,
		DownPayment:             request.DownPayment,
		InstallmentDescriptions: request.InstallmentDescriptions,
	}, nil
}

// AddEvent registers a pending milestone. Event percentages of a contract
// never add up to more than 100.
func (s *ContractService) AddEvent(ctx context.Context, clientName, contractNumber string, request *domain.AddEventRequest) (*domain.Event, error) {
	contract, err := s.GetContract(ctx, clientName, contractNumber)
	if err != nil {
		return nil, err
	}
	if !contract.IsActive() {
		return nil, customError.WrapInvalidStateTransition("contract "+contractNumber, contract.Status, "event added")
	}

	if !request.Percentage.IsPositive() || request.Percentage.GreaterThan(hundred) {
		return nil, customError.InvalidArgument("event percentage must be in (0, 100], got %s", request.Percentage.String())
	}
	if total := contract.EventPercentageTotal().Add(request.Percentage); total.GreaterThan(hundred) {
		return nil, customError.InvalidArgument("events would sum to %s%% of the contract", total.String())
	}

	event := &domain.Event{
		ID:          contract.NextEventID(),
		ContractID:  contract.ID,
		Description: request.Description,
		Percentage:  request.Percentage,
		Status:      domain.EventStatusPending,
	}

	if err := s.ContractRepo.CreateEvent(ctx, event); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return event, nil
}

// CompleteEvent completes a milestone and stores the installment generated
// for every EVENTS administrator
func (s *ContractService) CompleteEvent(ctx context.Context, clientName, contractNumber string, eventID int, completionDate time.Time) (*domain.DistributionResult, error) {
	contract, err := s.GetContract(ctx, clientName, contractNumber)
	if err != nil {
		return nil, err
	}

	result, err := s.distributor.CompleteEvent(contract, eventID, completionDate)
	if err != nil {
		return nil, err
	}

	event, _ := contract.Event(eventID)
	if err := s.ContractRepo.CompleteEvent(ctx, event, result.Installments); err != nil {
		if errors.Is(err, repository.ErrEventAlreadyCompleted) {
			return nil, customError.WrapInvalidStateTransition(fmt.Sprintf("event %d", eventID), domain.EventStatusCompleted, domain.EventStatusCompleted)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidate(ctx, contract)
	s.logger.Info("event completed",
		slog.String("contract", contractNumber),
		slog.Int("event", eventID),
		slog.Int("installments", len(result.Installments)),
		slog.String("total", result.Total().StringFixed(2)),
	)

	return result, nil
}

// GenerateInstallments distributes the fixed-installment shares of a
// contract. It runs once per contract.
func (s *ContractService) GenerateInstallments(ctx context.Context, clientName, contractNumber string) (*domain.DistributionResult, error) {
	contract, err := s.GetContract(ctx, clientName, contractNumber)
	if err != nil {
		return nil, err
	}

	result, err := s.distributor.FixedInstallments(contract)
	if err != nil {
		return nil, err
	}

	if len(result.Installments) > 0 {
		if err := s.InstallmentRepo.CreateForContract(ctx, contract.ID, result.Installments); err != nil {
			if errors.Is(err, repository.ErrInstallmentsAlreadyGenerated) {
				return nil, customError.WrapInvalidStateTransition("contract "+contractNumber, "installments generated", "installments generated")
			}
			return nil, customError.WrapDatabaseError(err)
		}
		s.invalidate(ctx, contract)
	}

	s.logger.Info("contract installments generated",
		slog.String("contract", contractNumber),
		slog.Int("installments", len(result.Installments)),
		slog.Int("warnings", len(result.Warnings)),
	)

	return result, nil
}

// GetInstallments returns every installment of a contract, read through the
// cache when one is configured
func (s *ContractService) GetInstallments(ctx context.Context, clientName, contractNumber string) ([]*domain.Installment, error) {
	contract, err := s.GetContract(ctx, clientName, contractNumber)
	if err != nil {
		return nil, err
	}

	key := installmentsCacheKey(contract)
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, key).Bytes()
		if err == nil {
			var installments []*domain.Installment
			if err := json.Unmarshal(cached, &installments); err == nil {
				return installments, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("installment cache read failed", slog.String("error", customError.WrapCacheError(err).Error()))
		}
	}

	installments, err := s.InstallmentRepo.GetByContract(ctx, contract.ID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if s.redis != nil {
		if payload, err := json.Marshal(installments); err == nil {
			if err := s.redis.Set(ctx, key, payload, installmentsCacheTTL).Err(); err != nil {
				s.logger.Warn("installment cache write failed", slog.String("error", customError.WrapCacheError(err).Error()))
			}
		}
	}

	return installments, nil
}

// PreviewPlan splits and schedules a standalone expense without storing it
func (s *ContractService) PreviewPlan(ctx context.Context, request *domain.PreviewPlanRequest) (*domain.PreviewPlanResponse, error) {
	base, err := calendar.ParseDate(request.BaseDate)
	if err != nil {
		return nil, customError.InvalidArgument("invalid base date %q", request.BaseDate)
	}
	mode, err := request.Schedule.ToMode()
	if err != nil {
		return nil, err
	}
	if request.PayeeTaxID != "" && !utils.IsValidTaxID(request.PayeeTaxID) {
		return nil, customError.InvalidArgument("invalid CPF/CNPJ %q", request.PayeeTaxID)
	}

	in := ScheduleInput{
		BaseDate:     base,
		Mode:         mode,
		Reference:    request.Reference,
		ExpenseType:  request.ExpenseType,
		Descriptions: request.Descriptions,
	}
	meta := InstallmentMeta{
		PayeeTaxID:    utils.OnlyDigits(request.PayeeTaxID),
		PayeeName:     request.PayeeName,
		InvoiceNumber: request.InvoiceNumber,
		PaymentMethod: request.PaymentMethod,
		ReferenceNote: request.Reference,
	}

	installments, err := s.distributor.Generator().Build(request.Plan(), in, meta)
	if err != nil {
		return nil, err
	}

	return &domain.PreviewPlanResponse{
		Reference:    request.Reference,
		Total:        request.TotalAmount.Round(2),
		Installments: installments,
	}, nil
}

// PeriodPayment computes a PERCENTAGE administrator's payment for a quinzena
func (s *ContractService) PeriodPayment(ctx context.Context, clientName, contractNumber, taxID string, periodTotal decimal.Decimal) (decimal.Decimal, error) {
	contract, err := s.GetContract(ctx, clientName, contractNumber)
	if err != nil {
		return decimal.Zero, err
	}
	digits := utils.OnlyDigits(taxID)
	for _, admin := range contract.Administrators {
		if admin.TaxID == digits {
			return s.distributor.PeriodPayment(admin, periodTotal)
		}
	}
	return decimal.Zero, customError.WrapAdministratorNotFound(contractNumber, taxID)
}

func installmentsCacheKey(contract *domain.Contract) string {
	return fmt.Sprintf("contract:%s:installments", contract.ID)
}

func (s *ContractService) invalidate(ctx context.Context, contract *domain.Contract) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, installmentsCacheKey(contract)).Err(); err != nil {
		s.logger.Warn("installment cache invalidation failed", slog.String("error", customError.WrapCacheError(err).Error()))
	}
}

// Period resolves the quinzena a due date is reported in, with its
// neighbours
func (s *ContractService) Period(date time.Time, expenseType int) *domain.PeriodResponse {
	if expenseType <= 0 {
		expenseType = s.distributor.defaultExpenseType
	}
	period := calendar.ReportingPeriodForDueDate(date, expenseType, s.distributor.Generator().Today())
	return &domain.PeriodResponse{
		Date:     calendar.DateOf(date).Format(calendar.DateLayout),
		Period:   period,
		Next:     calendar.Advance(period),
		Previous: calendar.Previous(period),
	}
}
