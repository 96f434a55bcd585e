package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/installment-engine/internal/domain"
	"github.com/segyhp/installment-engine/pkg/calendar"
	customError "github.com/segyhp/installment-engine/pkg/errors"
	"github.com/segyhp/installment-engine/pkg/utils"
)

// DefaultEventOffsetDays is how long after an event's completion its
// payments fall due.
const DefaultEventOffsetDays = 30

var (
	hundred     = decimal.NewFromInt(100)
	tenThousand = decimal.NewFromInt(10000)
)

// Distributor computes what each contract administrator is owed.
type Distributor struct {
	generator          *ScheduleGenerator
	eventOffsetDays    int
	defaultExpenseType int
}

func NewDistributor(generator *ScheduleGenerator, eventOffsetDays, defaultExpenseType int) *Distributor {
	if eventOffsetDays <= 0 {
		eventOffsetDays = DefaultEventOffsetDays
	}
	return &Distributor{
		generator:          generator,
		eventOffsetDays:    eventOffsetDays,
		defaultExpenseType: defaultExpenseType,
	}
}

// Generator exposes the schedule generator the distributor schedules with.
func (d *Distributor) Generator() *ScheduleGenerator {
	return d.generator
}

func (d *Distributor) expenseType(contract *domain.Contract) int {
	if contract.ExpenseType > 0 {
		return contract.ExpenseType
	}
	return d.defaultExpenseType
}

// ValidateShares warns when the administrators' shares add up to more than
// the contract's global value.
func (d *Distributor) ValidateShares(contract *domain.Contract) []domain.Warning {
	total := decimal.Zero
	for _, admin := range contract.Administrators {
		total = total.Add(admin.SharePercent(contract.GlobalValue))
	}
	if total.GreaterThan(hundred) {
		return []domain.Warning{{
			Code:    domain.WarningShareOver100,
			Message: fmt.Sprintf("administrator shares sum to %s%% of the contract value", total.StringFixed(2)),
		}}
	}
	return nil
}

// FixedInstallments schedules the share of every FIXED_INSTALLMENTS
// administrator over the contract's schedule, starting at its start date.
func (d *Distributor) FixedInstallments(contract *domain.Contract) (*domain.DistributionResult, error) {
	if !contract.IsActive() {
		return nil, customError.WrapInvalidStateTransition("contract "+contract.ContractNumber, contract.Status, "installments generated")
	}

	result := &domain.DistributionResult{Warnings: d.ValidateShares(contract)}
	expenseType := d.expenseType(contract)
	contractID := contract.ID

	for _, admin := range contract.Administrators {
		if admin.PaymentMethod != domain.PaymentMethodFixedInstallments {
			continue
		}
		if admin.InstallmentCount <= 0 {
			return nil, customError.InvalidArgument("administrator %s has no installment count", admin.Name)
		}

		plan := domain.InstallmentPlan{
			TotalAmount:      admin.Share(contract.GlobalValue),
			InstallmentCount: admin.InstallmentCount,
			DownPayment:      admin.DownPayment,
		}
		in := ScheduleInput{
			BaseDate:     contract.StartDate,
			Mode:         contract.Schedule,
			Reference:    contract.ContractNumber,
			ExpenseType:  expenseType,
			LabelWord:    domain.LabelParcela,
			Descriptions: admin.InstallmentDescriptions,
		}
		meta := InstallmentMeta{
			ContractID:     &contractID,
			ContractNumber: contract.ContractNumber,
			PayeeTaxID:     admin.TaxID,
			PayeeName:      admin.Name,
			PaymentMethod:  admin.TransferMethod,
			ReferenceNote:  contract.ClientName,
		}

		installments, err := d.generator.Build(plan, in, meta)
		if err != nil {
			return nil, err
		}
		result.Installments = append(result.Installments, installments...)
	}

	return result, nil
}

// EventAmount is the administrator's cut of an event: share% x event% x
// global value, or fixed total x event% for fixed-total shares.
func EventAmount(admin *domain.ContractAdministrator, event *domain.Event, globalValue decimal.Decimal) decimal.Decimal {
	if admin.ShareType == domain.ShareTypeFixedTotal {
		return admin.ShareValue.Mul(event.Percentage).Div(hundred).Round(2)
	}
	return globalValue.Mul(admin.ShareValue).Mul(event.Percentage).Div(tenThousand).Round(2)
}

// CompleteEvent moves the event to COMPLETED and bills every EVENTS
// administrator once, due eventOffsetDays after completion.
func (d *Distributor) CompleteEvent(contract *domain.Contract, eventID int, completionDate time.Time) (*domain.DistributionResult, error) {
	if !contract.IsActive() {
		return nil, customError.WrapInvalidStateTransition("contract "+contract.ContractNumber, contract.Status, "event completed")
	}
	event, ok := contract.Event(eventID)
	if !ok {
		return nil, customError.WrapEventNotFound(contract.ContractNumber, eventID)
	}

	// Validate the amounts before touching the event state.
	amounts := make([]decimal.Decimal, len(contract.Administrators))
	for i, admin := range contract.Administrators {
		if admin.PaymentMethod != domain.PaymentMethodEvents {
			continue
		}
		amount := EventAmount(admin, event, contract.GlobalValue)
		if !amount.IsPositive() {
			return nil, customError.InvalidArgument("event %d yields no payment for administrator %s", event.ID, admin.Name)
		}
		amounts[i] = amount
	}

	if err := event.Transition(domain.EventStatusCompleted, completionDate); err != nil {
		return nil, err
	}

	due := d.generator.Calendar().NextBusinessDay(event.CompletionDate.AddDate(0, 0, d.eventOffsetDays))
	period := calendar.ReportingPeriodForDueDate(due, d.expenseType(contract), d.generator.Today())
	createdAt := d.generator.now()
	contractID := contract.ID
	eventID = event.ID

	result := &domain.DistributionResult{Warnings: d.ValidateShares(contract)}
	for i, admin := range contract.Administrators {
		amount := amounts[i]
		if amount.IsZero() {
			continue
		}
		paymentMethod := admin.TransferMethod
		if paymentMethod == "" {
			paymentMethod = domain.TransferPIX
		}
		result.Installments = append(result.Installments, &domain.Installment{
			ID:              uuid.New(),
			ContractID:      &contractID,
			ContractNumber:  contract.ContractNumber,
			EventID:         &eventID,
			Index:           1,
			ReportingPeriod: period,
			DueDate:         due,
			Amount:          amount,
			Label:           label(contract.ContractNumber, fmt.Sprintf("EVENT %d: %s", event.ID, event.Description)),
			ReferenceNote:   fmt.Sprintf("%s%% of %s", event.Percentage.String(), contract.GlobalValue.StringFixed(2)),
			PaymentMethod:   paymentMethod,
			PayeeTaxID:      admin.TaxID,
			PayeeName:       admin.Name,
			ExpenseType:     d.expenseType(contract),
			CreatedAt:       createdAt,
		})
	}

	return result, nil
}

// PeriodPayment is the quinzena payment of a PERCENTAGE administrator given
// the period's expense total.
func (d *Distributor) PeriodPayment(admin *domain.ContractAdministrator, periodTotal decimal.Decimal) (decimal.Decimal, error) {
	if admin.PaymentMethod != domain.PaymentMethodPercentage || admin.ShareType != domain.ShareTypePercentage {
		return decimal.Zero, customError.InvalidArgument("administrator %s is not paid by percentage", admin.Name)
	}
	if periodTotal.IsNegative() {
		return decimal.Zero, customError.InvalidArgument("period total must not be negative, got %s", periodTotal.StringFixed(2))
	}
	return utils.Percent(periodTotal, admin.ShareValue), nil
}
