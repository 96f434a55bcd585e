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

// ScheduleInput describes the installments to date and label.
type ScheduleInput struct {
	BaseDate       time.Time
	Mode           domain.ScheduleMode
	Count          int
	HasDownPayment bool
	Reference      string
	ExpenseType    int
	// Word used in generic labels, INSTALLMENT unless set.
	LabelWord string
	// Descriptions override the generic label of installment i (1-based) at
	// position i-1 when non-empty.
	Descriptions []string
}

// InstallmentMeta is copied onto every generated installment.
type InstallmentMeta struct {
	ContractID     *uuid.UUID
	ContractNumber string
	EventID        *int
	PayeeTaxID     string
	PayeeName      string
	InvoiceNumber  string
	PaymentMethod  string
	ReferenceNote  string
}

// ScheduleGenerator turns a schedule mode into business-day adjusted due
// dates and quinzena reporting periods.
type ScheduleGenerator struct {
	calendar *calendar.BusinessCalendar
	now      func() time.Time
}

func NewScheduleGenerator(cal *calendar.BusinessCalendar, now func() time.Time) *ScheduleGenerator {
	if cal == nil {
		cal = calendar.NewBusinessCalendar(calendar.DefaultHolidays)
	}
	if now == nil {
		now = time.Now
	}
	return &ScheduleGenerator{calendar: cal, now: now}
}

// Calendar returns the business calendar used for due-date adjustment.
func (g *ScheduleGenerator) Calendar() *calendar.BusinessCalendar {
	return g.calendar
}

// Today returns the current calendar day.
func (g *ScheduleGenerator) Today() time.Time {
	return calendar.DateOf(g.now())
}

// Generate produces one entry per installment, preceded by the down payment
// entry (index 0) when in.HasDownPayment is set.
func (g *ScheduleGenerator) Generate(in ScheduleInput) ([]domain.ScheduleEntry, error) {
	if in.Count <= 0 {
		return nil, customError.InvalidArgument("installment count must be greater than 0, got %d", in.Count)
	}
	if err := in.Mode.Validate(); err != nil {
		return nil, err
	}
	if in.Mode.Kind == domain.ScheduleExplicitDates && len(in.Mode.Dates) != in.Count {
		return nil, customError.WrapCountMismatch(in.Count, len(in.Mode.Dates))
	}

	base := calendar.DateOf(in.BaseDate)
	today := g.Today()
	word := in.LabelWord
	if word == "" {
		word = domain.LabelInstallment
	}

	entries := make([]domain.ScheduleEntry, 0, in.Count+1)

	// The down payment is due on the purchase date and reported in the open
	// period, never in one already closed.
	if in.HasDownPayment {
		entries = append(entries, domain.ScheduleEntry{
			Index:           0,
			DueDate:         base,
			ReportingPeriod: calendar.NextPeriodDate(today),
			Label:           label(in.Reference, domain.LabelDownPayment),
			IsDownPayment:   true,
		})
	}

	firstCardMonth := firstCreditCardMonth(base, in.Mode.DueDay)

	for i := 1; i <= in.Count; i++ {
		var due time.Time
		switch in.Mode.Kind {
		case domain.ScheduleFixedIntervalDays:
			due = base.AddDate(0, 0, i*in.Mode.IntervalDays)
		case domain.ScheduleExplicitDates:
			due = calendar.DateOf(in.Mode.Dates[i-1])
		case domain.ScheduleCreditCardDueDay:
			due = utils.AddMonthsClamped(base, firstCardMonth+i-1, in.Mode.DueDay)
		}
		due = g.calendar.NextBusinessDay(due)

		text := fmt.Sprintf("%s %d/%d", word, i, in.Count)
		if i <= len(in.Descriptions) && in.Descriptions[i-1] != "" {
			text = in.Descriptions[i-1]
		}

		entries = append(entries, domain.ScheduleEntry{
			Index:           i,
			DueDate:         due,
			ReportingPeriod: calendar.ReportingPeriodForDueDate(due, in.ExpenseType, today),
			Label:           label(in.Reference, text),
		})
	}

	return entries, nil
}

// firstCreditCardMonth returns how many months after the purchase the first
// invoice falls due: one, or two when the due day of the following month
// would come less than a full month after the purchase.
func firstCreditCardMonth(base time.Time, dueDay int) int {
	if dueDay < 1 {
		return 1
	}
	oneMonthLater := utils.AddMonthsClamped(base, 1, base.Day())
	if utils.AddMonthsClamped(base, 1, dueDay).Before(oneMonthLater) {
		return 2
	}
	return 1
}

func label(reference, text string) string {
	if reference == "" {
		return text
	}
	return reference + " - " + text
}

// SplitPlan applies the plan's down payment policy and verifies that the
// parts add up to the total.
func SplitPlan(plan domain.InstallmentPlan) (decimal.Decimal, []decimal.Decimal, error) {
	var (
		down  decimal.Decimal
		parts []decimal.Decimal
		err   error
	)

	if !plan.HasDownPayment() {
		parts, err = utils.SplitEven(plan.TotalAmount, plan.InstallmentCount)
	} else {
		switch plan.DownPayment.Mode {
		case domain.DownPaymentPercentage:
			down, parts, err = utils.SplitWithPercentageDownPayment(plan.TotalAmount, plan.InstallmentCount, plan.DownPayment.Amount)
		case domain.DownPaymentFixedAmount:
			down, parts, err = utils.SplitWithFixedDownPayment(plan.TotalAmount, plan.InstallmentCount, plan.DownPayment.Amount)
		case domain.DownPaymentEqualSplit:
			down, parts, err = utils.SplitWithEqualDownPayment(plan.TotalAmount, plan.InstallmentCount)
		default:
			err = customError.InvalidArgument("unknown down payment mode %q", plan.DownPayment.Mode)
		}
	}
	if err != nil {
		return decimal.Zero, nil, err
	}

	if err := utils.CheckSum(plan.TotalAmount, down, parts); err != nil {
		return decimal.Zero, nil, err
	}
	return down, parts, nil
}

// Build splits the plan and schedules it, returning one installment per
// schedule entry.
func (g *ScheduleGenerator) Build(plan domain.InstallmentPlan, in ScheduleInput, meta InstallmentMeta) ([]*domain.Installment, error) {
	down, parts, err := SplitPlan(plan)
	if err != nil {
		return nil, err
	}

	in.Count = plan.InstallmentCount
	in.HasDownPayment = plan.HasDownPayment()
	entries, err := g.Generate(in)
	if err != nil {
		return nil, err
	}

	paymentMethod := meta.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = domain.TransferPIX
	}
	createdAt := g.now()

	installments := make([]*domain.Installment, 0, len(entries))
	for _, entry := range entries {
		amount := down
		if !entry.IsDownPayment {
			amount = parts[entry.Index-1]
		}
		installments = append(installments, &domain.Installment{
			ID:              uuid.New(),
			ContractID:      meta.ContractID,
			ContractNumber:  meta.ContractNumber,
			EventID:         meta.EventID,
			Index:           entry.Index,
			ReportingPeriod: entry.ReportingPeriod,
			DueDate:         entry.DueDate,
			Amount:          amount,
			Label:           entry.Label,
			ReferenceNote:   meta.ReferenceNote,
			InvoiceNumber:   meta.InvoiceNumber,
			PaymentMethod:   paymentMethod,
			PayeeTaxID:      meta.PayeeTaxID,
			PayeeName:       meta.PayeeName,
			ExpenseType:     in.ExpenseType,
			CreatedAt:       createdAt,
		})
	}

	return installments, nil
}
