package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/installment-engine/pkg/calendar"
	customError "github.com/segyhp/installment-engine/pkg/errors"
)

// Schedule modes
const (
	ScheduleFixedIntervalDays = "FIXED_INTERVAL_DAYS"
	ScheduleExplicitDates     = "EXPLICIT_DATES"
	ScheduleCreditCardDueDay  = "CREDIT_CARD_DUE_DAY"
)

// Down payment modes
const (
	DownPaymentPercentage  = "PERCENTAGE"
	DownPaymentEqualSplit  = "EQUAL_SPLIT"
	DownPaymentFixedAmount = "FIXED_AMOUNT"
)

// ScheduleMode selects how due dates are spread. Only the field matching
// Kind is read.
type ScheduleMode struct {
	Kind         string      `json:"kind" validate:"required,oneof=FIXED_INTERVAL_DAYS EXPLICIT_DATES CREDIT_CARD_DUE_DAY"`
	IntervalDays int         `json:"interval_days,omitempty"`
	Dates        []time.Time `json:"dates,omitempty"`
	DueDay       int         `json:"due_day,omitempty"`
}

// FixedInterval builds a FIXED_INTERVAL_DAYS mode.
func FixedInterval(days int) ScheduleMode {
	return ScheduleMode{Kind: ScheduleFixedIntervalDays, IntervalDays: days}
}

// ExplicitDates builds an EXPLICIT_DATES mode.
func ExplicitDates(dates ...time.Time) ScheduleMode {
	return ScheduleMode{Kind: ScheduleExplicitDates, Dates: dates}
}

// CreditCardDueDay builds a CREDIT_CARD_DUE_DAY mode.
func CreditCardDueDay(day int) ScheduleMode {
	return ScheduleMode{Kind: ScheduleCreditCardDueDay, DueDay: day}
}

// Validate checks the parameters of the selected kind.
func (m ScheduleMode) Validate() error {
	switch m.Kind {
	case ScheduleFixedIntervalDays:
		if m.IntervalDays <= 0 {
			return customError.InvalidArgument("interval days must be greater than 0, got %d", m.IntervalDays)
		}
	case ScheduleExplicitDates:
		if len(m.Dates) == 0 {
			return customError.InvalidArgument("explicit schedule needs at least one date")
		}
	case ScheduleCreditCardDueDay:
		if m.DueDay < 1 || m.DueDay > 31 {
			return customError.InvalidArgument("due day must be between 1 and 31, got %d", m.DueDay)
		}
	default:
		return customError.InvalidArgument("unknown schedule mode %q", m.Kind)
	}
	return nil
}

// DownPaymentPolicy describes the entrada taken before the regular
// installments. Value is a percentage for PERCENTAGE, an amount for
// FIXED_AMOUNT and ignored for EQUAL_SPLIT.
type DownPaymentPolicy struct {
	Mode   string          `json:"mode" validate:"required,oneof=PERCENTAGE EQUAL_SPLIT FIXED_AMOUNT"`
	Amount decimal.Decimal `json:"value"`
}

// InstallmentPlan is the monetary side of a schedule. InstallmentCount
// excludes the down payment.
type InstallmentPlan struct {
	TotalAmount      decimal.Decimal    `json:"total_amount"`
	InstallmentCount int                `json:"installment_count"`
	DownPayment      *DownPaymentPolicy `json:"down_payment,omitempty"`
}

// HasDownPayment reports whether the plan starts with an entrada.
func (p InstallmentPlan) HasDownPayment() bool {
	return p.DownPayment != nil
}

// ScheduleEntry is a dated, labelled slot before an amount is attached.
type ScheduleEntry struct {
	Index           int                 `json:"index"`
	DueDate         time.Time           `json:"due_date"`
	ReportingPeriod calendar.PeriodDate `json:"reporting_period"`
	Label           string              `json:"label"`
	IsDownPayment   bool                `json:"is_down_payment"`
}
