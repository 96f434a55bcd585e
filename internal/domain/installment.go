package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/installment-engine/pkg/calendar"
	customError "github.com/segyhp/installment-engine/pkg/errors"
)

// Transfer methods
const (
	TransferPIX  = "PIX"
	TransferWire = "WIRE_TRANSFER"
)

// Label suffixes
const (
	LabelDownPayment = "DOWN PAYMENT"
	LabelInstallment = "INSTALLMENT"
	LabelParcela     = "PARCELA"
)

// Installment is one payable line. It is never modified after creation.
type Installment struct {
	ID              uuid.UUID           `json:"id" db:"id"`
	ContractID      *uuid.UUID          `json:"contract_id,omitempty" db:"contract_id"`
	ContractNumber  string              `json:"contract_number,omitempty" db:"contract_number"`
	EventID         *int                `json:"event_id,omitempty" db:"event_id"`
	Index           int                 `json:"index" db:"installment_index"`
	ReportingPeriod calendar.PeriodDate `json:"reporting_period" db:"reporting_period"`
	DueDate         time.Time           `json:"due_date" db:"due_date"`
	Amount          decimal.Decimal     `json:"amount" db:"amount"`
	Label           string              `json:"label" db:"label"`
	ReferenceNote   string              `json:"reference_note" db:"reference_note"`
	InvoiceNumber   string              `json:"invoice_number" db:"invoice_number"`
	PaymentMethod   string              `json:"payment_method" db:"payment_method"`
	PayeeTaxID      string              `json:"payee_tax_id" db:"payee_tax_id"`
	PayeeName       string              `json:"payee_name" db:"payee_name"`
	ExpenseType     int                 `json:"expense_type" db:"expense_type"`
	CreatedAt       time.Time           `json:"created_at" db:"created_at"`
}

// Warning is a non-fatal finding the caller may confirm and proceed past.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Warning codes
const (
	WarningShareOver100 = "SHARE_OVER_100"
)

// DistributionResult carries generated installments and any warnings raised
// while producing them.
type DistributionResult struct {
	Installments []*Installment `json:"installments"`
	Warnings     []Warning      `json:"warnings,omitempty"`
}

// HasWarnings reports whether the caller should ask for confirmation.
func (r *DistributionResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Total sums every installment amount.
func (r *DistributionResult) Total() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range r.Installments {
		total = total.Add(inst.Amount)
	}
	return total
}

// PreviewPlanRequest asks for a standalone expense schedule.
type PreviewPlanRequest struct {
	Reference        string             `json:"reference" validate:"required"`
	PayeeTaxID       string             `json:"payee_tax_id" validate:"omitempty,taxid"`
	PayeeName        string             `json:"payee_name"`
	InvoiceNumber    string             `json:"invoice_number"`
	ExpenseType      int                `json:"expense_type" validate:"gte=1,lte=7"`
	PaymentMethod    string             `json:"payment_method" validate:"required,oneof=PIX WIRE_TRANSFER"`
	TotalAmount      decimal.Decimal    `json:"total_amount" validate:"decimal_gt=0"`
	InstallmentCount int                `json:"installment_count" validate:"required,gt=0"`
	DownPayment      *DownPaymentPolicy `json:"down_payment,omitempty"`
	BaseDate         string             `json:"base_date" validate:"required,datetime=2006-01-02"`
	Schedule         ScheduleRequest    `json:"schedule"`
	Descriptions     []string           `json:"descriptions,omitempty"`
}

// ScheduleRequest is the JSON form of ScheduleMode, with dates as strings.
type ScheduleRequest struct {
	Kind         string   `json:"kind" validate:"required,oneof=FIXED_INTERVAL_DAYS EXPLICIT_DATES CREDIT_CARD_DUE_DAY"`
	IntervalDays int      `json:"interval_days,omitempty"`
	Dates        []string `json:"dates,omitempty" validate:"dive,datetime=2006-01-02"`
	DueDay       int      `json:"due_day,omitempty"`
}

// ToMode converts the request into a ScheduleMode.
func (r ScheduleRequest) ToMode() (ScheduleMode, error) {
	mode := ScheduleMode{Kind: r.Kind, IntervalDays: r.IntervalDays, DueDay: r.DueDay}
	for _, s := range r.Dates {
		d, err := calendar.ParseDate(s)
		if err != nil {
			return ScheduleMode{}, customError.InvalidArgument("invalid schedule date %q", s)
		}
		mode.Dates = append(mode.Dates, d)
	}
	return mode, mode.Validate()
}

// Plan extracts the monetary side of the request.
func (r *PreviewPlanRequest) Plan() InstallmentPlan {
	return InstallmentPlan{
		TotalAmount:      r.TotalAmount,
		InstallmentCount: r.InstallmentCount,
		DownPayment:      r.DownPayment,
	}
}

type PreviewPlanResponse struct {
	Reference    string          `json:"reference"`
	Total        decimal.Decimal `json:"total"`
	Installments []*Installment  `json:"installments"`
}

type PeriodResponse struct {
	Date     string              `json:"date"`
	Period   calendar.PeriodDate `json:"period"`
	Next     calendar.PeriodDate `json:"next"`
	Previous calendar.PeriodDate `json:"previous"`
}
