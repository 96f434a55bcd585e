package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/segyhp/installment-engine/pkg/calendar"
	customError "github.com/segyhp/installment-engine/pkg/errors"
)

const (
	ContractStatusActive   = "ACTIVE"
	ContractStatusInactive = "INACTIVE"
)

const (
	EventStatusPending   = "PENDING"
	EventStatusCompleted = "COMPLETED"
)

// Administrator share types
const (
	ShareTypePercentage = "PERCENTAGE"
	ShareTypeFixedTotal = "FIXED_TOTAL"
)

// Administrator payment methods
const (
	PaymentMethodPercentage        = "PERCENTAGE"
	PaymentMethodFixedInstallments = "FIXED_INSTALLMENTS"
	PaymentMethodEvents            = "EVENTS"
)

var hundred = decimal.NewFromInt(100)

// Contract is an administration-fee contract with its administrators and
// milestone events. Contracts are deactivated, never deleted.
type Contract struct {
	ID             uuid.UUID                `json:"id" db:"id"`
	ClientName     string                   `json:"client_name" db:"client_name"`
	ContractNumber string                   `json:"contract_number" db:"contract_number"`
	StartDate      time.Time                `json:"start_date" db:"start_date"`
	EndDate        time.Time                `json:"end_date" db:"end_date"`
	GlobalValue    decimal.Decimal          `json:"global_value" db:"global_value"`
	Status         string                   `json:"status" db:"status"`
	ExpenseType    int                      `json:"expense_type" db:"expense_type"`
	Schedule       ScheduleMode             `json:"schedule" db:"schedule"`
	Administrators []*ContractAdministrator `json:"administrators" db:"-"`
	Events         []*Event                 `json:"events" db:"-"`
	CreatedAt      time.Time                `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at" db:"updated_at"`
}

// IsActive reports whether the contract still accepts changes.
func (c *Contract) IsActive() bool {
	return c.Status == ContractStatusActive
}

// Event returns the event with the given id.
func (c *Contract) Event(id int) (*Event, bool) {
	for _, e := range c.Events {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// EventPercentageTotal sums the percentage of every event.
func (c *Contract) EventPercentageTotal() decimal.Decimal {
	total := decimal.Zero
	for _, e := range c.Events {
		total = total.Add(e.Percentage)
	}
	return total
}

// NextEventID returns the id the next event should receive.
func (c *Contract) NextEventID() int {
	next := 1
	for _, e := range c.Events {
		if e.ID >= next {
			next = e.ID + 1
		}
	}
	return next
}

// ContractAdministrator is a payee of the contract fee.
type ContractAdministrator struct {
	ID                      uuid.UUID          `json:"id" db:"id"`
	ContractID              uuid.UUID          `json:"contract_id" db:"contract_id"`
	Position                int                `json:"position" db:"position"`
	TaxID                   string             `json:"tax_id" db:"tax_id"`
	Name                    string             `json:"name" db:"name"`
	ShareType               string             `json:"share_type" db:"share_type"`
	ShareValue              decimal.Decimal    `json:"share_value" db:"share_value"`
	InstallmentCount        int                `json:"installment_count" db:"installment_count"`
	PaymentMethod           string             `json:"payment_method" db:"payment_method"`
	TransferMethod          string             `json:"transfer_method" db:"transfer_method"`
	DownPayment             *DownPaymentPolicy `json:"down_payment,omitempty" db:"down_payment"`
	InstallmentDescriptions pq.StringArray     `json:"installment_descriptions,omitempty" db:"installment_descriptions"`
}

// Share resolves the administrator's absolute share of globalValue.
func (a *ContractAdministrator) Share(globalValue decimal.Decimal) decimal.Decimal {
	if a.ShareType == ShareTypeFixedTotal {
		return a.ShareValue.Round(2)
	}
	return globalValue.Mul(a.ShareValue).Div(hundred).Round(2)
}

// SharePercent expresses the share as a percentage of globalValue.
func (a *ContractAdministrator) SharePercent(globalValue decimal.Decimal) decimal.Decimal {
	if a.ShareType == ShareTypePercentage {
		return a.ShareValue
	}
	if globalValue.IsZero() {
		return decimal.Zero
	}
	return a.ShareValue.Mul(hundred).Div(globalValue)
}

// Event is a contract milestone. Completing it bills every EVENTS
// administrator for its percentage.
type Event struct {
	ID             int             `json:"id" db:"event_id"`
	ContractID     uuid.UUID       `json:"contract_id" db:"contract_id"`
	Description    string          `json:"description" db:"description"`
	Percentage     decimal.Decimal `json:"percentage" db:"percentage"`
	Status         string          `json:"status" db:"status"`
	CompletionDate *time.Time      `json:"completion_date,omitempty" db:"completion_date"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// Transition moves the event to status. PENDING -> COMPLETED is the only
// permitted move.
func (e *Event) Transition(to string, at time.Time) error {
	if e.Status != EventStatusPending || to != EventStatusCompleted {
		return customError.WrapInvalidStateTransition(fmt.Sprintf("event %d", e.ID), e.Status, to)
	}
	completed := calendar.DateOf(at)
	e.Status = EventStatusCompleted
	e.CompletionDate = &completed
	return nil
}

// Value stores the schedule mode as JSON.
func (m ScheduleMode) Value() (driver.Value, error) {
	return marshalJSON(m)
}

// Scan reads a JSON schedule mode.
func (m *ScheduleMode) Scan(src interface{}) error {
	return scanJSON(src, m)
}

// Value stores the policy as JSON.
func (p DownPaymentPolicy) Value() (driver.Value, error) {
	return marshalJSON(p)
}

// Scan reads a JSON down payment policy.
func (p *DownPaymentPolicy) Scan(src interface{}) error {
	return scanJSON(src, p)
}

// lib/pq sends []byte as bytea, so jsonb columns get a string.
func marshalJSON(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func scanJSON(src interface{}, dst interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("cannot scan %T as JSON", src)
	}
}

// Request DTOs

type CreateContractRequest struct {
	ClientName     string          `json:"client_name" validate:"required"`
	ContractNumber string          `json:"contract_number" validate:"required"`
	StartDate      string          `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate        string          `json:"end_date" validate:"required,datetime=2006-01-02"`
	GlobalValue    decimal.Decimal `json:"global_value" validate:"decimal_gt=0"`
	ExpenseType    int             `json:"expense_type" validate:"omitempty,gte=1,lte=7"`
	Schedule       ScheduleRequest `json:"schedule"`
}

// ToContract builds an active contract from the request.
func (r *CreateContractRequest) ToContract() (*Contract, error) {
	start, err := calendar.ParseDate(r.StartDate)
	if err != nil {
		return nil, customError.InvalidArgument("invalid start date %q", r.StartDate)
	}
	end, err := calendar.ParseDate(r.EndDate)
	if err != nil {
		return nil, customError.InvalidArgument("invalid end date %q", r.EndDate)
	}
	if end.Before(start) {
		return nil, customError.InvalidArgument("end date %s is before start date %s", r.EndDate, r.StartDate)
	}
	if !r.GlobalValue.IsPositive() {
		return nil, customError.InvalidArgument("global value must be greater than 0")
	}
	mode, err := r.Schedule.ToMode()
	if err != nil {
		return nil, err
	}

	return &Contract{
		ID:             uuid.New(),
		ClientName:     r.ClientName,
		ContractNumber: r.ContractNumber,
		StartDate:      start,
		EndDate:        end,
		GlobalValue:    r.GlobalValue.Round(2),
		Status:         ContractStatusActive,
		ExpenseType:    r.ExpenseType,
		Schedule:       mode,
	}, nil
}

type AddAdministratorRequest struct {
	TaxID                   string             `json:"tax_id" validate:"required,taxid"`
	Name                    string             `json:"name" validate:"required"`
	ShareType               string             `json:"share_type" validate:"required,oneof=PERCENTAGE FIXED_TOTAL"`
	ShareValue              decimal.Decimal    `json:"share_value" validate:"decimal_gt=0"`
	InstallmentCount        int                `json:"installment_count" validate:"gte=0"`
	PaymentMethod           string             `json:"payment_method" validate:"required,oneof=PERCENTAGE FIXED_INSTALLMENTS EVENTS"`
	TransferMethod          string             `json:"transfer_method" validate:"omitempty,oneof=PIX WIRE_TRANSFER"`
	DownPayment             *DownPaymentPolicy `json:"down_payment,omitempty"`
	InstallmentDescriptions []string           `json:"installment_descriptions,omitempty"`
}

type AddAdministratorResponse struct {
	Administrator *ContractAdministrator `json:"administrator"`
	Warnings      []Warning              `json:"warnings,omitempty"`
}

type AddEventRequest struct {
	Description string          `json:"description" validate:"required"`
	Percentage  decimal.Decimal `json:"percentage" validate:"decimal_gt=0"`
}

type CompleteEventRequest struct {
	CompletionDate string `json:"completion_date" validate:"required,datetime=2006-01-02"`
}
