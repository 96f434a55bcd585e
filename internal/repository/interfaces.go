package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/segyhp/installment-engine/internal/domain"
	"github.com/segyhp/installment-engine/pkg/calendar"
)

// ContractRepository defines the interface for contract data operations
type ContractRepository interface {
	// Create creates a new contract. Returns ErrContractExists when the
	// client already has a contract with that number.
	Create(ctx context.Context, contract *domain.Contract) error

	// GetByNumber retrieves a contract with its administrators and events.
	// Returns sql.ErrNoRows when it does not exist.
	GetByNumber(ctx context.Context, clientName, contractNumber string) (*domain.Contract, error)

	// UpdateStatus updates the status of a contract
	UpdateStatus(ctx context.Context, contractID uuid.UUID, status string) error

	// AddAdministrator appends an administrator to a contract
	AddAdministrator(ctx context.Context, admin *domain.ContractAdministrator) error

	// CreateEvent creates a pending event
	CreateEvent(ctx context.Context, event *domain.Event) error

	// CompleteEvent stores the completed event together with the
	// installments it generated
	CompleteEvent(ctx context.Context, event *domain.Event, installments []*domain.Installment) error
}

// InstallmentRepository defines the interface for installment data operations
type InstallmentRepository interface {
	// CreateForContract stores the generated installments of a contract in a
	// single transaction. Returns ErrInstallmentsAlreadyGenerated when the
	// contract already has installments outside of events.
	CreateForContract(ctx context.Context, contractID uuid.UUID, installments []*domain.Installment) error

	// GetByContract retrieves every installment of a contract
	GetByContract(ctx context.Context, contractID uuid.UUID) ([]*domain.Installment, error)

	// GetByPeriod retrieves installments reported in the given quinzena
	GetByPeriod(ctx context.Context, period calendar.PeriodDate) ([]*domain.Installment, error)
}
