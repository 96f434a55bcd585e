package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/segyhp/installment-engine/internal/domain"
)

// ErrContractExists is returned when another contract already uses the
// client name and contract number.
var ErrContractExists = errors.New("contract already exists")

// uniqueViolation is the postgres SQLSTATE for unique_violation.
const uniqueViolation = pq.ErrorCode("23505")

type contractRepository struct {
	db *sqlx.DB
}

func NewContractRepository(db *sqlx.DB) ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) Create(ctx context.Context, contract *domain.Contract) error {
	query := `
		INSERT INTO contracts (id, client_name, contract_number, start_date, end_date, global_value, status, expense_type, schedule, created_at, updated_at)
		VALUES (:id, :client_name, :contract_number, :start_date, :end_date, :global_value, :status, :expense_type, :schedule, :created_at, :updated_at)
	`

	now := time.Now()
	contract.CreatedAt = now
	contract.UpdatedAt = now

	_, err := r.db.NamedExecContext(ctx, query, contract)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrContractExists
	}
	return err
}

func (r *contractRepository) GetByNumber(ctx context.Context, clientName, contractNumber string) (*domain.Contract, error) {
	query := `
		SELECT id, client_name, contract_number, start_date, end_date, global_value, status, expense_type, schedule, created_at, updated_at
		FROM contracts
		WHERE client_name = $1 AND contract_number = $2
	`

	var contract domain.Contract
	if err := r.db.GetContext(ctx, &contract, query, clientName, contractNumber); err != nil {
		return nil, err
	}

	adminQuery := `
		SELECT id, contract_id, position, tax_id, name, share_type, share_value, installment_count,
		       payment_method, transfer_method, down_payment, installment_descriptions
		FROM contract_administrators
		WHERE contract_id = $1
		ORDER BY position
	`
	if err := r.db.SelectContext(ctx, &contract.Administrators, adminQuery, contract.ID); err != nil {
		return nil, err
	}

	eventQuery := `
		SELECT event_id, contract_id, description, percentage, status, completion_date, created_at
		FROM contract_events
		WHERE contract_id = $1
		ORDER BY event_id
	`
	if err := r.db.SelectContext(ctx, &contract.Events, eventQuery, contract.ID); err != nil {
		return nil, err
	}

	return &contract, nil
}

func (r *contractRepository) UpdateStatus(ctx context.Context, contractID uuid.UUID, status string) error {
	query := `
		UPDATE contracts
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, contractID, status, time.Now())
	return err
}

func (r *contractRepository) AddAdministrator(ctx context.Context, admin *domain.ContractAdministrator) error {
	query := `
		INSERT INTO contract_administrators (id, contract_id, position, tax_id, name, share_type, share_value, installment_count,
		                                     payment_method, transfer_method, down_payment, installment_descriptions)
		VALUES (:id, :contract_id, :position, :tax_id, :name, :share_type, :share_value, :installment_count,
		        :payment_method, :transfer_method, :down_payment, :installment_descriptions)
	`

	_, err := r.db.NamedExecContext(ctx, query, admin)
	return err
}

func (r *contractRepository) CreateEvent(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO contract_events (event_id, contract_id, description, percentage, status, completion_date, created_at)
		VALUES (:event_id, :contract_id, :description, :percentage, :status, :completion_date, :created_at)
	`

	event.CreatedAt = time.Now()
	_, err := r.db.NamedExecContext(ctx, query, event)
	return err
}

func (r *contractRepository) CompleteEvent(ctx context.Context, event *domain.Event, installments []*domain.Installment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// The status guard keeps a concurrent completion from billing twice.
	res, err := tx.ExecContext(ctx, `
		UPDATE contract_events
		SET status = $3, completion_date = $4
		WHERE contract_id = $1 AND event_id = $2 AND status = 'PENDING'
	`, event.ContractID, event.ID, event.Status, event.CompletionDate)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrEventAlreadyCompleted
	}

	if err := insertInstallments(ctx, tx, installments); err != nil {
		return err
	}

	return tx.Commit()
}
