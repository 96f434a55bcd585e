package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/installment-engine/internal/domain"
	"github.com/segyhp/installment-engine/pkg/calendar"
)

var (
	// ErrEventAlreadyCompleted is returned when the stored event is no longer
	// pending.
	ErrEventAlreadyCompleted = errors.New("event already completed")

	// ErrInstallmentsAlreadyGenerated is returned when the contract already
	// holds installments that do not come from an event.
	ErrInstallmentsAlreadyGenerated = errors.New("contract installments already generated")
)

const installmentColumns = `id, contract_id, contract_number, event_id, installment_index, reporting_period, due_date, amount, label,
		reference_note, invoice_number, payment_method, payee_tax_id, payee_name, expense_type, created_at`

type installmentRepository struct {
	db *sqlx.DB
}

func NewInstallmentRepository(db *sqlx.DB) InstallmentRepository {
	return &installmentRepository{db: db}
}

func insertInstallments(ctx context.Context, tx *sqlx.Tx, installments []*domain.Installment) error {
	query := `
		INSERT INTO installments (` + installmentColumns + `)
		VALUES (:id, :contract_id, :contract_number, :event_id, :installment_index, :reporting_period, :due_date, :amount, :label,
		        :reference_note, :invoice_number, :payment_method, :payee_tax_id, :payee_name, :expense_type, :created_at)
	`

	for _, installment := range installments {
		if _, err := tx.NamedExecContext(ctx, query, installment); err != nil {
			return err
		}
	}
	return nil
}

func (r *installmentRepository) CreateForContract(ctx context.Context, contractID uuid.UUID, installments []*domain.Installment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Locking the contract row serializes concurrent generations.
	var locked uuid.UUID
	if err := tx.GetContext(ctx, &locked, `SELECT id FROM contracts WHERE id = $1 FOR UPDATE`, contractID); err != nil {
		return err
	}

	var generated bool
	if err := tx.GetContext(ctx, &generated, `
		SELECT EXISTS (SELECT 1 FROM installments WHERE contract_id = $1 AND event_id IS NULL)
	`, contractID); err != nil {
		return err
	}
	if generated {
		return ErrInstallmentsAlreadyGenerated
	}

	if err := insertInstallments(ctx, tx, installments); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *installmentRepository) GetByContract(ctx context.Context, contractID uuid.UUID) ([]*domain.Installment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM installments
		WHERE contract_id = $1
		ORDER BY due_date, payee_name, installment_index
	`

	var installments []*domain.Installment
	if err := r.db.SelectContext(ctx, &installments, query, contractID); err != nil {
		return nil, err
	}

	return installments, nil
}

func (r *installmentRepository) GetByPeriod(ctx context.Context, period calendar.PeriodDate) ([]*domain.Installment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM installments
		WHERE reporting_period = $1
		ORDER BY contract_number, due_date, installment_index
	`

	var installments []*domain.Installment
	if err := r.db.SelectContext(ctx, &installments, query, period); err != nil {
		return nil, err
	}

	return installments, nil
}
