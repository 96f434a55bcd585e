package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/segyhp/installment-engine/internal/domain"
)

// Sheet names of the legacy workbook.
const (
	SheetExpenses  = "Dados"
	SheetContracts = "Contratos_ADM"
)

const dateFormat = "02/01/2006"

// Header is the fixed column layout shared by both sheets.
var Header = []interface{}{
	"DATA", "TP_DESP", "CPF_CNPJ", "NOME", "REFERENCIA", "NF",
	"VALOR_UNIT", "DIAS", "VALOR_TOTAL", "VENCIMENTO", "CATEGORIA", "DADOS_BANCARIOS", "OBS",
}

// Build lays installments out in a new workbook: contract installments go
// to Contratos_ADM, everything else to Dados.
func Build(installments []*domain.Installment) (*excelize.File, error) {
	f := excelize.NewFile()

	expenses, err := f.NewSheet(SheetExpenses)
	if err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(SheetContracts); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, err
	}
	f.SetActiveSheet(expenses)

	next := map[string]int{SheetExpenses: 2, SheetContracts: 2}
	for _, sheet := range []string{SheetExpenses, SheetContracts} {
		if err := f.SetSheetRow(sheet, "A1", &Header); err != nil {
			f.Close()
			return nil, err
		}
	}

	for _, inst := range installments {
		sheet := SheetExpenses
		if inst.ContractNumber != "" {
			sheet = SheetContracts
		}

		cell, err := excelize.CoordinatesToCellName(1, next[sheet])
		if err != nil {
			f.Close()
			return nil, err
		}
		row := Row(inst)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing installment %s: %w", inst.ID, err)
		}
		next[sheet]++
	}

	return f, nil
}

// Row renders one installment in the legacy column order.
func Row(inst *domain.Installment) []interface{} {
	amount := inst.Amount.InexactFloat64()
	category := ""
	if inst.ContractNumber != "" {
		category = "CONTRATO " + inst.ContractNumber
	}
	return []interface{}{
		inst.ReportingPeriod.Format(dateFormat),
		inst.ExpenseType,
		inst.PayeeTaxID,
		inst.PayeeName,
		inst.Label,
		inst.InvoiceNumber,
		amount,
		1,
		amount,
		inst.DueDate.Format(dateFormat),
		category,
		inst.PaymentMethod,
		inst.ReferenceNote,
	}
}

// Write streams the workbook for installments to w.
func Write(w io.Writer, installments []*domain.Installment) error {
	f, err := Build(installments)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteTo(w)
	return err
}

// Save writes the workbook for installments to path.
func Save(path string, installments []*domain.Installment) error {
	f, err := Build(installments)
	if err != nil {
		return err
	}
	defer f.Close()

	return f.SaveAs(path)
}
