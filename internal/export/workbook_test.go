package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/segyhp/installment-engine/internal/domain"
	"github.com/segyhp/installment-engine/pkg/calendar"
)

func testInstallments(t *testing.T) []*domain.Installment {
	t.Helper()
	period, err := calendar.ParsePeriodDate("2024-03-05")
	require.NoError(t, err)
	contractID := uuid.New()

	return []*domain.Installment{
		{
			ID:              uuid.New(),
			Index:           1,
			ReportingPeriod: period,
			DueDate:         calendar.Date(2024, 3, 11),
			Amount:          decimal.RequireFromString("333.34"),
			Label:           "Cimento - INSTALLMENT 3/3",
			ReferenceNote:   "Cimento",
			InvoiceNumber:   "4455",
			PaymentMethod:   domain.TransferPIX,
			PayeeTaxID:      "52998224725",
			PayeeName:       "Fornecedor",
			ExpenseType:     2,
		},
		{
			ID:              uuid.New(),
			ContractID:      &contractID,
			ContractNumber:  "CT-1",
			Index:           1,
			ReportingPeriod: period,
			DueDate:         calendar.Date(2024, 3, 4),
			Amount:          decimal.NewFromInt(1000),
			Label:           "CT-1 - PARCELA 1/3",
			ReferenceNote:   "Construtora Alfa",
			PaymentMethod:   domain.TransferWire,
			PayeeTaxID:      "11222333000181",
			PayeeName:       "Administradora",
			ExpenseType:     1,
		},
	}
}

func TestBuild(t *testing.T) {
	f, err := Build(testInstallments(t))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetExpenses, SheetContracts}, f.GetSheetList())

	expenses, err := f.GetRows(SheetExpenses)
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, "DATA", expenses[0][0])
	assert.Equal(t, "OBS", expenses[0][12])
	assert.Equal(t, []string{
		"05/03/2024", "2", "52998224725", "Fornecedor", "Cimento - INSTALLMENT 3/3", "4455",
		"333.34", "1", "333.34", "11/03/2024", "", "PIX", "Cimento",
	}, expenses[1])

	contracts, err := f.GetRows(SheetContracts)
	require.NoError(t, err)
	require.Len(t, contracts, 2)
	assert.Equal(t, "CONTRATO CT-1", contracts[1][10])
	assert.Equal(t, "WIRE_TRANSFER", contracts[1][11])
	assert.Equal(t, "1000", contracts[1][6])
}

func TestBuild_Empty(t *testing.T) {
	f, err := Build(nil)
	require.NoError(t, err)
	defer f.Close()

	for _, sheet := range []string{SheetExpenses, SheetContracts} {
		rows, err := f.GetRows(sheet)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Len(t, rows[0], len(Header))
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testInstallments(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	value, err := f.GetCellValue(SheetExpenses, "D2")
	require.NoError(t, err)
	assert.Equal(t, "Fornecedor", value)
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quinzena_2024-03-05.xlsx")
	require.NoError(t, Save(path, testInstallments(t)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	value, err := f.GetCellValue(SheetContracts, "E2")
	require.NoError(t, err)
	assert.Equal(t, "CT-1 - PARCELA 1/3", value)
}
