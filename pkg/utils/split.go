package utils

import (
	"github.com/shopspring/decimal"

	customError "github.com/segyhp/installment-engine/pkg/errors"
)

// SplitEven splits total into n parts of round(total/n, 2). The last part
// absorbs the rounding remainder so the parts always sum to total.
func SplitEven(total decimal.Decimal, n int) ([]decimal.Decimal, error) {
	if n <= 0 {
		return nil, customError.InvalidArgument("installment count must be greater than 0, got %d", n)
	}
	if !total.IsPositive() {
		return nil, customError.InvalidArgument("total must be greater than 0, got %s", total.StringFixed(2))
	}

	total = RoundMoney(total)
	base := RoundMoney(total.Div(decimal.NewFromInt(int64(n))))

	parts := make([]decimal.Decimal, n)
	for i := 0; i < n-1; i++ {
		parts[i] = base
	}
	parts[n-1] = total.Sub(base.Mul(decimal.NewFromInt(int64(n - 1))))
	// Every part, the last included, must be at least one cent.
	if !base.IsPositive() || !parts[n-1].IsPositive() {
		return nil, customError.InvalidArgument("total %s is too small to split into %d installments", total.StringFixed(2), n)
	}

	return parts, nil
}

// SplitWithPercentageDownPayment takes percent% of total as a down payment
// and splits the rest evenly into n installments.
func SplitWithPercentageDownPayment(total decimal.Decimal, n int, percent decimal.Decimal) (decimal.Decimal, []decimal.Decimal, error) {
	if !percent.IsPositive() || percent.GreaterThanOrEqual(hundred) {
		return decimal.Zero, nil, customError.InvalidArgument("down payment percentage must be between 0 and 100, got %s", percent.String())
	}

	downPayment := Percent(total, percent)
	remaining, err := SplitEven(total.Sub(downPayment), n)
	if err != nil {
		return decimal.Zero, nil, err
	}
	return downPayment, remaining, nil
}

// SplitWithFixedDownPayment takes a fixed amount as down payment and splits
// the rest evenly into n installments.
func SplitWithFixedDownPayment(total decimal.Decimal, n int, fixedAmount decimal.Decimal) (decimal.Decimal, []decimal.Decimal, error) {
	if !fixedAmount.IsPositive() {
		return decimal.Zero, nil, customError.InvalidArgument("down payment must be greater than 0, got %s", fixedAmount.StringFixed(2))
	}
	if fixedAmount.GreaterThanOrEqual(total) {
		return decimal.Zero, nil, customError.InvalidArgument("down payment %s must be less than total %s", fixedAmount.StringFixed(2), total.StringFixed(2))
	}

	downPayment := RoundMoney(fixedAmount)
	remaining, err := SplitEven(total.Sub(downPayment), n)
	if err != nil {
		return decimal.Zero, nil, err
	}
	return downPayment, remaining, nil
}

// SplitWithEqualDownPayment splits total into n+1 equal parts, the first
// being the down payment.
func SplitWithEqualDownPayment(total decimal.Decimal, n int) (decimal.Decimal, []decimal.Decimal, error) {
	if n <= 0 {
		return decimal.Zero, nil, customError.InvalidArgument("installment count must be greater than 0, got %d", n)
	}
	parts, err := SplitEven(total, n+1)
	if err != nil {
		return decimal.Zero, nil, err
	}
	return parts[0], parts[1:], nil
}

// CheckSum verifies that downPayment plus every part equals total to the cent.
func CheckSum(total, downPayment decimal.Decimal, parts []decimal.Decimal) error {
	sum := downPayment.Add(SumMoney(parts))
	if !sum.Equal(RoundMoney(total)) {
		return customError.WrapSumMismatch(total.StringFixed(2), sum.StringFixed(2))
	}
	return nil
}
