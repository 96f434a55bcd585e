package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds a value to cents.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent returns value * percent / 100 rounded to cents.
func Percent(value, percent decimal.Decimal) decimal.Decimal {
	return RoundMoney(value.Mul(percent).Div(hundred))
}

// SumMoney adds every amount.
func SumMoney(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonthsClamped moves base forward by months and pins the result to day,
// clamped to the last day of the target month (Jan 31 + 1 month, day 31 -> Feb 28/29).
func AddMonthsClamped(base time.Time, months, day int) time.Time {
	first := time.Date(base.Year(), base.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	if last := DaysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// DecimalFromString parses a plain decimal amount such as "1234.56".
// Surrounding spaces are ignored and an empty value is an error.
func DecimalFromString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount is required")
	}
	return decimal.NewFromString(s)
}
