package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		name     string
		value    decimal.Decimal
		percent  decimal.Decimal
		expected decimal.Decimal
	}{
		{
			name:     "whole percentage",
			value:    decimal.NewFromInt(40000),
			percent:  decimal.NewFromInt(10),
			expected: decimal.NewFromInt(4000),
		},
		{
			name:     "rounds to cents",
			value:    decimal.RequireFromString("999.99"),
			percent:  decimal.RequireFromString("33.3"),
			expected: decimal.RequireFromString("333.00"),
		},
		{
			name:     "zero value",
			value:    decimal.Zero,
			percent:  decimal.NewFromInt(15),
			expected: decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Percent(tt.value, tt.percent)
			assert.True(t, result.Equal(tt.expected),
				"Expected %v, but got %v", tt.expected, result)
		})
	}
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, DaysIn(2024, time.February))
	assert.Equal(t, 28, DaysIn(2023, time.February))
	assert.Equal(t, 31, DaysIn(2024, time.December))
	assert.Equal(t, 30, DaysIn(2024, time.April))
}

func TestAddMonthsClamped(t *testing.T) {
	base := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		months   int
		day      int
		expected time.Time
	}{
		{"leap february clamps", 1, 31, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"thirty day month clamps", 3, 31, time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)},
		{"day within month", 1, 10, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)},
		{"year rollover", 12, 31, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)},
		{"non leap february", 13, 30, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AddMonthsClamped(base, tt.months, tt.day))
		})
	}
}

func TestDecimalFromString(t *testing.T) {
	d, err := DecimalFromString("1234.56")
	assert.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("1234.56")))

	d, err = DecimalFromString(" 20000 ")
	assert.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromInt(20000)))

	for _, bad := range []string{"12,34", "", "   ", "abc"} {
		_, err = DecimalFromString(bad)
		assert.Error(t, err, bad)
	}
}
