package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextPeriodDate(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		expected string
	}{
		{"first of month", Date(2024, 1, 1), "2024-01-05"},
		{"on the fifth", Date(2024, 1, 5), "2024-01-05"},
		{"after the fifth", Date(2024, 1, 6), "2024-01-20"},
		{"on the twentieth", Date(2024, 1, 20), "2024-01-20"},
		{"after the twentieth", Date(2024, 1, 21), "2024-02-05"},
		{"year rollover", Date(2024, 12, 25), "2025-01-05"},
		{"clock is ignored", time.Date(2024, 3, 20, 23, 59, 0, 0, time.UTC), "2024-03-20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NextPeriodDate(tt.date).String())
		})
	}
}

func TestAdvanceAndPrevious(t *testing.T) {
	fifth := newPeriodDate(2024, time.January, 5)
	twentieth := newPeriodDate(2024, time.January, 20)

	assert.Equal(t, "2024-01-20", Advance(fifth).String())
	assert.Equal(t, "2024-02-05", Advance(twentieth).String())
	assert.Equal(t, "2023-12-20", Previous(fifth).String())
	assert.Equal(t, "2024-01-05", Previous(twentieth).String())

	// Walking forward and back lands on the same date.
	p := newPeriodDate(2024, time.December, 20)
	for i := 0; i < 30; i++ {
		next := Advance(p)
		assert.True(t, IsReportDay(next.Time))
		assert.True(t, Previous(next).Equal(p))
		p = next
	}
}

func TestBounds(t *testing.T) {
	start, end := Bounds(newPeriodDate(2024, time.March, 5))
	assert.Equal(t, Date(2024, 2, 21), start)
	assert.Equal(t, Date(2024, 3, 5), end)

	start, end = Bounds(newPeriodDate(2024, time.March, 20))
	assert.Equal(t, Date(2024, 3, 6), start)
	assert.Equal(t, Date(2024, 3, 20), end)
}

func TestReportingPeriodForDueDate(t *testing.T) {
	today := Date(2024, 1, 1)

	tests := []struct {
		name        string
		due         time.Time
		expenseType int
		expected    string
	}{
		{"due on the fifth goes to the previous twentieth", Date(2024, 3, 5), 1, "2024-02-20"},
		{"due on the twentieth goes to the fifth", Date(2024, 3, 20), 1, "2024-03-05"},
		{"mid first half", Date(2024, 3, 10), 1, "2024-03-05"},
		{"late in the month", Date(2024, 3, 25), 1, "2024-03-20"},
		{"early in the month", Date(2024, 3, 3), 1, "2024-02-20"},
		{"client paid before the twentieth", Date(2024, 3, 10), ExpenseTypeClientPaid, "2024-03-05"},
		{"client paid after the twentieth", Date(2024, 3, 25), ExpenseTypeClientPaid, "2024-03-20"},
		{"client paid on the fifth keeps the fifth rule", Date(2024, 3, 5), ExpenseTypeClientPaid, "2024-02-20"},
		{"client paid early in the month", Date(2024, 3, 2), ExpenseTypeClientPaid, "2024-03-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			period := ReportingPeriodForDueDate(tt.due, tt.expenseType, today)
			assert.Equal(t, tt.expected, period.String())
			assert.True(t, IsReportDay(period.Time))
		})
	}
}

func TestReportingPeriodForDueDate_NeverClosed(t *testing.T) {
	today := Date(2024, 6, 10)

	// Overdue expenses are reported in the open period.
	period := ReportingPeriodForDueDate(Date(2024, 3, 10), 1, today)
	assert.Equal(t, "2024-06-20", period.String())

	for d := Date(2024, 1, 1); d.Before(Date(2025, 1, 1)); d = d.AddDate(0, 0, 1) {
		for _, expenseType := range []int{1, ExpenseTypeClientPaid} {
			p := ReportingPeriodForDueDate(d, expenseType, today)
			assert.False(t, p.Before(NextPeriodDate(today)), "due %s reported in closed period %s", d.Format(DateLayout), p)
		}
	}
}

func TestParsePeriodDate(t *testing.T) {
	p, err := ParsePeriodDate("2024-03-20")
	require.NoError(t, err)
	assert.Equal(t, Date(2024, 3, 20), p.Time)

	_, err = ParsePeriodDate("2024-03-21")
	assert.Error(t, err)

	_, err = ParsePeriodDate("20/03/2024")
	assert.Error(t, err)
}

func TestPeriodDate_JSON(t *testing.T) {
	p := newPeriodDate(2024, time.May, 5)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `"2024-05-05"`, string(data))

	var decoded PeriodDate
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Equal(p))

	assert.Error(t, json.Unmarshal([]byte(`"2024-05-06"`), &decoded))
	assert.Error(t, json.Unmarshal([]byte(`20240505`), &decoded))
}

func TestPeriodDate_Scan(t *testing.T) {
	var p PeriodDate
	require.NoError(t, p.Scan(time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-07-20", p.String())

	value, err := p.Value()
	require.NoError(t, err)
	assert.Equal(t, p.Time, value)

	assert.Error(t, p.Scan(time.Date(2024, 7, 21, 0, 0, 0, 0, time.UTC)))
	assert.Error(t, p.Scan("2024-07-20"))
}
