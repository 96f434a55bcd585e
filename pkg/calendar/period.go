package calendar

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Quinzena report days. Every reporting period closes on one of them.
const (
	FirstReportDay  = 5
	SecondReportDay = 20
)

// ExpenseTypeClientPaid is the expense type whose due dates are reported in
// the same month they fall due.
const ExpenseTypeClientPaid = 5

// DateLayout is the wire format of calendar days.
const DateLayout = "2006-01-02"

// PeriodDate is a quinzena report date: always the 5th or the 20th of a month.
type PeriodDate struct {
	time.Time
}

// Date returns midnight UTC of the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf drops the clock part of t, keeping its calendar day.
func DateOf(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

func newPeriodDate(year int, month time.Month, day int) PeriodDate {
	return PeriodDate{Time: Date(year, month, day)}
}

// ParsePeriodDate parses a YYYY-MM-DD string that must land on a report day.
func ParsePeriodDate(s string) (PeriodDate, error) {
	t, err := ParseDate(s)
	if err != nil {
		return PeriodDate{}, err
	}
	if !IsReportDay(t) {
		return PeriodDate{}, fmt.Errorf("%s is not a report date (day must be %d or %d)", s, FirstReportDay, SecondReportDay)
	}
	return newPeriodDate(t.Year(), t.Month(), t.Day()), nil
}

// IsReportDay reports whether t falls on the 5th or the 20th.
func IsReportDay(t time.Time) bool {
	return t.Day() == FirstReportDay || t.Day() == SecondReportDay
}

// String formats the period as YYYY-MM-DD.
func (p PeriodDate) String() string {
	return p.Format(DateLayout)
}

// Equal compares two periods by calendar day.
func (p PeriodDate) Equal(o PeriodDate) bool {
	return p.Time.Equal(o.Time)
}

// Before reports whether p closes before o.
func (p PeriodDate) Before(o PeriodDate) bool {
	return p.Time.Before(o.Time)
}

// MarshalJSON encodes the period as "YYYY-MM-DD".
func (p PeriodDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD" on a report day.
func (p *PeriodDate) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("period date must be a JSON string")
	}
	parsed, err := ParsePeriodDate(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Value stores the period as a DATE column.
func (p PeriodDate) Value() (driver.Value, error) {
	return p.Time, nil
}

// Scan reads a DATE column, rejecting rows that are not report days.
func (p *PeriodDate) Scan(src interface{}) error {
	t, ok := src.(time.Time)
	if !ok {
		return fmt.Errorf("cannot scan %T into PeriodDate", src)
	}
	if !IsReportDay(t) {
		return fmt.Errorf("stored period %s is not a report date", t.Format(DateLayout))
	}
	p.Time = DateOf(t)
	return nil
}

// NextPeriodDate returns the first report date on or after d.
func NextPeriodDate(d time.Time) PeriodDate {
	switch {
	case d.Day() <= FirstReportDay:
		return newPeriodDate(d.Year(), d.Month(), FirstReportDay)
	case d.Day() <= SecondReportDay:
		return newPeriodDate(d.Year(), d.Month(), SecondReportDay)
	default:
		next := Date(d.Year(), d.Month(), 1).AddDate(0, 1, 0)
		return newPeriodDate(next.Year(), next.Month(), FirstReportDay)
	}
}

// Advance returns the report date following p.
func Advance(p PeriodDate) PeriodDate {
	if p.Day() == FirstReportDay {
		return newPeriodDate(p.Year(), p.Month(), SecondReportDay)
	}
	next := Date(p.Year(), p.Month(), 1).AddDate(0, 1, 0)
	return newPeriodDate(next.Year(), next.Month(), FirstReportDay)
}

// Previous returns the report date preceding p.
func Previous(p PeriodDate) PeriodDate {
	if p.Day() == SecondReportDay {
		return newPeriodDate(p.Year(), p.Month(), FirstReportDay)
	}
	prev := Date(p.Year(), p.Month(), 1).AddDate(0, -1, 0)
	return newPeriodDate(prev.Year(), prev.Month(), SecondReportDay)
}

// Bounds returns the first and last calendar day covered by p: the day after
// the previous report date through p itself.
func Bounds(p PeriodDate) (time.Time, time.Time) {
	return Previous(p).AddDate(0, 0, 1), p.Time
}

// ReportingPeriodForDueDate maps a due date to the period in which it must be
// reported. A period already closed relative to today is never returned: the
// result is clamped forward to NextPeriodDate(today).
func ReportingPeriodForDueDate(due time.Time, expenseType int, today time.Time) PeriodDate {
	var period PeriodDate

	switch {
	case due.Day() == FirstReportDay:
		period = Previous(newPeriodDate(due.Year(), due.Month(), FirstReportDay))
	case due.Day() == SecondReportDay:
		period = newPeriodDate(due.Year(), due.Month(), FirstReportDay)
	case expenseType == ExpenseTypeClientPaid:
		if due.Day() < SecondReportDay {
			period = newPeriodDate(due.Year(), due.Month(), FirstReportDay)
		} else {
			period = newPeriodDate(due.Year(), due.Month(), SecondReportDay)
		}
	default:
		period = lastPeriodBefore(due)
	}

	current := NextPeriodDate(today)
	if period.Before(current) {
		return current
	}
	return period
}

// lastPeriodBefore returns the latest report date strictly before d.
func lastPeriodBefore(d time.Time) PeriodDate {
	switch {
	case d.Day() <= FirstReportDay:
		return Previous(newPeriodDate(d.Year(), d.Month(), FirstReportDay))
	case d.Day() <= SecondReportDay:
		return newPeriodDate(d.Year(), d.Month(), FirstReportDay)
	default:
		return newPeriodDate(d.Year(), d.Month(), SecondReportDay)
	}
}
