package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Holiday is a fixed-date national holiday.
type Holiday struct {
	Day   int
	Month time.Month
}

// DefaultHolidays are the fixed-date national holidays. Moving holidays
// (Carnival, Easter, Corpus Christi) are not observed.
var DefaultHolidays = []Holiday{
	{Day: 1, Month: time.January},   // Confraternização Universal
	{Day: 21, Month: time.April},    // Tiradentes
	{Day: 1, Month: time.May},       // Dia do Trabalho
	{Day: 7, Month: time.September}, // Independência
	{Day: 12, Month: time.October},  // Nossa Senhora Aparecida
	{Day: 2, Month: time.November},  // Finados
	{Day: 15, Month: time.November}, // Proclamação da República
	{Day: 25, Month: time.December}, // Natal
}

// ParseHolidays reads a comma separated "MM-DD" list.
func ParseHolidays(s string) ([]Holiday, error) {
	var holidays []Holiday
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.Split(item, "-")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid holiday %q: expected MM-DD", item)
		}
		month, err := strconv.Atoi(parts[0])
		if err != nil || month < 1 || month > 12 {
			return nil, fmt.Errorf("invalid holiday month in %q", item)
		}
		day, err := strconv.Atoi(parts[1])
		if err != nil || day < 1 || day > 31 {
			return nil, fmt.Errorf("invalid holiday day in %q", item)
		}
		holidays = append(holidays, Holiday{Day: day, Month: time.Month(month)})
	}
	return holidays, nil
}

// BusinessCalendar knows which days are weekends or holidays.
type BusinessCalendar struct {
	holidays map[Holiday]struct{}
}

// NewBusinessCalendar builds a calendar observing the given holidays.
func NewBusinessCalendar(holidays []Holiday) *BusinessCalendar {
	set := make(map[Holiday]struct{}, len(holidays))
	for _, h := range holidays {
		set[h] = struct{}{}
	}
	return &BusinessCalendar{holidays: set}
}

// IsHoliday reports whether d is one of the configured holidays.
func (c *BusinessCalendar) IsHoliday(d time.Time) bool {
	_, ok := c.holidays[Holiday{Day: d.Day(), Month: d.Month()}]
	return ok
}

// IsBusinessDay reports whether d is neither a weekend nor a holiday.
func (c *BusinessCalendar) IsBusinessDay(d time.Time) bool {
	if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		return false
	}
	return !c.IsHoliday(d)
}

// maxAdjustDays bounds the search for a business day. Only a holiday list
// covering every weekday of a year can exhaust it.
const maxAdjustDays = 366

// NextBusinessDay returns d itself when it is a business day, otherwise the
// first business day after it.
func (c *BusinessCalendar) NextBusinessDay(d time.Time) time.Time {
	d = DateOf(d)
	for i := 0; i < maxAdjustDays && !c.IsBusinessDay(d); i++ {
		d = d.AddDate(0, 0, 1)
	}
	return d
}
