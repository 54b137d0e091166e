package dateutil

import (
	"errors"
	"fmt"
	"time"
)

// OdooDateTimeLayout is the layout Odoo uses for datetime fields (UTC, no zone suffix)
const OdooDateTimeLayout = "2006-01-02 15:04:05"

// DateLayout is the calendar-day layout used for map keys and Odoo date fields
const DateLayout = "2006-01-02"

// ErrMonthOutOfRange is returned when a month argument is above 12
var ErrMonthOutOfRange = errors.New("month out of range")

// StartOfDay returns the start of the day (00:00:00) for the given date
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// StartOfMonth returns the first day of the month at 00:00 in loc
func StartOfMonth(year int, month time.Month, loc *time.Location) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, loc)
}

// DaysInMonth returns the number of calendar days in the month
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthDays returns every day of the month (start of day, local time)
func MonthDays(year int, month time.Month) []time.Time {
	n := DaysInMonth(year, month)
	first := StartOfMonth(year, month, time.Local)
	days := make([]time.Time, 0, n)
	for d := 0; d < n; d++ {
		days = append(days, first.AddDate(0, 0, d))
	}
	return days
}

// IsWeekend returns true if the date is Saturday or Sunday
func IsWeekend(date time.Time) bool {
	weekday := date.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// IsSameDay returns true if two dates are on the same day
func IsSameDay(date1, date2 time.Time) bool {
	return date1.Year() == date2.Year() &&
		date1.Month() == date2.Month() &&
		date1.Day() == date2.Day()
}

// IsSameMonth returns true if the date falls in the given month of the given year
func IsSameMonth(date time.Time, year int, month time.Month) bool {
	return date.Year() == year && date.Month() == month
}

// MondayIndex converts a weekday to Odoo's numbering (Monday=0 ... Sunday=6)
func MondayIndex(weekday time.Weekday) int {
	return (int(weekday) + 6) % 7
}

// DayKey formats a date as YYYY-MM-DD
func DayKey(date time.Time) string {
	return date.Format(DateLayout)
}

// ParseDate parses an Odoo date field (YYYY-MM-DD) as local midnight
func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid odoo date %q: %w", value, err)
	}
	return t, nil
}

// ParseOdooDateTime parses an Odoo datetime (stored as UTC without zone) and
// returns it converted to local time
func ParseOdooDateTime(value string) (time.Time, error) {
	t, err := time.ParseInLocation(OdooDateTimeLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid odoo datetime %q: %w", value, err)
	}
	return t.In(time.Local), nil
}

// ShiftMonth moves (year, month) by delta months
func ShiftMonth(year int, month time.Month, delta int) (int, time.Month) {
	t := time.Date(year, month+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}

// ResolvePeriod normalizes CLI month/year arguments against now.
// month 0 means "not given" (current month), a negative month goes that many
// months back from the current one, 1-12 selects the month. year 0 means the
// current year; year is only honoured together with a positive month.
func ResolvePeriod(month, year int, now time.Time) (int, time.Month, error) {
	switch {
	case month > 12:
		return 0, 0, fmt.Errorf("%w: %d", ErrMonthOutOfRange, month)
	case month < 0:
		y, m := ShiftMonth(now.Year(), now.Month(), month)
		return y, m, nil
	case month == 0:
		return now.Year(), now.Month(), nil
	}
	if year == 0 {
		year = now.Year()
	}
	return year, time.Month(month), nil
}

// PreviousMonth returns the month before the one containing now
func PreviousMonth(now time.Time) (int, time.Month) {
	return ShiftMonth(now.Year(), now.Month(), -1)
}
