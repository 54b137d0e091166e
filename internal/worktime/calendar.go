package worktime

import (
	"time"

	"github.com/username/odoocli/internal/odoo"
	"github.com/username/odoocli/pkg/dateutil"
)

// WeeklyCalendar holds the expected work hours per weekday, indexed Monday=0
type WeeklyCalendar [7]float64

// NewWeeklyCalendar builds a weekly calendar from calendar attendance lines.
// When several lines share a weekday the last one wins; split shifts are not summed.
func NewWeeklyCalendar(lines []odoo.CalendarLine) WeeklyCalendar {
	var cal WeeklyCalendar
	for _, l := range lines {
		if l.DayOfWeek < 0 || l.DayOfWeek > 6 {
			continue
		}
		cal[l.DayOfWeek] = l.Hours()
	}
	return cal
}

// Hours returns the expected hours for the weekday of date
func (c WeeklyCalendar) Hours(date time.Time) float64 {
	return c[dateutil.MondayIndex(date.Weekday())]
}

// DayKind represents why a day is or is not a labor day
type DayKind int

const (
	DayWorkday DayKind = iota + 1
	DayWeekend
	DayHoliday
	DayVacation
)

func (k DayKind) String() string {
	switch k {
	case DayWorkday:
		return "workday"
	case DayWeekend:
		return "weekend"
	case DayHoliday:
		return "holiday"
	case DayVacation:
		return "vacation"
	}
	return "unknown"
}

// Day is one entry of a monthly labor map
type Day struct {
	Date          time.Time
	Kind          DayKind
	ExpectedHours float64
}

// IsWorkday reports whether the day is a labor day
func (d Day) IsWorkday() bool {
	return d.Kind == DayWorkday
}

// MonthlyLaborMap holds the expected labor of every day of a month, in date order
type MonthlyLaborMap struct {
	Year  int
	Month time.Month
	Days  []Day
}

// LaborDays returns the number of labor days in the month
func (m *MonthlyLaborMap) LaborDays() int {
	n := 0
	for _, d := range m.Days {
		if d.IsWorkday() {
			n++
		}
	}
	return n
}

// LaborHours returns the sum of expected hours in the month
func (m *MonthlyLaborMap) LaborHours() float64 {
	total := 0.0
	for _, d := range m.Days {
		total += d.ExpectedHours
	}
	return total
}

// NonWorkingDays returns the weekend, holiday and vacation days of the month
func (m *MonthlyLaborMap) NonWorkingDays() []time.Time {
	var days []time.Time
	for _, d := range m.Days {
		if !d.IsWorkday() {
			days = append(days, d.Date)
		}
	}
	return days
}

// ByDate returns the map as YYYY-MM-DD -> expected hours
func (m *MonthlyLaborMap) ByDate() map[string]float64 {
	out := make(map[string]float64, len(m.Days))
	for _, d := range m.Days {
		out[dateutil.DayKey(d.Date)] = d.ExpectedHours
	}
	return out
}

// Until returns labor days and hours from the first of the month through day, inclusive
func (m *MonthlyLaborMap) Until(day time.Time) (int, float64) {
	limit := dateutil.DayKey(day)
	days, hours := 0, 0.0
	for _, d := range m.Days {
		if dateutil.DayKey(d.Date) > limit {
			break
		}
		if d.IsWorkday() {
			days++
		}
		hours += d.ExpectedHours
	}
	return days, hours
}

// Day returns the entry for date, ok is false when date is outside the month
func (m *MonthlyLaborMap) Day(date time.Time) (Day, bool) {
	key := dateutil.DayKey(date)
	for _, d := range m.Days {
		if dateutil.DayKey(d.Date) == key {
			return d, true
		}
	}
	return Day{}, false
}

// ApplicableHolidays returns the month's public holidays that apply to region, keyed YYYY-MM-DD
func ApplicableHolidays(holidays []odoo.PublicHoliday, region int64, year int, month time.Month) map[string]bool {
	out := make(map[string]bool)
	for _, h := range holidays {
		if !dateutil.IsSameMonth(h.Date, year, month) || !h.AppliesTo(region) {
			continue
		}
		out[dateutil.DayKey(h.Date)] = true
	}
	return out
}

// VacationDays returns the days of the month covered by non-refused vacations, keyed YYYY-MM-DD.
// Ranges are inclusive and counted in local calendar days.
func VacationDays(vacations []odoo.Vacation, year int, month time.Month) map[string]bool {
	out := make(map[string]bool)
	for _, v := range vacations {
		if v.Refused() || v.To.Before(v.From) {
			continue
		}
		last := dateutil.StartOfDay(v.To)
		for d := dateutil.StartOfDay(v.From); !d.After(last); d = d.AddDate(0, 0, 1) {
			if dateutil.IsSameMonth(d, year, month) {
				out[dateutil.DayKey(d)] = true
			}
		}
	}
	return out
}

// BuildMonth classifies every day of the month and assigns its expected hours
func BuildMonth(year int, month time.Month, cal WeeklyCalendar, holidays, vacations map[string]bool) *MonthlyLaborMap {
	days := dateutil.MonthDays(year, month)
	m := &MonthlyLaborMap{
		Year:  year,
		Month: month,
		Days:  make([]Day, 0, len(days)),
	}

	for _, date := range days {
		key := dateutil.DayKey(date)
		day := Day{Date: date, Kind: DayWorkday}
		switch {
		case dateutil.IsWeekend(date):
			day.Kind = DayWeekend
		case holidays[key]:
			day.Kind = DayHoliday
		case vacations[key]:
			day.Kind = DayVacation
		default:
			day.ExpectedHours = cal.Hours(date)
		}
		m.Days = append(m.Days, day)
	}
	return m
}
