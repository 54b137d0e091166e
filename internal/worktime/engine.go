package worktime

import (
	"fmt"
	"time"

	"github.com/username/odoocli/internal/odoo"
	"github.com/username/odoocli/pkg/dateutil"
	"go.uber.org/zap"
)

// Source is the remote data the engine reconciles. *odoo.Login implements it.
type Source interface {
	Identity() string
	Employee() (*odoo.Employee, error)
	CalendarLines(calendarID int64) ([]odoo.CalendarLine, error)
	PartnerRegion(partnerID int64) (int64, error)
	PublicHolidays(year int) ([]odoo.PublicHoliday, error)
	Vacations(employeeID int64) ([]odoo.Vacation, error)
	Attendances(employeeID int64, year int, month time.Month) ([]odoo.Attendance, error)
}

// Result is the reconciliation of expected against recorded hours for a period
type Result struct {
	Year        int
	Month       time.Month
	LaborDays   int
	LaborHours  float64
	WorkedHours float64
	DeltaHours  float64
}

// Add returns the sum of two results; the period of r is kept
func (r Result) Add(o Result) Result {
	r.LaborDays += o.LaborDays
	r.LaborHours += o.LaborHours
	r.WorkedHours += o.WorkedHours
	r.DeltaHours += o.DeltaHours
	return r
}

// DayStatus is the reconciliation of a single day
type DayStatus struct {
	Date          time.Time
	Kind          DayKind
	ExpectedHours float64
	WorkedHours   float64
	DeltaHours    float64
}

// Entry is one attendance row of a listing
type Entry struct {
	CheckIn  time.Time
	CheckOut time.Time // zero while open
	Hours    float64
	Open     bool
}

// Engine reconciles the labor calendar of one login against its attendance.
// An engine caches every remote lookup and is meant to serve a single report
// run; it is not safe for concurrent use.
type Engine struct {
	src    Source
	now    func() time.Time
	logger *zap.Logger
	cache  *memo
}

// NewEngine creates a new engine over src; now is the wall clock
func NewEngine(src Source, now func() time.Time, logger *zap.Logger) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{
		src:    src,
		now:    now,
		logger: logger.With(zap.String("identity", src.Identity())),
		cache:  newMemo(),
	}
}

// Now returns the engine clock
func (e *Engine) Now() time.Time {
	return e.now()
}

func (e *Engine) key(fn string, year int, month time.Month) memoKey {
	return memoKey{fn: fn, identity: e.src.Identity(), year: year, month: month}
}

func (e *Engine) weeklyCalendar(emp *odoo.Employee) (WeeklyCalendar, error) {
	return remember(e.cache, e.key("calendar", 0, 0), func() (WeeklyCalendar, error) {
		if emp.CalendarID == 0 {
			e.logger.Info("Employee has no working schedule, every day expects 0 hours",
				zap.Int64("employee_id", emp.ID))
			return WeeklyCalendar{}, nil
		}
		lines, err := e.src.CalendarLines(emp.CalendarID)
		if err != nil {
			return WeeklyCalendar{}, err
		}
		return NewWeeklyCalendar(lines), nil
	})
}

func (e *Engine) region(emp *odoo.Employee) (int64, error) {
	return remember(e.cache, e.key("region", 0, 0), func() (int64, error) {
		if emp.AddressID == 0 {
			return 0, nil
		}
		return e.src.PartnerRegion(emp.AddressID)
	})
}

func (e *Engine) holidays(year int) ([]odoo.PublicHoliday, error) {
	return remember(e.cache, e.key("holidays", year, 0), func() ([]odoo.PublicHoliday, error) {
		return e.src.PublicHolidays(year)
	})
}

func (e *Engine) vacations(emp *odoo.Employee) ([]odoo.Vacation, error) {
	return remember(e.cache, e.key("vacations", 0, 0), func() ([]odoo.Vacation, error) {
		return e.src.Vacations(emp.ID)
	})
}

func (e *Engine) attendances(year int, month time.Month) ([]odoo.Attendance, error) {
	return remember(e.cache, e.key("attendances", year, month), func() ([]odoo.Attendance, error) {
		emp, err := e.src.Employee()
		if err != nil {
			return nil, err
		}
		return e.src.Attendances(emp.ID, year, month)
	})
}

// MonthlyLaborMap returns the expected labor of every day of the month
func (e *Engine) MonthlyLaborMap(year int, month time.Month) (*MonthlyLaborMap, error) {
	return remember(e.cache, e.key("labor", year, month), func() (*MonthlyLaborMap, error) {
		emp, err := e.src.Employee()
		if err != nil {
			return nil, err
		}

		cal, err := e.weeklyCalendar(emp)
		if err != nil {
			return nil, fmt.Errorf("failed to get weekly calendar: %w", err)
		}

		region, err := e.region(emp)
		if err != nil {
			return nil, fmt.Errorf("failed to get employee region: %w", err)
		}

		holidays, err := e.holidays(year)
		if err != nil {
			return nil, fmt.Errorf("failed to get public holidays: %w", err)
		}

		vacations, err := e.vacations(emp)
		if err != nil {
			return nil, fmt.Errorf("failed to get vacations: %w", err)
		}

		m := BuildMonth(year, month, cal,
			ApplicableHolidays(holidays, region, year, month),
			VacationDays(vacations, year, month))

		e.logger.Debug("Monthly labor map built",
			zap.Int("year", year),
			zap.Int("month", int(month)),
			zap.Int("labor_days", m.LaborDays()),
			zap.Float64("labor_hours", m.LaborHours()))

		return m, nil
	})
}

func (e *Engine) isCurrentMonth(year int, month time.Month) bool {
	return dateutil.IsSameMonth(e.now(), year, month)
}

// openSession finds the open attendance checked in today, if any.
// Should several exist the first one in listing order wins.
func (e *Engine) openSession() (*odoo.Attendance, float64, error) {
	now := e.now()
	records, err := e.attendances(now.Year(), now.Month())
	if err != nil {
		return nil, 0, err
	}

	for i := range records {
		a := &records[i]
		if a.Open() && dateutil.IsSameDay(a.CheckIn.In(now.Location()), now) {
			return a, now.Sub(a.CheckIn).Hours(), nil
		}
	}
	return nil, 0, nil
}

// OpenSessionHours returns the hours elapsed in today's open session, 0 when there is none
func (e *Engine) OpenSessionHours() (float64, error) {
	_, hours, err := e.openSession()
	return hours, err
}

// WorkedHours returns the recorded hours of the month. For the current month
// the hours of today's open session are included.
func (e *Engine) WorkedHours(year int, month time.Month) (float64, error) {
	records, err := e.attendances(year, month)
	if err != nil {
		return 0, fmt.Errorf("failed to get attendance: %w", err)
	}

	total := 0.0
	for _, a := range records {
		total += a.WorkedHours
	}

	if e.isCurrentMonth(year, month) {
		open, err := e.OpenSessionHours()
		if err != nil {
			return 0, fmt.Errorf("failed to get open session: %w", err)
		}
		total += open
	}
	return total, nil
}

// Reconcile compares the expected labor of the month with the recorded hours
func (e *Engine) Reconcile(year int, month time.Month) (Result, error) {
	m, err := e.MonthlyLaborMap(year, month)
	if err != nil {
		return Result{}, err
	}

	worked, err := e.WorkedHours(year, month)
	if err != nil {
		return Result{}, err
	}

	r := Result{
		Year:        year,
		Month:       month,
		LaborDays:   m.LaborDays(),
		LaborHours:  m.LaborHours(),
		WorkedHours: worked,
	}
	r.DeltaHours = r.WorkedHours - r.LaborHours
	return r, nil
}

// Accumulate sums the reconciliation of months 1..throughMonth of year
func (e *Engine) Accumulate(throughMonth time.Month, year int) (Result, error) {
	if throughMonth < time.January || throughMonth > time.December {
		return Result{}, fmt.Errorf("%w: %d", dateutil.ErrMonthOutOfRange, throughMonth)
	}

	total := Result{Year: year, Month: throughMonth}
	for m := time.January; m <= throughMonth; m++ {
		r, err := e.Reconcile(year, m)
		if err != nil {
			return Result{}, fmt.Errorf("failed to reconcile %d-%02d: %w", year, m, err)
		}
		total = total.Add(r)
	}
	return total, nil
}

// LaborUntil returns the labor days and hours of day's month up to and including day
func (e *Engine) LaborUntil(day time.Time) (int, float64, error) {
	m, err := e.MonthlyLaborMap(day.Year(), day.Month())
	if err != nil {
		return 0, 0, err
	}
	days, hours := m.Until(day)
	return days, hours, nil
}

// Today reconciles the current day
func (e *Engine) Today() (DayStatus, error) {
	now := e.now()
	m, err := e.MonthlyLaborMap(now.Year(), now.Month())
	if err != nil {
		return DayStatus{}, err
	}
	day, _ := m.Day(now)

	records, err := e.attendances(now.Year(), now.Month())
	if err != nil {
		return DayStatus{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	worked := 0.0
	for _, a := range records {
		if !a.Open() && dateutil.IsSameDay(a.CheckIn.In(now.Location()), now) {
			worked += a.WorkedHours
		}
	}
	open, err := e.OpenSessionHours()
	if err != nil {
		return DayStatus{}, err
	}
	worked += open

	return DayStatus{
		Date:          dateutil.StartOfDay(now),
		Kind:          day.Kind,
		ExpectedHours: day.ExpectedHours,
		WorkedHours:   worked,
		DeltaHours:    worked - day.ExpectedHours,
	}, nil
}

// Entries returns the attendance rows of the month in listing order. The open
// session of today carries its elapsed hours; other open rows carry 0.
func (e *Engine) Entries(year int, month time.Month) ([]Entry, error) {
	records, err := e.attendances(year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}

	var open *odoo.Attendance
	openHours := 0.0
	if e.isCurrentMonth(year, month) {
		open, openHours, err = e.openSession()
		if err != nil {
			return nil, err
		}
	}

	entries := make([]Entry, 0, len(records))
	for _, a := range records {
		entry := Entry{
			CheckIn:  a.CheckIn,
			CheckOut: a.CheckOut,
			Hours:    a.WorkedHours,
			Open:     a.Open(),
		}
		if entry.Open {
			entry.Hours = 0
			if open != nil && open.ID == a.ID && open.CheckIn.Equal(a.CheckIn) {
				entry.Hours = openHours
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
