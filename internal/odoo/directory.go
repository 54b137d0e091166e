package odoo

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// UserIDByEmail returns the res.users id registered with email
func (s *Session) UserIDByEmail(email string) (int64, error) {
	users, err := s.SearchRead(ModelUser, Where(Cond("email", "=", email)), "email")
	if err != nil {
		return 0, fmt.Errorf("failed to look up user %s: %w", email, err)
	}
	if len(users) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrUnknownUser, email)
	}
	return users[0].ID(), nil
}

// UserEmail returns the e-mail of the res.users record with id uid
func (s *Session) UserEmail(uid int64) (string, error) {
	users, err := s.SearchRead(ModelUser, Where(Cond("id", "=", uid)), "email")
	if err != nil {
		return "", fmt.Errorf("failed to look up user %d: %w", uid, err)
	}
	if len(users) == 0 || users[0].String("email") == "" {
		return "", fmt.Errorf("%w: uid %d has no e-mail", ErrUnknownUser, uid)
	}
	return users[0].String("email"), nil
}

// ActiveUserEmails returns the e-mail of every active user that has one and is
// linked to an employee; portal and service accounts are left out
func (s *Session) ActiveUserEmails() ([]string, error) {
	users, err := s.SearchRead(ModelUser,
		Where(Cond("active", "=", true), Cond("employee_ids", "!=", false)),
		"email")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	emails := make([]string, 0, len(users))
	for _, u := range users {
		if email := u.String("email"); email != "" {
			emails = append(emails, email)
		}
	}
	return emails, nil
}

// EmployeeByUser returns the employee linked to the res.users id
func (s *Session) EmployeeByUser(userID int64) (*Employee, error) {
	records, err := s.SearchRead(ModelEmployee,
		Where(Cond("user_id", "=", userID)),
		"name", "user_id", "resource_calendar_id", "address_id")
	if err != nil {
		return nil, fmt.Errorf("failed to look up employee for user %d: %w", userID, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no employee for user %d", ErrUnknownUser, userID)
	}

	r := records[0]
	emp := &Employee{
		ID:     r.ID(),
		Name:   r.String("name"),
		UserID: userID,
	}
	emp.CalendarID, _, _ = r.Many2One("resource_calendar_id")
	emp.AddressID, _, _ = r.Many2One("address_id")
	return emp, nil
}

// CalendarLines returns the attendance lines of a working schedule
func (s *Session) CalendarLines(calendarID int64) ([]CalendarLine, error) {
	records, err := s.SearchRead(ModelCalendarAttendance,
		Where(Cond("calendar_id", "=", calendarID)),
		"dayofweek", "hour_from", "hour_to")
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar %d: %w", calendarID, err)
	}

	lines := make([]CalendarLine, 0, len(records))
	for _, r := range records {
		// dayofweek is a selection stored as "0".."6"
		day, err := strconv.Atoi(r.String("dayofweek"))
		if err != nil || day < 0 || day > 6 {
			s.Logger().Warn("Skipping calendar line with invalid weekday",
				zap.Int64("calendar_id", calendarID),
				zap.Any("dayofweek", r["dayofweek"]))
			continue
		}
		lines = append(lines, CalendarLine{
			DayOfWeek: day,
			HourFrom:  r.Float("hour_from"),
			HourTo:    r.Float("hour_to"),
		})
	}
	return lines, nil
}

// PartnerRegion returns the state (region) id of a partner address, 0 when unset
func (s *Session) PartnerRegion(partnerID int64) (int64, error) {
	records, err := s.SearchRead(ModelPartner, Where(Cond("id", "=", partnerID)), "state_id")
	if err != nil {
		return 0, fmt.Errorf("failed to read partner %d: %w", partnerID, err)
	}
	if len(records) == 0 {
		return 0, nil
	}
	region, _, _ := records[0].Many2One("state_id")
	return region, nil
}

// PublicHolidays returns every public holiday line registered for year
func (s *Session) PublicHolidays(year int) ([]PublicHoliday, error) {
	headers, err := s.SearchRead(ModelPublicHoliday, Where(Cond("year", "=", year)), "line_ids")
	if err != nil {
		return nil, fmt.Errorf("failed to read public holidays of %d: %w", year, err)
	}

	var lineIDs []int64
	for _, h := range headers {
		lineIDs = append(lineIDs, h.IDs("line_ids")...)
	}
	if len(lineIDs) == 0 {
		return nil, nil
	}

	lines, err := s.SearchRead(ModelPublicHolidayLine,
		Where(Cond("id", "in", lineIDs)),
		"date", "name", "state_ids")
	if err != nil {
		return nil, fmt.Errorf("failed to read public holiday lines of %d: %w", year, err)
	}

	holidays := make([]PublicHoliday, 0, len(lines))
	for _, l := range lines {
		date, ok, err := l.Date("date")
		if err != nil || !ok {
			s.Logger().Warn("Skipping public holiday without a valid date",
				zap.Int64("line_id", l.ID()),
				zap.Error(err))
			continue
		}
		holidays = append(holidays, PublicHoliday{
			Date:    date,
			Name:    l.String("name"),
			Regions: l.IDs("state_ids"),
		})
	}
	return holidays, nil
}

// Vacations returns the leave requests of an employee that carry a date range
func (s *Session) Vacations(employeeID int64) ([]Vacation, error) {
	records, err := s.SearchRead(ModelVacation,
		Where(Cond("employee_id", "=", employeeID)),
		"date_from", "date_to", "state")
	if err != nil {
		return nil, fmt.Errorf("failed to read vacations of employee %d: %w", employeeID, err)
	}

	vacations := make([]Vacation, 0, len(records))
	for _, r := range records {
		from, okFrom, errFrom := r.DateTime("date_from")
		to, okTo, errTo := r.DateTime("date_to")
		// Allocations have no dates and do not book days off
		if !okFrom || !okTo || errFrom != nil || errTo != nil {
			continue
		}
		vacations = append(vacations, Vacation{
			From:  from,
			To:    to,
			State: r.String("state"),
		})
	}
	return vacations, nil
}

// Attendances returns the attendance of an employee whose check-in (UTC) falls in the month.
//
// A reply with an unexpected shape yields no records instead of an error. This
// mirrors how the remote side has been observed to answer for employees
// without attendance rights and is a known fragility: it silently under-reports.
func (s *Session) Attendances(employeeID int64, year int, month time.Month) ([]Attendance, error) {
	prefix := fmt.Sprintf("%d-%02d-%%", year, month)
	records, err := s.SearchRead(ModelAttendance,
		Where(
			Cond("employee_id", "=", employeeID),
			Cond("check_in", "=like", prefix),
		),
		"employee_id", "check_in", "check_out", "worked_hours")
	if errors.Is(err, ErrMalformedResponse) {
		s.Logger().Warn("Attendance reply malformed, treating as empty",
			zap.Int64("employee_id", employeeID),
			zap.Int("year", year),
			zap.Int("month", int(month)),
			zap.Error(err))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	attendances := make([]Attendance, 0, len(records))
	for _, r := range records {
		checkIn, ok, err := r.DateTime("check_in")
		if err != nil || !ok {
			s.Logger().Warn("Attendance without valid check-in, treating reply as empty",
				zap.Int64("attendance_id", r.ID()),
				zap.Error(err))
			return nil, nil
		}
		checkOut, _, err := r.DateTime("check_out")
		if err != nil {
			s.Logger().Warn("Attendance with invalid check-out, treating reply as empty",
				zap.Int64("attendance_id", r.ID()),
				zap.Error(err))
			return nil, nil
		}
		attendances = append(attendances, Attendance{
			ID:          r.ID(),
			CheckIn:     checkIn,
			CheckOut:    checkOut,
			WorkedHours: r.Float("worked_hours"),
		})
	}
	return attendances, nil
}
