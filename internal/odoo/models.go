package odoo

import (
	"fmt"
	"time"

	"github.com/username/odoocli/pkg/dateutil"
)

// Model names of the Odoo collections the reporter reads
const (
	ModelUser               = "res.users"
	ModelPartner            = "res.partner"
	ModelEmployee           = "hr.employee"
	ModelAttendance         = "hr.attendance"
	ModelPublicHoliday      = "hr.holidays.public"
	ModelPublicHolidayLine  = "hr.holidays.public.line"
	ModelVacation           = "hr.holidays"
	ModelCalendarAttendance = "resource.calendar.attendance"
)

// Domain is an Odoo search domain: a list of (field, operator, value) triples
type Domain []interface{}

// Cond builds a single domain condition
func Cond(field, operator string, value interface{}) []interface{} {
	return []interface{}{field, operator, value}
}

// Where builds a domain from conditions
func Where(conds ...[]interface{}) Domain {
	d := make(Domain, 0, len(conds))
	for _, c := range conds {
		d = append(d, c)
	}
	return d
}

// Record is one row returned by search_read.
// Odoo's typing is loose: unset fields come back as false, many2one fields as
// [id, display_name] pairs and datetimes as UTC strings without zone.
type Record map[string]interface{}

// ID returns the record id
func (r Record) ID() int64 {
	return r.Int("id")
}

// Int returns an integer field, 0 when unset
func (r Record) Int(field string) int64 {
	v, _ := asInt(r[field])
	return v
}

// String returns a char field, "" when unset
func (r Record) String(field string) string {
	if s, ok := r[field].(string); ok {
		return s
	}
	return ""
}

// Float returns a float field, 0 when unset
func (r Record) Float(field string) float64 {
	switch v := r[field].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// Many2One returns the id and display name of a many2one field
func (r Record) Many2One(field string) (int64, string, bool) {
	pair, ok := r[field].([]interface{})
	if !ok || len(pair) == 0 {
		return 0, "", false
	}
	id, ok := asInt(pair[0])
	if !ok {
		return 0, "", false
	}
	name := ""
	if len(pair) > 1 {
		name, _ = pair[1].(string)
	}
	return id, name, true
}

// IDs returns the ids of a one2many or many2many field
func (r Record) IDs(field string) []int64 {
	list, ok := r[field].([]interface{})
	if !ok {
		return nil
	}
	ids := make([]int64, 0, len(list))
	for _, item := range list {
		if id, ok := asInt(item); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// DateTime returns a datetime field converted to local time; ok is false when unset
func (r Record) DateTime(field string) (time.Time, bool, error) {
	s := r.String(field)
	if s == "" {
		return time.Time{}, false, nil
	}
	t, err := dateutil.ParseOdooDateTime(s)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// Date returns a date field as local midnight; ok is false when unset
func (r Record) Date(field string) (time.Time, bool, error) {
	s := r.String(field)
	if s == "" {
		return time.Time{}, false, nil
	}
	t, err := dateutil.ParseDate(s)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

func asInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

func decodeRecords(reply interface{}) ([]Record, error) {
	list, ok := reply.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: expected list, got %T", ErrMalformedResponse, reply)
	}
	records := make([]Record, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: item %d is %T", ErrMalformedResponse, i, item)
		}
		records = append(records, Record(m))
	}
	return records, nil
}

// Employee represents an hr.employee record
type Employee struct {
	ID         int64
	Name       string
	UserID     int64
	CalendarID int64 // 0 when no working schedule is assigned
	AddressID  int64 // work address partner, 0 when unset
}

// CalendarLine represents a resource.calendar.attendance line
type CalendarLine struct {
	DayOfWeek int // Monday=0 ... Sunday=6
	HourFrom  float64
	HourTo    float64
}

// Hours returns the length of the line in hours
func (l CalendarLine) Hours() float64 {
	return l.HourTo - l.HourFrom
}

// PublicHoliday represents an hr.holidays.public.line record
type PublicHoliday struct {
	Date    time.Time
	Name    string
	Regions []int64 // res.country.state ids; empty means national
}

// AppliesTo reports whether the holiday applies to an employee in region (0 = unknown)
func (h PublicHoliday) AppliesTo(region int64) bool {
	if len(h.Regions) == 0 {
		return true
	}
	for _, r := range h.Regions {
		if r == region {
			return true
		}
	}
	return false
}

// Vacation states as stored by Odoo
const (
	VacationStateRefused = "refuse"
)

// Vacation represents an hr.holidays leave request
type Vacation struct {
	From  time.Time
	To    time.Time
	State string
}

// Refused reports whether the request was refused
func (v Vacation) Refused() bool {
	return v.State == VacationStateRefused || v.State == "refused"
}

// Attendance represents an hr.attendance record
type Attendance struct {
	ID          int64
	CheckIn     time.Time
	CheckOut    time.Time // zero while the session is open
	WorkedHours float64
}

// Open reports whether the attendance has no check-out yet
func (a Attendance) Open() bool {
	return a.CheckOut.IsZero()
}
