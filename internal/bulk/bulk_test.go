package bulk

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/username/odoocli/internal/mailer"
	"github.com/username/odoocli/internal/odoo"
	"github.com/username/odoocli/internal/runner"
	"github.com/username/odoocli/internal/worktime"
)

var now = time.Date(2024, time.March, 5, 10, 0, 0, 0, time.Local)

type fakeUser struct {
	email  string
	worked float64 // hours recorded in February 2024
	err    error
}

func (f *fakeUser) Identity() string { return f.email }

func (f *fakeUser) TargetEmail() string { return f.email }

func (f *fakeUser) RecipientEmail() (string, error) { return f.email, nil }

func (f *fakeUser) Employee() (*odoo.Employee, error) {
	return &odoo.Employee{ID: 1, Name: f.email}, nil
}

func (f *fakeUser) CalendarLines(int64) ([]odoo.CalendarLine, error) { return nil, nil }

func (f *fakeUser) PartnerRegion(int64) (int64, error) { return 0, nil }

func (f *fakeUser) PublicHolidays(int) ([]odoo.PublicHoliday, error) { return nil, nil }

func (f *fakeUser) Vacations(int64) ([]odoo.Vacation, error) { return nil, nil }

func (f *fakeUser) Attendances(_ int64, year int, month time.Month) ([]odoo.Attendance, error) {
	if f.err != nil {
		return nil, f.err
	}
	if year != 2024 || month != time.February || f.worked == 0 {
		return nil, nil
	}
	in := time.Date(2024, time.February, 1, 8, 0, 0, 0, time.Local)
	return []odoo.Attendance{{ID: 1, CheckIn: in, CheckOut: in.Add(time.Hour), WorkedHours: f.worked}}, nil
}

type fakeDirectory struct {
	emails []string
	calls  int
}

func (f *fakeDirectory) ActiveUserEmails() ([]string, error) {
	f.calls++
	return f.emails, nil
}

type fakeSender struct {
	sent []mailer.Message
}

func (f *fakeSender) Send(msg mailer.Message) error {
	f.sent = append(f.sent, msg)
	return nil
}

type harness struct {
	users  map[string]*fakeUser
	dir    *fakeDirectory
	sender *fakeSender
	out    bytes.Buffer
	report bytes.Buffer
}

func newHarness(users ...*fakeUser) *harness {
	h := &harness{
		users:  make(map[string]*fakeUser),
		dir:    &fakeDirectory{},
		sender: &fakeSender{},
	}
	for _, u := range users {
		h.users[u.email] = u
		h.dir.emails = append(h.dir.emails, u.email)
	}
	return h
}

func (h *harness) driver() *Driver {
	factory := func(email string) *runner.Reporter {
		u, ok := h.users[email]
		if !ok {
			u = &fakeUser{email: email}
		}
		engine := worktime.NewEngine(u, func() time.Time { return now }, zap.NewNop())
		return runner.New(u, engine, runner.Options{Out: &h.report, Sender: h.sender})
	}
	return NewDriver(h.dir, factory, &h.out, zap.NewNop())
}

var february = runner.Request{Mode: runner.ModeSummary, Year: 2024, Month: time.February, MonthGiven: true}

func TestRun_AllActiveUsers(t *testing.T) {
	h := newHarness(
		&fakeUser{email: "ana@example.com", worked: 7},
		&fakeUser{email: "ghost@example.com"},
		&fakeUser{email: "luis@example.com", worked: 3.5},
	)

	stats, err := h.driver().Run(nil, february)
	require.NoError(t, err)

	assert.Equal(t, []string{"ana@example.com", "luis@example.com"}, stats.Processed)
	assert.Equal(t, []string{"ghost@example.com"}, stats.Skipped)
	assert.Equal(t, "Procesando ana@example.com\n"+
		"Se omite ghost@example.com\n"+
		"Procesando luis@example.com\n", h.out.String())
	assert.Equal(t, 2, bytes.Count(h.report.Bytes(), []byte("Febrero 2024\n")))
	assert.Equal(t, 1, h.dir.calls)
}

func TestRun_GivenEmails(t *testing.T) {
	h := newHarness(
		&fakeUser{email: "ana@example.com", worked: 7},
		&fakeUser{email: "luis@example.com", worked: 7},
	)

	stats, err := h.driver().Run([]string{"luis@example.com"}, february)
	require.NoError(t, err)

	assert.Equal(t, []string{"luis@example.com"}, stats.Processed)
	assert.Equal(t, 0, h.dir.calls)
}

func TestRun_SkipUsesTargetedPeriod(t *testing.T) {
	h := newHarness(&fakeUser{email: "ana@example.com", worked: 7})

	// Worked hours exist only in February; the current month is March
	stats, err := h.driver().Run(nil, runner.Request{Mode: runner.ModeSummary})
	require.NoError(t, err)
	assert.Equal(t, []string{"ana@example.com"}, stats.Skipped)

	// Mailed reports default to the previous month
	stats, err = h.driver().Run(nil, runner.Request{Mode: runner.ModeSend})
	require.NoError(t, err)
	assert.Equal(t, []string{"ana@example.com"}, stats.Processed)
	require.Len(t, h.sender.sent, 1)
	assert.Equal(t, "Informe asistencia Febrero 2024", h.sender.sent[0].Subject)
}

func TestRun_FirstErrorAborts(t *testing.T) {
	boom := errors.New("connection reset")
	h := newHarness(
		&fakeUser{email: "ana@example.com", worked: 7},
		&fakeUser{email: "broken@example.com", err: boom},
		&fakeUser{email: "luis@example.com", worked: 7},
	)

	stats, err := h.driver().Run(nil, february)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken@example.com")

	assert.Equal(t, []string{"ana@example.com"}, stats.Processed)
	assert.NotContains(t, h.out.String(), "luis@example.com")
}
