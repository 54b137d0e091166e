package runner

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/username/odoocli/internal/mailer"
	"github.com/username/odoocli/internal/odoo"
	"github.com/username/odoocli/internal/worktime"
)

func at(month time.Month, day, hour, min int) time.Time {
	return time.Date(2024, month, day, hour, min, 0, 0, time.Local)
}

type fakeSubject struct {
	email      string
	attendance map[time.Month][]odoo.Attendance
}

func (f *fakeSubject) Identity() string {
	if f.email == "" {
		return "admin"
	}
	return f.email
}

func (f *fakeSubject) TargetEmail() string { return f.email }

func (f *fakeSubject) RecipientEmail() (string, error) {
	if f.email == "" {
		return "admin@example.com", nil
	}
	return f.email, nil
}

func (f *fakeSubject) Employee() (*odoo.Employee, error) {
	return &odoo.Employee{ID: 10, Name: "Ana García", CalendarID: 1}, nil
}

func (f *fakeSubject) CalendarLines(int64) ([]odoo.CalendarLine, error) {
	var lines []odoo.CalendarLine
	for d := 0; d < 5; d++ {
		lines = append(lines, odoo.CalendarLine{DayOfWeek: d, HourFrom: 8, HourTo: 15})
	}
	return lines, nil
}

func (f *fakeSubject) PartnerRegion(int64) (int64, error) { return 0, nil }

func (f *fakeSubject) PublicHolidays(int) ([]odoo.PublicHoliday, error) { return nil, nil }

func (f *fakeSubject) Vacations(int64) ([]odoo.Vacation, error) { return nil, nil }

func (f *fakeSubject) Attendances(_ int64, year int, month time.Month) ([]odoo.Attendance, error) {
	if year != 2024 {
		return nil, nil
	}
	return f.attendance[month], nil
}

func newSubject(email string) *fakeSubject {
	return &fakeSubject{
		email: email,
		attendance: map[time.Month][]odoo.Attendance{
			time.February: {
				{ID: 1, CheckIn: at(time.February, 1, 8, 0), CheckOut: at(time.February, 1, 15, 0), WorkedHours: 7},
			},
			time.March: {
				{ID: 2, CheckIn: at(time.March, 4, 8, 0), CheckOut: at(time.March, 4, 15, 0), WorkedHours: 7},
				{ID: 3, CheckIn: at(time.March, 5, 8, 0)},
			},
		},
	}
}

type fakeSender struct {
	sent []mailer.Message
}

func (f *fakeSender) Send(msg mailer.Message) error {
	f.sent = append(f.sent, msg)
	return nil
}

// now is Tuesday 2024-03-05 10:00, two hours into an open session
var now = at(time.March, 5, 10, 0)

func newReporter(subject *fakeSubject, out *bytes.Buffer, opts Options) *Reporter {
	engine := worktime.NewEngine(subject, func() time.Time { return now }, zap.NewNop())
	opts.Out = out
	return New(subject, engine, opts)
}

func TestRequest_Period(t *testing.T) {
	tests := []struct {
		name      string
		req       Request
		wantYear  int
		wantMonth time.Month
	}{
		{"current month by default", Request{Mode: ModeSummary}, 2024, time.March},
		{"explicit month", Request{Mode: ModeList, Year: 2023, Month: time.November, MonthGiven: true}, 2023, time.November},
		{"mail defaults to previous month", Request{Mode: ModeSend}, 2024, time.February},
		{"mail with explicit month", Request{Mode: ModeSend, Year: 2024, Month: time.March, MonthGiven: true}, 2024, time.March},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, month := tt.req.Period(now)
			if year != tt.wantYear || month != tt.wantMonth {
				t.Errorf("Period() = %d-%v, want %d-%v", year, month, tt.wantYear, tt.wantMonth)
			}
		})
	}
}

func TestPeriod_PreviousMonthCrossesYear(t *testing.T) {
	year, month := Request{Mode: ModeSend}.Period(time.Date(2024, time.January, 10, 0, 0, 0, 0, time.Local))
	assert.Equal(t, 2023, year)
	assert.Equal(t, time.December, month)
}

func TestRun_Now(t *testing.T) {
	var out bytes.Buffer
	r := newReporter(newSubject(""), &out, Options{})

	require.NoError(t, r.Run(Request{Mode: ModeSummary}))

	got := out.String()
	assert.Contains(t, got, "Días laborables de este mes:\t21\n")
	assert.Contains(t, got, "Días laborables hasta hoy:\t3\n")
	assert.Contains(t, got, "Horas trabajadas hasta ahora:\t 09:00:00\n")
	assert.Contains(t, got, "Diferencia hasta ahora:\t\t-12:00:00\n")
}

func TestRun_Month(t *testing.T) {
	var out bytes.Buffer
	r := newReporter(newSubject(""), &out, Options{})

	require.NoError(t, r.Run(Request{Mode: ModeSummary, Year: 2024, Month: time.February, MonthGiven: true}))

	got := out.String()
	assert.True(t, strings.HasPrefix(got, "Febrero 2024\n"))
	assert.Contains(t, got, "Días laborables:\t21\n")
	assert.Contains(t, got, "Horas trabajadas:\t 07:00:00\n")
}

func TestRun_List(t *testing.T) {
	var out bytes.Buffer
	r := newReporter(newSubject(""), &out, Options{})

	require.NoError(t, r.Run(Request{Mode: ModeList}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "2024-03-05 | 08:00:00 | -------- |  02:00:00", lines[2])
}

func TestRun_Accumulated(t *testing.T) {
	var out bytes.Buffer
	r := newReporter(newSubject(""), &out, Options{})

	require.NoError(t, r.Run(Request{Mode: ModeAccumulated, Year: 2024, Month: time.February, MonthGiven: true}))

	got := out.String()
	assert.True(t, strings.HasPrefix(got, "Acumulado Enero - Febrero 2024\n"))
	// January 2024 has 23 labor days, February 21
	assert.Contains(t, got, "Días laborables:\t44\n")
}

func TestRun_Today(t *testing.T) {
	var out bytes.Buffer
	r := newReporter(newSubject(""), &out, Options{})

	require.NoError(t, r.Run(Request{Mode: ModeToday}))
	assert.True(t, strings.HasPrefix(out.String(), "Hoy 2024-03-05 (laborable)\n"))
	assert.Contains(t, out.String(), "Diferencia:\t\t-05:00:00\n")
}

func TestRun_File(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	r := newReporter(newSubject("ana@example.com"), &out, Options{})

	path := filepath.Join(dir, "marzo.csv")
	require.NoError(t, r.Run(Request{Mode: ModeFile, File: path}))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "unprefixed file must not be written")

	content, err := os.ReadFile(filepath.Join(dir, "ana-marzo.csv"))
	require.NoError(t, err)

	got := string(content)
	assert.True(t, strings.HasPrefix(got, "Marzo 2024\n"))
	assert.Contains(t, got, "\n\nentrada,salida,horas\n")
	assert.Contains(t, got, "2024-03-05 08:00:00,,\" 02:00:00\"\n")
	assert.Empty(t, out.String())
}

func TestRun_Send(t *testing.T) {
	sender := &fakeSender{}
	var out bytes.Buffer
	r := newReporter(newSubject("ana@example.com"), &out, Options{Sender: sender})

	require.NoError(t, r.Run(Request{Mode: ModeSend}))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "ana@example.com", msg.To)
	assert.Equal(t, "Informe asistencia Febrero 2024", msg.Subject)
	assert.True(t, strings.HasPrefix(msg.Body, "Febrero 2024\n"))
	assert.Equal(t, "ana-asistencia2024-2.csv", msg.AttachmentName)
	assert.Contains(t, string(msg.Attachment), "Febrero 2024\n")
	assert.Contains(t, string(msg.Attachment), "entrada,salida,horas\n")
}

func TestRun_SendWithTemplates(t *testing.T) {
	sender := &fakeSender{}
	var out bytes.Buffer
	r := newReporter(newSubject(""), &out, Options{
		Sender: sender,
		Templates: Templates{
			Subject: "[$year/$month] $user_name",
			Body:    "Hola ${user_name}, adjuntamos ${filename}. ${signature}",
		},
	})

	require.NoError(t, r.Run(Request{Mode: ModeSend, Year: 2024, Month: time.March, MonthGiven: true}))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "admin@example.com", msg.To)
	assert.Equal(t, "[2024/3] Ana García", msg.Subject)
	assert.Equal(t, "Hola Ana García, adjuntamos asistencia2024-3.csv. ${signature}", msg.Body)
}

func TestRun_SendWithoutSender(t *testing.T) {
	var out bytes.Buffer
	r := newReporter(newSubject(""), &out, Options{})

	assert.Error(t, r.Run(Request{Mode: ModeSend}))
}
