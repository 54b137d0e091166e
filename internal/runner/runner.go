package runner

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/username/odoocli/internal/mailer"
	"github.com/username/odoocli/internal/report"
	"github.com/username/odoocli/internal/worktime"
	"github.com/username/odoocli/pkg/dateutil"
)

// Subject is the identity a report is produced for. *odoo.Login implements it.
type Subject interface {
	worktime.Source
	// TargetEmail is the impersonated e-mail, "" when acting as the authenticated user
	TargetEmail() string
	RecipientEmail() (string, error)
}

// Sender delivers report mails
type Sender interface {
	Send(msg mailer.Message) error
}

// Mode selects which report is produced
type Mode int

const (
	ModeSummary Mode = iota
	ModeToday
	ModeAccumulated
	ModeList
	ModeSend
	ModeFile
)

func (m Mode) String() string {
	switch m {
	case ModeSummary:
		return "summary"
	case ModeToday:
		return "today"
	case ModeAccumulated:
		return "accumulated"
	case ModeList:
		return "list"
	case ModeSend:
		return "send"
	case ModeFile:
		return "file"
	}
	return "unknown"
}

// Request describes one report
type Request struct {
	Mode Mode
	// Year and Month are honoured only when MonthGiven is set
	Year       int
	Month      time.Month
	MonthGiven bool
	// File is the CSV path for ModeFile
	File string
}

// Period returns the month the request targets. Mailed reports default to the
// previous month, every other report to the current one.
func (req Request) Period(now time.Time) (int, time.Month) {
	switch {
	case req.MonthGiven:
		return req.Year, req.Month
	case req.Mode == ModeSend:
		return dateutil.PreviousMonth(now)
	}
	return now.Year(), now.Month()
}

// Templates are the subject and body of report mails
type Templates struct {
	Subject string
	Body    string
}

// Options configures a Reporter
type Options struct {
	Out       io.Writer
	Sender    Sender
	Templates Templates
	Logger    *zap.Logger
}

// Reporter produces the reports of one subject
type Reporter struct {
	subject   Subject
	engine    *worktime.Engine
	out       io.Writer
	sender    Sender
	templates Templates
	logger    *zap.Logger
}

// New creates a reporter for subject over engine
func New(subject Subject, engine *worktime.Engine, opts Options) *Reporter {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Templates.Subject == "" {
		opts.Templates.Subject = report.DefaultSubjectTemplate
	}
	if opts.Templates.Body == "" {
		opts.Templates.Body = report.DefaultBodyTemplate
	}
	return &Reporter{
		subject:   subject,
		engine:    engine,
		out:       opts.Out,
		sender:    opts.Sender,
		templates: opts.Templates,
		logger:    opts.Logger.With(zap.String("identity", subject.Identity())),
	}
}

// Engine returns the reconciliation engine of the reporter
func (r *Reporter) Engine() *worktime.Engine {
	return r.engine
}

// Identity returns the identity of the subject
func (r *Reporter) Identity() string {
	return r.subject.Identity()
}

// Run produces the report described by req
func (r *Reporter) Run(req Request) error {
	year, month := req.Period(r.engine.Now())
	r.logger.Debug("Running report",
		zap.Stringer("mode", req.Mode),
		zap.Int("year", year),
		zap.Int("month", int(month)))

	switch req.Mode {
	case ModeFile:
		return r.WriteCSV(req.File, year, month)
	case ModeSend:
		return r.Mail(year, month)
	case ModeList:
		return r.List(year, month)
	case ModeAccumulated:
		return r.ShowAccumulated(year, month)
	case ModeToday:
		return r.ShowToday()
	}
	if req.MonthGiven {
		return r.ShowMonth(year, month)
	}
	return r.ShowNow()
}

func (r *Reporter) print(s string) error {
	_, err := io.WriteString(r.out, s)
	return err
}

// summary renders the reconciliation of a month
func (r *Reporter) summary(year int, month time.Month) (string, error) {
	res, err := r.engine.Reconcile(year, month)
	if err != nil {
		return "", err
	}
	return report.Summary(res), nil
}

// ShowNow prints the current month up to now
func (r *Reporter) ShowNow() error {
	now := r.engine.Now()
	res, err := r.engine.Reconcile(now.Year(), now.Month())
	if err != nil {
		return err
	}
	days, hours, err := r.engine.LaborUntil(now)
	if err != nil {
		return err
	}
	return r.print(report.NowSummary(report.NowStatus{
		Month:           res,
		LaborDaysUntil:  days,
		LaborHoursUntil: hours,
	}))
}

// ShowMonth prints the summary of a month
func (r *Reporter) ShowMonth(year int, month time.Month) error {
	s, err := r.summary(year, month)
	if err != nil {
		return err
	}
	return r.print(s)
}

// ShowAccumulated prints the year-to-date sum through month
func (r *Reporter) ShowAccumulated(year int, month time.Month) error {
	res, err := r.engine.Accumulate(month, year)
	if err != nil {
		return err
	}
	return r.print(report.AccumulatedSummary(res))
}

// ShowToday prints the reconciliation of the current day
func (r *Reporter) ShowToday() error {
	day, err := r.engine.Today()
	if err != nil {
		return err
	}
	return r.print(report.TodaySummary(day))
}

// List prints the attendance of a month
func (r *Reporter) List(year int, month time.Month) error {
	entries, err := r.engine.Entries(year, month)
	if err != nil {
		return err
	}
	return report.Listing(r.out, entries)
}

func (r *Reporter) document(year int, month time.Month) (string, string, error) {
	summary, err := r.summary(year, month)
	if err != nil {
		return "", "", err
	}
	entries, err := r.engine.Entries(year, month)
	if err != nil {
		return "", "", err
	}
	table, err := report.CSV(entries)
	if err != nil {
		return "", "", err
	}
	return summary, table, nil
}

// WriteCSV writes the summary and attendance of a month to path. When the
// subject is impersonated the file name is prefixed with its e-mail local part.
func (r *Reporter) WriteCSV(path string, year int, month time.Month) error {
	summary, table, err := r.document(year, month)
	if err != nil {
		return err
	}

	target := report.FileName(path, r.subject.TargetEmail())
	if err := os.WriteFile(target, []byte(report.Document(summary, table)), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}

	r.logger.Info("Report written",
		zap.String("file", target),
		zap.Int("year", year),
		zap.Int("month", int(month)))
	return nil
}

// Mail sends the report of a month to the subject's e-mail
func (r *Reporter) Mail(year int, month time.Month) error {
	if r.sender == nil {
		return fmt.Errorf("mail delivery is not configured")
	}

	to, err := r.subject.RecipientEmail()
	if err != nil {
		return err
	}

	summary, table, err := r.document(year, month)
	if err != nil {
		return err
	}

	emp, err := r.subject.Employee()
	if err != nil {
		return err
	}

	attachment := report.FileName(report.AttachmentName(year, month), r.subject.TargetEmail())
	vars := report.Vars{
		UserName:  emp.Name,
		UserEmail: to,
		Year:      year,
		Month:     month,
		FileName:  attachment,
		Summary:   summary,
		CSVTable:  table,
	}.Map()

	return r.sender.Send(mailer.Message{
		To:             to,
		Subject:        report.Expand(r.templates.Subject, vars),
		Body:           report.Expand(r.templates.Body, vars),
		AttachmentName: attachment,
		Attachment:     []byte(summary + table),
	})
}
