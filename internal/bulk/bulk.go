package bulk

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/username/odoocli/internal/runner"
)

// Directory lists the users a bulk run falls back to. *odoo.Session implements it.
type Directory interface {
	ActiveUserEmails() ([]string, error)
}

// Factory creates a reporter acting as the user registered with email
type Factory func(email string) *runner.Reporter

// Stats summarizes a bulk run
type Stats struct {
	Processed []string
	Skipped   []string
}

// Driver runs one report per target user, strictly in sequence
type Driver struct {
	users   Directory
	factory Factory
	out     io.Writer
	logger  *zap.Logger
}

// NewDriver creates a new bulk driver; notices are printed to out
func NewDriver(users Directory, factory Factory, out io.Writer, logger *zap.Logger) *Driver {
	return &Driver{
		users:   users,
		factory: factory,
		out:     out,
		logger:  logger,
	}
}

// Targets returns emails, or every active user's e-mail when emails is empty
func (d *Driver) Targets(emails []string) ([]string, error) {
	if len(emails) > 0 {
		return emails, nil
	}
	all, err := d.users.ActiveUserEmails()
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}
	return all, nil
}

// Run produces req for every target. A target whose worked hours for the
// requested period are exactly zero is skipped with a notice. This is a
// heuristic for inactive accounts: someone who really worked zero hours is
// skipped too. The first error aborts the run.
func (d *Driver) Run(emails []string, req runner.Request) (Stats, error) {
	var stats Stats

	targets, err := d.Targets(emails)
	if err != nil {
		return stats, err
	}

	d.logger.Info("Starting bulk run",
		zap.Int("targets", len(targets)),
		zap.Stringer("mode", req.Mode))

	for _, email := range targets {
		rep := d.factory(email)
		year, month := req.Period(rep.Engine().Now())

		worked, err := rep.Engine().WorkedHours(year, month)
		if err != nil {
			return stats, fmt.Errorf("failed to get worked hours of %s: %w", email, err)
		}

		if worked == 0 {
			fmt.Fprintln(d.out, "Se omite", email)
			d.logger.Info("Skipping user without worked hours",
				zap.String("email", email),
				zap.Int("year", year),
				zap.Int("month", int(month)))
			stats.Skipped = append(stats.Skipped, email)
			continue
		}

		fmt.Fprintln(d.out, "Procesando", email)
		if err := rep.Run(req); err != nil {
			return stats, fmt.Errorf("failed to process %s: %w", email, err)
		}
		stats.Processed = append(stats.Processed, email)
	}

	d.logger.Info("Bulk run completed",
		zap.Int("processed", len(stats.Processed)),
		zap.Int("skipped", len(stats.Skipped)))

	return stats, nil
}
