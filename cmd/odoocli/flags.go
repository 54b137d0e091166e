package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/username/odoocli/internal/runner"
	"github.com/username/odoocli/pkg/dateutil"
)

// reportFlags are the report selection flags shared by every command
type reportFlags struct {
	user        string
	month       int
	year        int
	file        string
	list        bool
	accumulated bool
	today       bool
	send        bool
}

func (f *reportFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.user, "user", "u", "", "Odoo login (password is prompted)")
	fs.IntVarP(&f.month, "month", "m", 0, "Month 1-12, or negative for months back")
	fs.IntVarP(&f.year, "year", "y", 0, "Year of --month (default current year)")
	fs.StringVarP(&f.file, "file", "f", "", "Write the monthly report to a CSV file")
	fs.BoolVarP(&f.list, "list", "l", false, "List the attendance of the month")
	fs.BoolVarP(&f.accumulated, "accumulated", "a", false, "Show the year-to-date totals")
	fs.BoolVarP(&f.today, "today", "t", false, "Show today's reconciliation")
	fs.BoolVarP(&f.send, "send", "s", false, "Mail the monthly report (default previous month)")
}

// mode picks the report; file wins over send, then list, accumulated and today
func (f *reportFlags) mode() runner.Mode {
	switch {
	case f.file != "":
		return runner.ModeFile
	case f.send:
		return runner.ModeSend
	case f.list:
		return runner.ModeList
	case f.accumulated:
		return runner.ModeAccumulated
	case f.today:
		return runner.ModeToday
	}
	return runner.ModeSummary
}

// request validates the flags and turns them into a report request
func (f *reportFlags) request(now time.Time) (runner.Request, error) {
	req := runner.Request{
		Mode:       f.mode(),
		File:       f.file,
		MonthGiven: f.month != 0,
	}

	year, month, err := dateutil.ResolvePeriod(f.month, f.year, now)
	if err != nil {
		return req, userError("Mes fuera de rango", err)
	}
	req.Year, req.Month = year, month
	return req, nil
}
