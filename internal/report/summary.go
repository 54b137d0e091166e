package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/username/odoocli/internal/worktime"
)

// Summary renders the reconciliation of one month
func Summary(r worktime.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d\n", MonthName(r.Month), r.Year)
	fmt.Fprintf(&b, "Días laborables:\t%d\n", r.LaborDays)
	fmt.Fprintf(&b, "Horas laborables:\t%s\n", FormatHours(r.LaborHours))
	fmt.Fprintf(&b, "Horas trabajadas:\t%s\n", FormatHours(r.WorkedHours))
	fmt.Fprintf(&b, "Diferencia:\t\t%s\n", FormatHours(r.DeltaHours))
	return b.String()
}

// NowStatus is the state of the current month at the time of the report
type NowStatus struct {
	Month           worktime.Result
	LaborDaysUntil  int
	LaborHoursUntil float64
}

// NowSummary renders the current month up to now
func NowSummary(s NowStatus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d\n", MonthName(s.Month.Month), s.Month.Year)
	fmt.Fprintf(&b, "Días laborables de este mes:\t%d\n", s.Month.LaborDays)
	fmt.Fprintf(&b, "Horas laborables de este mes:\t%s\n", FormatHours(s.Month.LaborHours))
	fmt.Fprintf(&b, "Días laborables hasta hoy:\t%d\n", s.LaborDaysUntil)
	fmt.Fprintf(&b, "Horas laborables hasta hoy:\t%s\n", FormatHours(s.LaborHoursUntil))
	fmt.Fprintf(&b, "Horas trabajadas hasta ahora:\t%s\n", FormatHours(s.Month.WorkedHours))
	fmt.Fprintf(&b, "Diferencia hasta ahora:\t\t%s\n", FormatHours(s.Month.WorkedHours-s.LaborHoursUntil))
	return b.String()
}

// AccumulatedSummary renders the year-to-date sum through r.Month
func AccumulatedSummary(r worktime.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Acumulado %s - %s %d\n", MonthName(1), MonthName(r.Month), r.Year)
	fmt.Fprintf(&b, "Días laborables:\t%d\n", r.LaborDays)
	fmt.Fprintf(&b, "Horas laborables:\t%s\n", FormatHours(r.LaborHours))
	fmt.Fprintf(&b, "Horas trabajadas:\t%s\n", FormatHours(r.WorkedHours))
	fmt.Fprintf(&b, "Diferencia:\t\t%s\n", FormatHours(r.DeltaHours))
	return b.String()
}

// TodaySummary renders the reconciliation of the current day
func TodaySummary(d worktime.DayStatus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hoy %s (%s)\n", d.Date.Format(DateLayout), kindLabel(d.Kind))
	fmt.Fprintf(&b, "Horas laborables:\t%s\n", FormatHours(d.ExpectedHours))
	fmt.Fprintf(&b, "Horas trabajadas:\t%s\n", FormatHours(d.WorkedHours))
	fmt.Fprintf(&b, "Diferencia:\t\t%s\n", FormatHours(d.DeltaHours))
	return b.String()
}

// Listing writes the attendance of a month as fixed columns
func Listing(w io.Writer, entries []worktime.Entry) error {
	if _, err := fmt.Fprintln(w, "Fecha      | Entrada  | Salida   | Horas"); err != nil {
		return err
	}
	for _, e := range entries {
		out := OpenCheckOut
		if !e.Open {
			out = e.CheckOut.Format(TimeLayout)
		}
		_, err := fmt.Fprintf(w, "%s | %s | %s | %s\n",
			e.CheckIn.Format(DateLayout),
			e.CheckIn.Format(TimeLayout),
			out,
			FormatHours(e.Hours))
		if err != nil {
			return err
		}
	}
	return nil
}
