package report

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/username/odoocli/internal/worktime"
)

// Layouts used to display local timestamps
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// OpenCheckOut is shown in listings for a session that is still open
const OpenCheckOut = "--------"

var monthNames = [...]string{
	"Enero",
	"Febrero",
	"Marzo",
	"Abril",
	"Mayo",
	"Junio",
	"Julio",
	"Agosto",
	"Septiembre",
	"Octubre",
	"Noviembre",
	"Diciembre",
}

// MonthName returns the Spanish name of month
func MonthName(month time.Month) string {
	if month < time.January || month > time.December {
		return month.String()
	}
	return monthNames[month-1]
}

// FormatHours renders hours as ±HH:MM:SS, with a space in place of the sign
// for non-negative values. Hours are not wrapped at 24.
func FormatHours(hours float64) string {
	sign := " "
	if hours < 0 {
		sign = "-"
	}
	seconds := int64(math.Round(math.Abs(hours) * 3600))
	if seconds == 0 {
		sign = " "
	}
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, seconds/3600, seconds/60%60, seconds%60)
}

func kindLabel(kind worktime.DayKind) string {
	switch kind {
	case worktime.DayWorkday:
		return "laborable"
	case worktime.DayWeekend:
		return "fin de semana"
	case worktime.DayHoliday:
		return "festivo"
	case worktime.DayVacation:
		return "vacaciones"
	}
	return "desconocido"
}

// FileName prefixes the base name of path with the local part of email.
// An empty email leaves path untouched.
func FileName(path, email string) string {
	if email == "" {
		return path
	}
	local := strings.SplitN(email, "@", 2)[0]
	dir, base := filepath.Split(path)
	return filepath.Join(dir, local+"-"+base)
}

// AttachmentName returns the name of the CSV attached to monthly report mails
func AttachmentName(year int, month time.Month) string {
	return fmt.Sprintf("asistencia%d-%d.csv", year, month)
}
