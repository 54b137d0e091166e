package report

import (
	"fmt"

	"github.com/gocarina/gocsv"

	"github.com/username/odoocli/internal/worktime"
)

type csvRow struct {
	CheckIn  string `csv:"entrada"`
	CheckOut string `csv:"salida"`
	Hours    string `csv:"horas"`
}

// CSV renders attendance entries as a CSV table with header entrada,salida,horas.
// The check-out of an open session is left blank.
func CSV(entries []worktime.Entry) (string, error) {
	rows := make([]*csvRow, 0, len(entries))
	for _, e := range entries {
		row := &csvRow{
			CheckIn: e.CheckIn.Format(DateTimeLayout),
			Hours:   FormatHours(e.Hours),
		}
		if !e.Open {
			row.CheckOut = e.CheckOut.Format(DateTimeLayout)
		}
		rows = append(rows, row)
	}

	out, err := gocsv.MarshalString(&rows)
	if err != nil {
		return "", fmt.Errorf("failed to render csv: %w", err)
	}
	return out, nil
}

// Document joins a summary and a CSV table the way report files are written
func Document(summary, table string) string {
	return summary + "\n" + table
}
