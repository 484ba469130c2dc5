package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/Tiliavir/timew-bot/internal/model"
)

// WriteCSV writes the header and one comma-separated line per row.
func WriteCSV(w io.Writer, rows []model.DayRow) error {
	if err := writeCSVLine(w, Columns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := writeCSVLine(w, Record(r)); err != nil {
			return err
		}
	}
	return nil
}

func writeCSVLine(w io.Writer, fields []string) error {
	escaped := make([]string, len(fields))
	for i, f := range fields {
		escaped[i] = EscapeCSV(f)
	}
	_, err := fmt.Fprintln(w, strings.Join(escaped, ","))
	return err
}

// EscapeCSV wraps a field in quotes if it contains a comma, quote, or newline.
func EscapeCSV(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
