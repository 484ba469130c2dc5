package export

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	"github.com/Tiliavir/timew-bot/internal/model"
)

var (
	colorHeader = lipgloss.Color("#fe8019")
	colorRed    = lipgloss.Color("#fb4934")
	colorDim    = lipgloss.Color("#928374")
)

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// RenderPreview renders rows as a bordered table. With color, the header is
// highlighted, weekends are dimmed and negative differences are red.
func RenderPreview(rows []model.DayRow, color bool) string {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = Record(r)
	}

	plain := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(Columns...).
		Rows(records...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if !color {
				return plain
			}
			switch {
			case row == table.HeaderRow:
				return plain.Bold(true).Foreground(colorHeader)
			case row >= 0 && row < len(rows) && col == len(Columns)-1 && rows[row].DiffMinutes < 0:
				return plain.Foreground(colorRed)
			case row >= 0 && row < len(rows) && rows[row].TargetMinutes == 0 && rows[row].ActualMinutes == 0:
				return plain.Foreground(colorDim)
			}
			return plain
		})
	return t.String()
}

// WritePreview writes the table to w, coloured when w is a terminal.
func WritePreview(w io.Writer, rows []model.DayRow) error {
	color := false
	if f, ok := w.(*os.File); ok {
		color = IsTerminal(f)
	}
	_, err := io.WriteString(w, RenderPreview(rows, color)+"\n")
	return err
}
