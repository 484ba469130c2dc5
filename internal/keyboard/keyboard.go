// Package keyboard builds the button layouts sent with every reply.
package keyboard

import (
	"strings"
	"time"

	"github.com/Tiliavir/timew-bot/internal/timecalc"
	"github.com/Tiliavir/timew-bot/internal/tracker"
)

// OnLabel marks the active type and task.
const OnLabel = "🟢"

// Control buttons.
const (
	Start  = "Start"
	Stop   = "Stop"
	Status = "Status"
	Week   = "Week"
)

// Grid is a button layout, rows top to bottom. A button's label is also the
// text it sends back.
type Grid [][]string

// Build returns the keyboard for the given tracking status.
func Build(st tracker.Status, vocab tracker.Vocabulary) Grid {
	if !st.Active() {
		return Grid{{Start, Status, Week}}
	}
	return Grid{
		{Stop, Status, Week},
		markActive(vocab.Types, st.Type),
		markActive(vocab.Tasks, st.Task),
	}
}

// TimePicker returns a single row with now and the three preceding
// five-minute steps.
func TimePicker(now time.Time) Grid {
	return Grid{timecalc.PickerTimes(now)}
}

// StripLabel removes the active marker from a pressed button's text.
func StripLabel(s string) string {
	return strings.TrimPrefix(s, OnLabel)
}

func markActive(values []string, active string) []string {
	row := make([]string, len(values))
	for i, v := range values {
		if v == active {
			row[i] = OnLabel + v
		} else {
			row[i] = v
		}
	}
	return row
}

// String renders the grid as bracketed rows, one per line, for terminals.
func (g Grid) String() string {
	var b strings.Builder
	for _, row := range g {
		for i, btn := range row {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString("[" + btn + "]")
		}
		b.WriteByte('\n')
	}
	return b.String()
}
