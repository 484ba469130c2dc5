package tracker

import (
	"context"
	"slices"
	"strings"
)

// trackingMarker is the first word of the status line while an interval is open.
const trackingMarker = "Tracking"

// Vocabulary holds the operator-configured work types and tasks.
type Vocabulary struct {
	Types []string
	Tasks []string
}

// IsType reports whether word is a configured work type.
func (v Vocabulary) IsType(word string) bool { return slices.Contains(v.Types, word) }

// IsTask reports whether word is a configured task.
func (v Vocabulary) IsTask(word string) bool { return slices.Contains(v.Tasks, word) }

// Status is the tracker state derived from the first status line.
// Empty Type or Task means absent.
type Status struct {
	Line string
	Type string
	Task string
}

// Active reports whether the status names a type or a task.
func (s Status) Active() bool {
	return s.Type != "" || s.Task != ""
}

// ReadStatus runs the tracker without arguments and parses its first line.
func ReadStatus(ctx context.Context, gw Gateway, vocab Vocabulary) (Status, error) {
	out, err := gw.Run(ctx)
	if err != nil {
		return Status{}, err
	}
	return ParseStatus(out, vocab), nil
}

// ParseStatus extracts the active type and task from tracker output.
func ParseStatus(out string, vocab Vocabulary) Status {
	line, _, _ := strings.Cut(out, "\n")
	st := Status{Line: line}

	words := strings.Split(line, " ")
	if words[0] != trackingMarker {
		return st
	}
	for _, w := range words[1:] {
		if vocab.IsType(w) {
			st.Type = w
			break
		}
	}
	for _, w := range words[1:] {
		if vocab.IsTask(w) {
			st.Task = w
			break
		}
	}
	return st
}
