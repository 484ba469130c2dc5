package keyboard_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/timew-bot/internal/keyboard"
	"github.com/Tiliavir/timew-bot/internal/tracker"
)

var vocab = tracker.Vocabulary{
	Types: []string{"Meeting", "Review"},
	Tasks: []string{"Alpha", "Beta", "Gamma"},
}

func countMarked(row []string) int {
	n := 0
	for _, b := range row {
		if strings.HasPrefix(b, keyboard.OnLabel) {
			n++
		}
	}
	return n
}

func TestBuild_Idle(t *testing.T) {
	g := keyboard.Build(tracker.Status{Line: "There is no active time tracking."}, vocab)
	assert.Equal(t, keyboard.Grid{{"Start", "Status", "Week"}}, g)
}

func TestBuild_Tracking(t *testing.T) {
	g := keyboard.Build(tracker.Status{Type: "Review", Task: "Beta"}, vocab)
	assert.Equal(t, keyboard.Grid{
		{"Stop", "Status", "Week"},
		{"Meeting", "🟢Review"},
		{"Alpha", "🟢Beta", "Gamma"},
	}, g)
}

func TestBuild_MarkerCounts(t *testing.T) {
	tests := []struct {
		name      string
		st        tracker.Status
		wantTypes int
		wantTasks int
	}{
		{"both", tracker.Status{Type: "Meeting", Task: "Gamma"}, 1, 1},
		{"type only", tracker.Status{Type: "Meeting"}, 1, 0},
		{"task only", tracker.Status{Task: "Alpha"}, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := keyboard.Build(tt.st, vocab)
			require.Len(t, g, 3)
			assert.Equal(t, []string{"Stop", "Status", "Week"}, g[0])
			assert.Equal(t, tt.wantTypes, countMarked(g[1]))
			assert.Equal(t, tt.wantTasks, countMarked(g[2]))
		})
	}
}

func TestBuild_IsPure(t *testing.T) {
	st := tracker.Status{Type: "Meeting", Task: "Alpha"}
	first := keyboard.Build(st, vocab)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, keyboard.Build(st, vocab))
	}
	assert.Equal(t, []string{"Meeting", "Review"}, vocab.Types, "vocabulary must not be mutated")
}

func TestTimePicker(t *testing.T) {
	now := time.Date(2026, 2, 27, 0, 7, 0, 0, time.UTC)
	assert.Equal(t, keyboard.Grid{{"00:07", "00:02", "23:57", "23:52"}}, keyboard.TimePicker(now))
}

func TestStripLabel(t *testing.T) {
	assert.Equal(t, "Review", keyboard.StripLabel("🟢Review"))
	assert.Equal(t, "Review", keyboard.StripLabel("Review"))
}

func TestGridString(t *testing.T) {
	g := keyboard.Grid{{"Stop", "Status"}, {"🟢Meeting"}}
	assert.Equal(t, "[Stop] [Status]\n[🟢Meeting]\n", g.String())
}
