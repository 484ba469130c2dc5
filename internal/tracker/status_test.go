package tracker_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/timew-bot/internal/tracker"
	"github.com/Tiliavir/timew-bot/internal/tracker/trackertest"
)

var vocab = tracker.Vocabulary{
	Types: []string{"Meeting", "Review", "Development"},
	Tasks: []string{"Alpha", "Beta"},
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name     string
		out      string
		wantType string
		wantTask string
		wantLine string
	}{
		{
			name:     "tracking both",
			out:      "Tracking Beta Review\n  Started 2026-02-27T09:00:00\n  Total 1:00:00\n",
			wantType: "Review",
			wantTask: "Beta",
			wantLine: "Tracking Beta Review",
		},
		{
			name:     "first match wins",
			out:      "Tracking Meeting Alpha Review Beta",
			wantType: "Meeting",
			wantTask: "Alpha",
			wantLine: "Tracking Meeting Alpha Review Beta",
		},
		{
			name:     "tracking unknown tags",
			out:      "Tracking lunch",
			wantLine: "Tracking lunch",
		},
		{
			name:     "only type",
			out:      "Tracking Development",
			wantType: "Development",
			wantLine: "Tracking Development",
		},
		{
			name:     "idle",
			out:      "There is no active time tracking.\n",
			wantLine: "There is no active time tracking.",
		},
		{
			name:     "vocabulary word but no marker",
			out:      "Meeting Alpha",
			wantLine: "Meeting Alpha",
		},
		{
			name:     "lower-case marker",
			out:      "tracking Meeting Alpha",
			wantLine: "tracking Meeting Alpha",
		},
		{name: "empty", out: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := tracker.ParseStatus(tt.out, vocab)
			assert.Equal(t, tt.wantType, st.Type)
			assert.Equal(t, tt.wantTask, st.Task)
			assert.Equal(t, tt.wantLine, st.Line)
			assert.Equal(t, tt.wantType != "" || tt.wantTask != "", st.Active())
		})
	}
}

func TestParseStatus_DisjointFieldsNeverShareAWord(t *testing.T) {
	lines := []string{
		"Tracking Alpha Meeting",
		"Tracking Meeting Meeting Alpha Alpha",
		"Tracking Beta",
		"Tracking Review Development Beta Alpha",
	}
	for _, line := range lines {
		st := tracker.ParseStatus(line, vocab)
		if st.Type != "" && st.Task != "" {
			assert.NotEqual(t, st.Type, st.Task, line)
		}
		if st.Type != "" {
			assert.True(t, vocab.IsType(st.Type))
		}
		if st.Task != "" {
			assert.True(t, vocab.IsTask(st.Task))
		}
	}
}

func TestReadStatus(t *testing.T) {
	gw := trackertest.New(map[string]string{"": "Tracking Alpha Meeting\n  Started ...\n"})

	st, err := tracker.ReadStatus(context.Background(), gw, vocab)
	require.NoError(t, err)
	assert.Equal(t, tracker.Status{Line: "Tracking Alpha Meeting", Type: "Meeting", Task: "Alpha"}, st)
	assert.Equal(t, [][]string{nil}, gw.Calls)
}

func TestReadStatus_Error(t *testing.T) {
	gw := trackertest.New(nil)
	gw.Errors[""] = errors.New("boom")

	_, err := tracker.ReadStatus(context.Background(), gw, vocab)
	assert.EqualError(t, err, "boom")
}
