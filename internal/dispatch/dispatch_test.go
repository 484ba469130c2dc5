package dispatch_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/timew-bot/internal/command"
	"github.com/Tiliavir/timew-bot/internal/dispatch"
	"github.com/Tiliavir/timew-bot/internal/keyboard"
	"github.com/Tiliavir/timew-bot/internal/storage"
	"github.com/Tiliavir/timew-bot/internal/tracker"
	"github.com/Tiliavir/timew-bot/internal/tracker/trackertest"
)

const (
	idle     = "There is no active time tracking."
	tracking = "Tracking Alpha Meeting"
)

var (
	vocab = tracker.Vocabulary{
		Types: []string{"Meeting", "Review"},
		Tasks: []string{"Alpha", "Beta"},
	}
	fixedNow = time.Date(2026, 3, 2, 9, 20, 0, 0, time.UTC)
)

func newDispatcher(t *testing.T, fake *trackertest.Fake, shortcuts *storage.Shortcuts) *dispatch.Dispatcher {
	t.Helper()
	return dispatch.New(fake, dispatch.Options{
		Vocab:       vocab,
		DefaultType: "Meeting",
		DefaultTask: "Alpha",
		Commands:    []string{"continue", "join", "summary", "week"},
		Shortcuts:   shortcuts,
		Clock:       func() time.Time { return fixedNow },
	})
}

func TestHandle_StartThenClockTime(t *testing.T) {
	fake := trackertest.New(nil)
	fake.SetStatus(idle)
	d := newDispatcher(t, fake, nil)
	var s dispatch.Session
	ctx := context.Background()

	reply, err := d.Handle(ctx, &s, "Start")
	require.NoError(t, err)
	assert.Equal(t, dispatch.WelcomeText, reply.Text)
	assert.Equal(t, keyboard.Grid{{"09:20", "09:15", "09:10", "09:05"}}, reply.Keyboard)
	assert.Equal(t, command.PendingStart, s.Pending())
	assert.Empty(t, fake.Calls, "the prompt must not touch the tracker")

	fake.Responses["start Alpha Meeting 09:15"] = "Tracking Alpha Meeting\n  Started 2026-03-02T09:15:00"
	fake.OnRun = func(f *trackertest.Fake, args []string) {
		if len(args) > 0 && args[0] == "start" {
			f.Responses[""] = tracking
		}
	}

	reply, err = d.Handle(ctx, &s, "09:15")
	require.NoError(t, err)
	assert.Equal(t, command.PendingNone, s.Pending())
	assert.Equal(t, [][]string{{"start", "Alpha", "Meeting", "09:15"}}, fake.CallsTo("start"))
	assert.Contains(t, reply.Text, "Tracking Alpha Meeting")
	assert.Equal(t, keyboard.Grid{
		{keyboard.Stop, keyboard.Status, keyboard.Week},
		{"🟢Meeting", "Review"},
		{"🟢Alpha", "Beta"},
	}, reply.Keyboard)
}

func TestHandle_StopThenClockTime(t *testing.T) {
	fake := trackertest.New(nil)
	fake.SetStatus(tracking)
	d := newDispatcher(t, fake, nil)
	var s dispatch.Session

	reply, err := d.Handle(context.Background(), &s, "Stop")
	require.NoError(t, err)
	assert.Equal(t, dispatch.ByeText, reply.Text)
	assert.Equal(t, command.PendingStop, s.Pending())

	_, err = d.Handle(context.Background(), &s, "17:30")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"stop", "17:30"}}, fake.CallsTo("stop"))
	assert.Equal(t, command.PendingNone, s.Pending())
}

func TestHandle_ClockTimeWithoutPendingOnlyReadsStatus(t *testing.T) {
	fake := trackertest.New(nil)
	fake.SetStatus(idle)
	d := newDispatcher(t, fake, nil)
	var s dispatch.Session

	reply, err := d.Handle(context.Background(), &s, "10:00")
	require.NoError(t, err)
	assert.Empty(t, fake.CallsTo("start"))
	assert.Empty(t, fake.CallsTo("stop"))
	assert.Equal(t, idle, reply.Text)
	assert.Equal(t, keyboard.Grid{{keyboard.Start, keyboard.Status, keyboard.Week}}, reply.Keyboard)
}

func TestHandle_UnrecognizedWhilePendingRepicks(t *testing.T) {
	fake := trackertest.New(nil)
	fake.SetStatus(idle)
	d := newDispatcher(t, fake, nil)
	var s dispatch.Session

	_, err := d.Handle(context.Background(), &s, "stop")
	require.NoError(t, err)

	reply, err := d.Handle(context.Background(), &s, "later please")
	require.NoError(t, err)
	assert.Equal(t, dispatch.ByeText, reply.Text)
	assert.Len(t, reply.Keyboard, 1)
	assert.Equal(t, command.PendingStop, s.Pending())
	assert.Empty(t, fake.Calls)
}

func TestHandle_StartWithTaskEndsStartPrompt(t *testing.T) {
	fake := trackertest.New(nil)
	fake.SetStatus(idle)
	d := newDispatcher(t, fake, nil)
	var s dispatch.Session
	ctx := context.Background()

	_, err := d.Handle(ctx, &s, "start")
	require.NoError(t, err)
	require.Equal(t, command.PendingStart, s.Pending())

	_, err = d.Handle(ctx, &s, "start Beta")
	require.NoError(t, err)
	assert.Equal(t, command.PendingNone, s.Pending())
	assert.Equal(t, [][]string{{"start", "Beta", "Meeting"}}, fake.CallsTo("start"))

	_, err = d.Handle(ctx, &s, "10:00")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"start", "Beta", "Meeting"}}, fake.CallsTo("start"),
		"a later clock time must not restart the default task")
}

func TestHandle_SelectKeepsPendingPrompt(t *testing.T) {
	fake := trackertest.New(nil)
	fake.SetStatus(idle)
	d := newDispatcher(t, fake, nil)
	var s dispatch.Session

	_, err := d.Handle(context.Background(), &s, "stop")
	require.NoError(t, err)
	_, err = d.Handle(context.Background(), &s, "Review")
	require.NoError(t, err)
	assert.Equal(t, command.PendingStop, s.Pending())
}

func TestHandle_Select(t *testing.T) {
	tests := []struct {
		name   string
		status string
		input  string
		want   []string
	}{
		{"task keeps active type", "Tracking Beta Review", "Alpha", []string{"start", "Alpha", "Review"}},
		{"type keeps active task", "Tracking Beta Review", "🟢Meeting", []string{"start", "Beta", "Meeting"}},
		{"defaults when idle", idle, "Beta", []string{"start", "Beta", "Meeting"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := trackertest.New(nil)
			fake.SetStatus(tt.status)
			d := newDispatcher(t, fake, nil)
			var s dispatch.Session

			_, err := d.Handle(context.Background(), &s, tt.input)
			require.NoError(t, err)
			assert.Equal(t, [][]string{tt.want}, fake.CallsTo("start"))
		})
	}
}

func TestHandle_TrackerCommands(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"week", []string{"week"}},
		{"Year", []string{"summary", ":year"}},
		{"cancel", []string{"cancel"}},
		{"Status", []string{"summary", ":ids"}},
		{"summary :week", []string{"summary", ":week"}},
		{"Fix Bug", []string{"start", "Fix", "Bug"}},
		{"stop 17:00", []string{"stop", "17:00"}},
		{"start 08:00", []string{"start", "Alpha", "Meeting", "08:00"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			fake := trackertest.New(nil)
			fake.SetStatus(idle)
			d := newDispatcher(t, fake, nil)
			var s dispatch.Session

			_, err := d.Handle(context.Background(), &s, tt.input)
			require.NoError(t, err)
			require.Len(t, fake.Calls, 2, "action plus status refresh")
			assert.Equal(t, tt.want, fake.Calls[0])
			assert.Empty(t, fake.Calls[1])
		})
	}
}

func TestHandle_OutputOrStatusLine(t *testing.T) {
	fake := trackertest.New(map[string]string{"week": "Wk Date Day Tags\n W10 ..."})
	fake.SetStatus(idle)
	d := newDispatcher(t, fake, nil)
	var s dispatch.Session

	reply, err := d.Handle(context.Background(), &s, "week")
	require.NoError(t, err)
	assert.Equal(t, "Wk Date Day Tags\n W10 ...", reply.Text)

	reply, err = d.Handle(context.Background(), &s, "cancel")
	require.NoError(t, err)
	assert.Equal(t, idle, reply.Text, "empty output falls back to the status line")
}

func TestHandle_GatewayErrorBecomesReply(t *testing.T) {
	fake := trackertest.New(nil)
	fake.SetStatus(idle)
	fake.Errors["stop 17:00"] = errors.New("tracker timed out after 30s: timew stop 17:00")
	d := newDispatcher(t, fake, nil)
	var s dispatch.Session

	reply, err := d.Handle(context.Background(), &s, "stop 17:00")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "timed out")
	assert.Equal(t, command.PendingNone, s.Pending())
}

func TestHandle_CancelledContext(t *testing.T) {
	fake := trackertest.New(nil)
	d := newDispatcher(t, fake, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var s dispatch.Session
	_, err := d.Handle(ctx, &s, "week")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHandle_ShortcutMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shortcuts.json")
	store, err := storage.LoadShortcuts(path, map[string]string{"m": "Meeting"})
	require.NoError(t, err)

	fake := trackertest.New(nil)
	fake.SetStatus(idle)
	d := newDispatcher(t, fake, store)
	var s dispatch.Session
	ctx := context.Background()

	reply, err := d.Handle(ctx, &s, "ls")
	require.NoError(t, err)
	assert.Equal(t, "m: Meeting", reply.Text)

	reply, err = d.Handle(ctx, &s, "as fb Fix Bug")
	require.NoError(t, err)
	assert.Equal(t, "fb: Fix Bug", reply.Text)
	exp, ok := store.Lookup("fb")
	require.True(t, ok)
	assert.Equal(t, "Fix Bug", exp)

	reloaded, err := storage.LoadShortcuts(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"fb", "m"}, reloaded.Aliases(), "add persists the map")

	_, err = d.Handle(ctx, &s, "fb")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"start", "Fix", "Bug"}}, fake.CallsTo("start"))

	reply, err = d.Handle(ctx, &s, "ds fb")
	require.NoError(t, err)
	assert.Equal(t, "deleted fb", reply.Text)

	reply, err = d.Handle(ctx, &s, "ds fb")
	require.NoError(t, err)
	assert.Equal(t, `no shortcut "fb"`, reply.Text)

	reply, err = d.Handle(ctx, &s, "as")
	require.NoError(t, err)
	assert.Equal(t, "usage: as <short> <long>", reply.Text)
}

func TestHandle_JoinCommands(t *testing.T) {
	fake := trackertest.New(map[string]string{
		"continue":   "Tracking Alpha",
		"join @1 @2": "Joined @1 and @2.",
	})
	fake.SetStatus(idle)
	store, err := storage.LoadShortcuts("", nil)
	require.NoError(t, err)
	d := newDispatcher(t, fake, store)
	var s dispatch.Session

	reply, err := d.Handle(context.Background(), &s, "cj")
	require.NoError(t, err)
	assert.Equal(t, "Tracking Alpha\nJoined @1 and @2.", reply.Text)
	assert.Equal(t, []string{"continue"}, fake.Calls[0])
	assert.Equal(t, []string{"join", "@1", "@2"}, fake.Calls[1])

	fake.Reset()
	_, err = d.Handle(context.Background(), &s, "j")
	require.NoError(t, err)
	assert.Len(t, fake.CallsTo("join"), 1)
	assert.Empty(t, fake.CallsTo("continue"))
}

func TestHandle_ListCommands(t *testing.T) {
	fake := trackertest.New(nil)
	fake.SetStatus(idle)
	store, err := storage.LoadShortcuts("", nil)
	require.NoError(t, err)
	d := newDispatcher(t, fake, store)
	var s dispatch.Session

	reply, err := d.Handle(context.Background(), &s, "?")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "tracker: continue join summary week")
	assert.Contains(t, reply.Text, "as: add a shortcut as <short> <long>")
}

func TestHandle_Report(t *testing.T) {
	fake := trackertest.New(map[string]string{
		"tags":                          "Tag  Description\n---- -----------\nMeeting\nAlpha\nFix\n",
		"summary 2w before now Meeting": "\n  Total 1:00:00\n\n               1:00:00\n",
		"summary 2w before now Review":  "No filtered data found in the range",
		"summary 2w before now Fix":     "\n               3:00:00\n",
	})
	fake.SetStatus(idle)
	store, err := storage.LoadShortcuts("", nil)
	require.NoError(t, err)
	d := newDispatcher(t, fake, store)
	var s dispatch.Session

	reply, err := d.Handle(context.Background(), &s, "report 2w")
	require.NoError(t, err)
	assert.Equal(t, "Meeting(100%,1:00:00)\nFix(100%,3:00:00)", reply.Text)
}

func TestStatus(t *testing.T) {
	fake := trackertest.New(nil)
	fake.SetStatus(tracking + "\n  Started 2026-03-02T09:00:00")
	d := newDispatcher(t, fake, nil)

	reply := d.Status(context.Background())
	assert.Equal(t, tracking, reply.Text)
	assert.Len(t, reply.Keyboard, 3)
}

func TestFormatShortcuts_Empty(t *testing.T) {
	store, err := storage.LoadShortcuts("", nil)
	require.NoError(t, err)
	assert.Equal(t, "No shortcuts defined.", dispatch.FormatShortcuts(store))
}
