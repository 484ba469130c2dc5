package tracker_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/timew-bot/internal/tracker"
)

// script writes an executable shell script standing in for timew.
func script(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "timew")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestExecRun_Stdout(t *testing.T) {
	gw := tracker.NewExec(script(t, `echo "args: $*"`), time.Second, nil)

	out, err := gw.Run(context.Background(), "start", "Alpha", "Meeting")
	require.NoError(t, err)
	assert.Equal(t, "args: start Alpha Meeting\n", out)
}

func TestExecRun_StderrWhenStdoutEmpty(t *testing.T) {
	gw := tracker.NewExec(script(t, `echo "There is no active time tracking." >&2; exit 255`), time.Second, nil)

	out, err := gw.Run(context.Background(), "stop")
	require.NoError(t, err, "non-zero exit is not an error")
	assert.Equal(t, "There is no active time tracking.\n", out)
}

func TestExecRun_StdoutWinsOverStderr(t *testing.T) {
	gw := tracker.NewExec(script(t, `echo out; echo err >&2`), time.Second, nil)

	out, err := gw.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "out\n", out)
}

func TestExecRun_Timeout(t *testing.T) {
	gw := tracker.NewExec(script(t, `exec sleep 5`), 100*time.Millisecond, nil)

	_, err := gw.Run(context.Background(), "week")
	require.Error(t, err)
	assert.ErrorIs(t, err, tracker.ErrTimeout)
	assert.Contains(t, err.Error(), "week")
}

func TestExecRun_MissingExecutable(t *testing.T) {
	gw := tracker.NewExec(filepath.Join(t.TempDir(), "missing"), time.Second, nil)

	_, err := gw.Run(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, tracker.ErrTimeout)
}
