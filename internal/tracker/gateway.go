package tracker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// ErrTimeout is returned when a tracker call exceeds its time budget.
var ErrTimeout = errors.New("tracker call timed out")

// Gateway runs the external time-tracking executable.
type Gateway interface {
	// Run executes the tracker with args and returns stdout, or stderr when
	// stdout is empty. A non-zero exit status is not an error.
	Run(ctx context.Context, args ...string) (string, error)
}

// Exec is the Gateway backed by a real subprocess.
type Exec struct {
	Path    string
	Timeout time.Duration
	Log     *slog.Logger
}

// NewExec returns a subprocess gateway for the executable at path.
func NewExec(path string, timeout time.Duration, log *slog.Logger) *Exec {
	if log == nil {
		log = slog.Default()
	}
	return &Exec{Path: path, Timeout: timeout, Log: log}
}

// Run spawns the tracker and waits at most e.Timeout for it to finish.
func (e *Exec) Run(ctx context.Context, args ...string) (string, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.Path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Children that inherit the pipes must not keep Run blocked after a kill.
	cmd.WaitDelay = time.Second

	began := time.Now()
	err := cmd.Run()
	e.Log.Debug("tracker call", "args", args, "duration", time.Since(began), "exit", cmd.ProcessState.String())

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s: %s", ErrTimeout, e.Timeout, e.commandLine(args))
		}
		return "", fmt.Errorf("%s: %w", e.commandLine(args), ctxErr)
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return "", fmt.Errorf("running %s: %w", e.commandLine(args), err)
	}

	if stdout.Len() > 0 {
		return stdout.String(), nil
	}
	return stderr.String(), nil
}

func (e *Exec) commandLine(args []string) string {
	return strings.TrimSpace(e.Path + " " + strings.Join(args, " "))
}
