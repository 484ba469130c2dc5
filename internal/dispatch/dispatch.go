// Package dispatch executes parsed operator commands against the tracker and
// owns the pending deep-command state of a chat session.
package dispatch

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Tiliavir/timew-bot/internal/command"
	"github.com/Tiliavir/timew-bot/internal/keyboard"
	"github.com/Tiliavir/timew-bot/internal/storage"
	"github.com/Tiliavir/timew-bot/internal/summary"
	"github.com/Tiliavir/timew-bot/internal/tracker"
)

// Prompt texts shown above the time picker.
const (
	WelcomeText = "Welcome"
	ByeText     = "Bye"
)

// Reply is what goes back to the operator after one input.
type Reply struct {
	Text     string
	Keyboard keyboard.Grid
}

// Session holds the per-chat state. The zero value is ready to use.
type Session struct {
	mu      sync.Mutex
	pending command.Pending
}

// Pending returns the action currently waiting for a clock time.
func (s *Session) Pending() command.Pending {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Options configures a Dispatcher.
type Options struct {
	Vocab       tracker.Vocabulary
	DefaultType string
	DefaultTask string
	// Commands are the tracker's subcommands, used for passthrough.
	Commands []string
	// Shortcuts enables shortcut mode when non-nil.
	Shortcuts *storage.Shortcuts
	// ReportWindow and SpecialTags feed the report command.
	ReportWindow string
	SpecialTags  []string
	// Clock defaults to time.Now.
	Clock func() time.Time
	Log   *slog.Logger
}

// Dispatcher runs commands through a tracker gateway.
type Dispatcher struct {
	gw   tracker.Gateway
	opts Options
	log  *slog.Logger
}

// New returns a Dispatcher over gw.
func New(gw tracker.Gateway, opts Options) *Dispatcher {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.ReportWindow == "" {
		opts.ReportWindow = summary.DefaultWindow
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{gw: gw, opts: opts, log: log}
}

func (d *Dispatcher) parseContext(p command.Pending) command.Context {
	pc := command.Context{
		Pending: p,
		Vocab:   d.opts.Vocab,
		Known:   d.opts.Commands,
	}
	if d.opts.Shortcuts != nil {
		pc.Shortcuts = d.opts.Shortcuts
	}
	return pc
}

// Handle parses text in the session's state and executes it. Tracker
// failures are reported in the reply text; the returned error is non-nil
// only when ctx is done.
func (d *Dispatcher) Handle(ctx context.Context, s *Session, text string) (Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmd := command.Parse(text, d.parseContext(s.pending))
	d.log.Debug("dispatch", "kind", cmd.Kind.String(), "pending", s.pending.String())

	var out string
	switch cmd.Kind {
	case command.Noop:
	case command.StartPrompt:
		s.pending = command.PendingStart
		return d.picker(WelcomeText), nil
	case command.StopPrompt:
		s.pending = command.PendingStop
		return d.picker(ByeText), nil
	case command.Repick:
		if s.pending == command.PendingStop {
			return d.picker(ByeText), nil
		}
		return d.picker(WelcomeText), nil
	case command.Start:
		s.pending = command.PendingNone
		out = d.start(ctx, cmd.Args...)
	case command.Stop:
		s.pending = command.PendingNone
		out = d.run(ctx, append([]string{"stop"}, cmd.Args...)...)
	case command.ClockTime:
		s.pending = command.PendingNone
		switch cmd.Completes {
		case command.PendingStart:
			out = d.start(ctx, cmd.Time)
		case command.PendingStop:
			out = d.run(ctx, "stop", cmd.Time)
		case command.PendingNone:
		}
	case command.Select:
		if cmd.ClearPending {
			s.pending = command.PendingNone
		}
		out = d.selectTag(ctx, cmd)
	case command.Week:
		out = d.run(ctx, "week")
	case command.Year:
		out = d.run(ctx, "summary", ":year")
	case command.Cancel:
		out = d.run(ctx, "cancel")
	case command.Status:
		out = d.run(ctx, "summary", ":ids")
	case command.Passthrough:
		out = d.run(ctx, append([]string{cmd.Name}, cmd.Args...)...)
	case command.Invalid:
		out = cmd.Text
	case command.ListShortcuts:
		out = d.listShortcuts()
	case command.AddShortcut:
		out = d.addShortcut(cmd.Alias, cmd.Text)
	case command.DeleteShortcut:
		out = d.deleteShortcut(cmd.Alias)
	case command.ListCommands:
		out = d.listCommands()
	case command.Join:
		out = d.run(ctx, "join", "@1", "@2")
	case command.ContinueJoin:
		out = joinOutput(d.run(ctx, "continue"), d.run(ctx, "join", "@1", "@2"))
	case command.Report:
		out = d.report(ctx, cmd.Window)
	default:
		out = fmt.Sprintf("unhandled command %s", cmd.Kind)
	}

	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}
	return d.finish(ctx, out), nil
}

// Status reads the tracker status and returns it as a reply without
// executing anything.
func (d *Dispatcher) Status(ctx context.Context) Reply {
	return d.finish(ctx, "")
}

func (d *Dispatcher) picker(text string) Reply {
	return Reply{Text: text, Keyboard: keyboard.TimePicker(d.opts.Clock())}
}

// finish re-reads the status and builds the keyboard. The reply text is the
// action output, or the status line when the action printed nothing.
func (d *Dispatcher) finish(ctx context.Context, out string) Reply {
	st, err := tracker.ReadStatus(ctx, d.gw, d.opts.Vocab)
	if err != nil {
		d.log.Warn("reading status", "error", err)
		if strings.TrimSpace(out) == "" {
			out = err.Error()
		}
	}
	text := strings.TrimSpace(out)
	if text == "" {
		text = st.Line
	}
	return Reply{Text: text, Keyboard: keyboard.Build(st, d.opts.Vocab)}
}

// run executes one tracker call; a failure becomes the output text.
func (d *Dispatcher) run(ctx context.Context, args ...string) string {
	out, err := d.gw.Run(ctx, args...)
	if err != nil {
		d.log.Warn("tracker call failed", "args", args, "error", err)
		return err.Error()
	}
	return out
}

// start begins tracking the default task and type, followed by extra.
func (d *Dispatcher) start(ctx context.Context, extra ...string) string {
	args := append([]string{"start"}, nonEmpty(d.opts.DefaultTask, d.opts.DefaultType)...)
	return d.run(ctx, append(args, extra...)...)
}

// selectTag restarts tracking with the chosen task or type replaced and the
// other field kept at its active value, falling back to the default.
func (d *Dispatcher) selectTag(ctx context.Context, cmd command.Command) string {
	st, err := tracker.ReadStatus(ctx, d.gw, d.opts.Vocab)
	if err != nil {
		d.log.Warn("reading status", "error", err)
	}
	task := cmp.Or(st.Task, d.opts.DefaultTask)
	typ := cmp.Or(st.Type, d.opts.DefaultType)
	if cmd.Task != "" {
		task = cmd.Task
	}
	if cmd.Type != "" {
		typ = cmd.Type
	}
	return d.run(ctx, append([]string{"start"}, nonEmpty(task, typ)...)...)
}

func (d *Dispatcher) report(ctx context.Context, window string) string {
	if window == "" {
		window = d.opts.ReportWindow
	}
	sections, err := summary.Build(ctx, d.gw, summary.Options{
		Window:      window,
		Types:       d.opts.Vocab.Types,
		Tasks:       d.opts.Vocab.Tasks,
		SpecialTags: d.opts.SpecialTags,
	})
	if err != nil {
		d.log.Warn("building report", "window", window, "error", err)
		return err.Error()
	}
	return summary.Format(sections)
}

func (d *Dispatcher) listShortcuts() string {
	if d.opts.Shortcuts == nil {
		return ""
	}
	return FormatShortcuts(d.opts.Shortcuts)
}

func (d *Dispatcher) addShortcut(alias, text string) string {
	if err := d.opts.Shortcuts.Add(alias, text); err != nil {
		d.log.Error("saving shortcuts", "error", err)
		return err.Error()
	}
	d.log.Info("shortcut added", "alias", alias)
	return fmt.Sprintf("%s: %s", alias, text)
}

func (d *Dispatcher) deleteShortcut(alias string) string {
	found, err := d.opts.Shortcuts.Delete(alias)
	if err != nil {
		d.log.Error("saving shortcuts", "error", err)
		return err.Error()
	}
	if !found {
		return fmt.Sprintf("no shortcut %q", alias)
	}
	d.log.Info("shortcut deleted", "alias", alias)
	return fmt.Sprintf("deleted %s", alias)
}

func (d *Dispatcher) listCommands() string {
	var b strings.Builder
	b.WriteString("tracker: ")
	b.WriteString(strings.Join(d.opts.Commands, " "))
	b.WriteString("\n")
	for _, name := range slices.Sorted(maps.Keys(command.MetaCommands)) {
		fmt.Fprintf(&b, "%s: %s\n", name, command.MetaCommands[name])
	}
	return b.String()
}

// FormatShortcuts lists the shortcut map as "alias: expansion" lines.
func FormatShortcuts(s *storage.Shortcuts) string {
	aliases := s.Aliases()
	if len(aliases) == 0 {
		return "No shortcuts defined."
	}
	var b strings.Builder
	for _, a := range aliases {
		exp, _ := s.Lookup(a)
		fmt.Fprintf(&b, "%s: %s\n", a, exp)
	}
	return b.String()
}

func joinOutput(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
