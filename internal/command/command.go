// Package command turns one line of operator input into a typed Command.
package command

import (
	"slices"
	"strings"

	"github.com/Tiliavir/timew-bot/internal/keyboard"
	"github.com/Tiliavir/timew-bot/internal/timecalc"
	"github.com/Tiliavir/timew-bot/internal/tracker"
)

// Pending is the deep-command state: which action waits for a clock time.
type Pending int

const (
	PendingNone Pending = iota
	PendingStart
	PendingStop
)

func (p Pending) String() string {
	switch p {
	case PendingStart:
		return "start"
	case PendingStop:
		return "stop"
	default:
		return "none"
	}
}

// Kind enumerates every command the dispatcher understands.
type Kind int

const (
	Noop Kind = iota
	StartPrompt
	Start
	StopPrompt
	Stop
	ClockTime
	Repick
	Select
	Week
	Year
	Cancel
	Status
	Passthrough
	Invalid

	// Shortcut-manager commands.
	ListShortcuts
	AddShortcut
	DeleteShortcut
	ListCommands
	Join
	ContinueJoin
	Report
)

var kindNames = [...]string{
	Noop:           "noop",
	StartPrompt:    "start-prompt",
	Start:          "start",
	StopPrompt:     "stop-prompt",
	Stop:           "stop",
	ClockTime:      "clock-time",
	Repick:         "repick",
	Select:         "select",
	Week:           "week",
	Year:           "year",
	Cancel:         "cancel",
	Status:         "status",
	Passthrough:    "passthrough",
	Invalid:        "invalid",
	ListShortcuts:  "list-shortcuts",
	AddShortcut:    "add-shortcut",
	DeleteShortcut: "delete-shortcut",
	ListCommands:   "list-commands",
	Join:           "join",
	ContinueJoin:   "continue-join",
	Report:         "report",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Command is a parsed operator input. Only the fields relevant to Kind are set.
type Command struct {
	Kind Kind

	// Args holds the time arguments of Start/Stop and the arguments of Passthrough.
	Args []string
	// Time is the HH:MM token of ClockTime.
	Time string
	// Completes is the pending action a ClockTime finishes.
	Completes Pending

	// Type and Task are the vocabulary word chosen by Select; one is set.
	Type string
	Task string
	// ClearPending is set on a Select typed as "start <word>", which ends any prompt.
	ClearPending bool

	// Name is the tracker subcommand of Passthrough.
	Name string

	Alias  string
	Text   string
	Window string
}

// Expander substitutes shortcut aliases.
type Expander interface {
	Expand(words []string) []string
}

// Context is everything Parse needs besides the text.
type Context struct {
	Pending Pending
	Vocab   tracker.Vocabulary
	// Known are the tracker's own subcommands.
	Known []string
	// Shortcuts enables the shortcut-manager commands and alias expansion
	// when non-nil.
	Shortcuts Expander
}

// MetaCommands describes the shortcut-manager commands.
var MetaCommands = map[string]string{
	"j":      "join the last two items",
	"cj":     "continue and join the last two",
	"ls":     "list all shortcuts",
	"lc":     "list commands",
	"?":      "list commands",
	"as":     "add a shortcut as <short> <long>",
	"ds":     "delete shortcut <short>",
	"report": "generate time report [window]",
}

// Parse resolves text against the pending state and the command set.
func Parse(text string, pc Context) Command {
	words := normalize(text)
	if len(words) == 0 {
		return Command{Kind: Noop}
	}

	if pc.Shortcuts != nil {
		if cmd, ok := parseMeta(words); ok {
			return cmd
		}
		words = pc.Shortcuts.Expand(words)
		if len(words) == 0 {
			return Command{Kind: Noop}
		}
	}

	head := strings.ToLower(words[0])
	args := words[1:]

	switch head {
	case "start":
		if len(args) == 0 {
			return Command{Kind: StartPrompt}
		}
		if sel, ok := selectFor(args[0], pc.Vocab); ok {
			sel.ClearPending = true
			return sel
		}
		return Command{Kind: Start, Args: args}
	case "stop":
		if len(args) == 0 {
			return Command{Kind: StopPrompt}
		}
		return Command{Kind: Stop, Args: args}
	case "week":
		return Command{Kind: Week}
	case "year":
		return Command{Kind: Year}
	case "cancel":
		return Command{Kind: Cancel}
	case "status":
		return Command{Kind: Status}
	}

	if timecalc.IsClock(head) {
		return Command{Kind: ClockTime, Time: head, Completes: pc.Pending}
	}
	if sel, ok := selectFor(words[0], pc.Vocab); ok {
		return sel
	}

	if pc.Pending != PendingNone {
		return Command{Kind: Repick}
	}
	if slices.Contains(pc.Known, head) {
		return Command{Kind: Passthrough, Name: head, Args: args}
	}
	return Command{Kind: Passthrough, Name: "start", Args: words}
}

func normalize(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	words[0] = keyboard.StripLabel(words[0])
	if words[0] == "" {
		words = words[1:]
	}
	return words
}

func selectFor(word string, vocab tracker.Vocabulary) (Command, bool) {
	switch {
	case vocab.IsTask(word):
		return Command{Kind: Select, Task: word}, true
	case vocab.IsType(word):
		return Command{Kind: Select, Type: word}, true
	}
	return Command{}, false
}

func parseMeta(words []string) (Command, bool) {
	head := strings.ToLower(words[0])
	if _, ok := MetaCommands[head]; !ok {
		return Command{}, false
	}
	args := words[1:]

	switch head {
	case "ls":
		return Command{Kind: ListShortcuts}, true
	case "lc", "?":
		return Command{Kind: ListCommands}, true
	case "j":
		return Command{Kind: Join}, true
	case "cj":
		return Command{Kind: ContinueJoin}, true
	case "report":
		cmd := Command{Kind: Report}
		if len(args) > 0 {
			cmd.Window = args[0]
		}
		return cmd, true
	case "as":
		if len(args) < 2 {
			return Command{Kind: Invalid, Text: "usage: as <short> <long>"}, true
		}
		return Command{Kind: AddShortcut, Alias: args[0], Text: strings.Join(args[1:], " ")}, true
	case "ds":
		if len(args) < 1 {
			return Command{Kind: Invalid, Text: "usage: ds <short>"}, true
		}
		return Command{Kind: DeleteShortcut, Alias: args[0]}, true
	}
	return Command{}, false
}
