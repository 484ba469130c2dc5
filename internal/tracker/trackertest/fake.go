// Package trackertest provides a scripted tracker gateway for tests.
package trackertest

import (
	"context"
	"strings"
	"sync"
)

// Fake is an in-memory tracker.Gateway. Responses are keyed by the joined
// argument list ("" for the bare status call); every call is recorded.
type Fake struct {
	mu        sync.Mutex
	Responses map[string]string
	Errors    map[string]error
	Calls     [][]string
	// OnRun, if set, runs after a call is recorded and may change Responses.
	OnRun func(f *Fake, args []string)
}

// New returns a Fake with the given canned responses.
func New(responses map[string]string) *Fake {
	if responses == nil {
		responses = map[string]string{}
	}
	return &Fake{Responses: responses, Errors: map[string]error{}}
}

// Run implements tracker.Gateway.
func (f *Fake) Run(_ context.Context, args ...string) (string, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, append([]string(nil), args...))
	hook := f.OnRun
	f.mu.Unlock()

	if hook != nil {
		hook(f, args)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.Join(args, " ")
	if err, ok := f.Errors[key]; ok {
		return "", err
	}
	return f.Responses[key], nil
}

// SetStatus sets the output of the bare status call.
func (f *Fake) SetStatus(out string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Responses[""] = out
}

// CallsTo returns the recorded calls whose first argument is name.
func (f *Fake) CallsTo(name string) [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out [][]string
	for _, c := range f.Calls {
		if len(c) > 0 && c[0] == name {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets all recorded calls.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = nil
}
