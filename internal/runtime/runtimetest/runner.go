// Package runtimetest provides a recording Runner for tests of packages that
// drive the interpreter.
package runtimetest

import (
	"context"
	"strings"
	"sync"

	"github.com/pypack-labs/pypack/internal/runtime"
)

// Call is one command observed by a Runner.
type Call struct {
	Command runtime.Command
	Stdio   runtime.Stdio
}

// Line returns the command line of the call.
func (c Call) Line() string { return c.Command.Line() }

// Runner records every command and answers with scripted exit codes.
// Codes maps a command line (see runtime.Command.Line) to its exit code;
// Handler, when set, takes precedence. Unknown commands exit with Default.
type Runner struct {
	Codes   map[string]int
	Handler func(cmd runtime.Command, stdio runtime.Stdio) (int, error)
	Default int

	mu    sync.Mutex
	calls []Call
}

// Run implements runtime.Runner.
func (r *Runner) Run(_ context.Context, cmd runtime.Command, stdio runtime.Stdio) (int, error) {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Command: cmd, Stdio: stdio})
	r.mu.Unlock()

	if r.Handler != nil {
		return r.Handler(cmd, stdio)
	}
	if code, ok := r.Codes[cmd.Line()]; ok {
		return code, nil
	}
	return r.Default, nil
}

// Calls returns the recorded calls in order.
func (r *Runner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Lines returns the command lines of the recorded calls in order.
func (r *Runner) Lines() []string {
	calls := r.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.Line()
	}
	return lines
}

// Count returns how many recorded command lines contain substr.
func (r *Runner) Count(substr string) int {
	n := 0
	for _, l := range r.Lines() {
		if strings.Contains(l, substr) {
			n++
		}
	}
	return n
}
