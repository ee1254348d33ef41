package runtime

import (
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Command is a single interpreter invocation. Path is the executable and
// Args are passed to it as an argument vector, never through a shell.
type Command struct {
	Path string
	Args []string
	Dir  string
	Env  []string
}

// Build composes an invocation from a runtime location prefix, the runtime
// executable name and its arguments. An empty prefix means the executable is
// looked up on the system path; otherwise prefix is a directory ending in a
// separator.
func Build(prefix, exe string, args ...string) Command {
	return Command{
		Path: prefix + exe,
		Args: args,
	}
}

// Line renders the command as a plain shell line: prefix, executable, a
// single space and the arguments separated by spaces. Nothing is escaped.
func (c Command) Line() string {
	if len(c.Args) == 0 {
		return c.Path
	}
	return c.Path + " " + strings.Join(c.Args, " ")
}

// Quoted renders the command with each word quoted for a POSIX shell, for
// display in logs and diagnostics.
func (c Command) Quoted() string {
	words := make([]string, 0, len(c.Args)+1)
	for _, w := range append([]string{c.Path}, c.Args...) {
		q, err := syntax.Quote(w, syntax.LangPOSIX)
		if err != nil {
			q = strconv.Quote(w)
		}
		words = append(words, q)
	}
	return strings.Join(words, " ")
}
