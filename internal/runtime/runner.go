package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Stdio holds the standard streams of a child process. Nil streams are
// connected to the null device.
type Stdio struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Quiet suppresses all output of the child process.
var Quiet = Stdio{}

// Inherit connects the child process to the streams of this process.
func Inherit() Stdio {
	return Stdio{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Runner executes commands and reports their exit codes.
type Runner interface {
	// Run executes cmd and blocks until it exits. A process that starts and
	// exits with a nonzero status is not an error: its code is returned with
	// a nil error. An error means the process could not be run at all.
	Run(ctx context.Context, cmd Command, stdio Stdio) (int, error)
}

// ExecRunner runs commands as child processes via os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, c Command, stdio Stdio) (int, error) {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = c.Env
	}
	cmd.Stdin = stdio.Stdin
	cmd.Stdout = stdio.Stdout
	cmd.Stderr = stdio.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("running %s: %w", c.Path, err)
}

// ExitStatusError reports a command that ran but exited with a nonzero code.
type ExitStatusError struct {
	Command Command
	Code    int
}

func (e *ExitStatusError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Command.Line(), e.Code)
}

// runChecked runs cmd and turns a nonzero exit code into an *ExitStatusError.
func runChecked(ctx context.Context, r Runner, cmd Command, stdio Stdio) error {
	code, err := r.Run(ctx, cmd, stdio)
	if err != nil {
		return err
	}
	if code != 0 {
		return &ExitStatusError{Command: cmd, Code: code}
	}
	return nil
}
