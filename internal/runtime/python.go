package runtime

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/Masterminds/semver/v3"
)

// ScriptSuffix is appended to the invocation name to locate the target script.
const ScriptSuffix = ".py"

// Python issues interpreter, pip and script commands against one resolved
// runtime location. All commands share the same Prefix so that the installer
// and the launcher agree on which interpreter they use.
type Python struct {
	// Prefix is empty for an interpreter on the system path, or a directory
	// ending in a separator for a local copy.
	Prefix string
	// Exe is the interpreter executable name (python.exe or python3).
	Exe string
	// Dir is the working directory of every command.
	Dir string
	// Runner executes the commands; defaults to ExecRunner.
	Runner Runner
}

func (p *Python) runner() Runner {
	if p.Runner == nil {
		return ExecRunner{}
	}
	return p.Runner
}

// Command builds an interpreter invocation with the given arguments.
func (p *Python) Command(args ...string) Command {
	c := Build(p.Prefix, p.Exe, args...)
	c.Dir = p.Dir
	return c
}

// Probe runs the version check with output suppressed and returns nil when
// the interpreter exits with code 0.
func (p *Python) Probe(ctx context.Context) error {
	return runChecked(ctx, p.runner(), p.Command("-V"), Quiet)
}

// Version runs the version check and parses its "Python X.Y.Z" output.
func (p *Python) Version(ctx context.Context) (*semver.Version, error) {
	var out bytes.Buffer
	stdio := Stdio{Stdout: &out, Stderr: &out}
	if err := runChecked(ctx, p.runner(), p.Command("-V"), stdio); err != nil {
		return nil, err
	}
	return ParseVersionOutput(out.String())
}

// ParseVersionOutput extracts the version from the output of "python -V",
// e.g. "Python 3.12.8" or "Python 3.13.0rc1".
func ParseVersionOutput(out string) (*semver.Version, error) {
	fields := strings.Fields(out)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "python") {
		return nil, fmt.Errorf("unrecognized version output %q", strings.TrimSpace(out))
	}
	v, err := semver.NewVersion(normalizeVersion(fields[1]))
	if err != nil {
		return nil, fmt.Errorf("parsing python version %q: %w", fields[1], err)
	}
	return v, nil
}

// normalizeVersion turns Python's release-candidate style ("3.13.0rc1") and
// local-build marker ("3.12.8+") into something semver accepts.
func normalizeVersion(s string) string {
	s = strings.TrimSuffix(s, "+")
	for i, r := range s {
		if unicode.IsLetter(r) {
			return s[:i] + "-" + s[i:]
		}
	}
	return s
}

// PipShow queries pip for an installed package with output suppressed.
// A nil error means the package is installed.
func (p *Python) PipShow(ctx context.Context, pkg string) error {
	return runChecked(ctx, p.runner(), p.Command("-m", "pip", "show", pkg), Quiet)
}

// PipInstall installs a package with pip with output suppressed.
func (p *Python) PipInstall(ctx context.Context, pkg string) error {
	return runChecked(ctx, p.runner(), p.Command("-m", "pip", "install", pkg), Quiet)
}

// ScriptCommand builds the launch command for the script named name, with
// extra arguments forwarded after the script path.
func (p *Python) ScriptCommand(name string, args []string) Command {
	return p.Command(append([]string{name + ScriptSuffix}, args...)...)
}

// RunScript launches <name>.py with the given stdio and returns its exit
// code. The script inherits this process's environment plus PYPACK_NAME and
// PYPACK_PREFIX.
func (p *Python) RunScript(ctx context.Context, name string, args []string, stdio Stdio) (int, error) {
	cmd := p.ScriptCommand(name, args)
	env := os.Environ()
	env = setEnv(env, "PYPACK_NAME", name)
	env = setEnv(env, "PYPACK_PREFIX", p.Prefix)
	cmd.Env = env
	return p.runner().Run(ctx, cmd, stdio)
}

// setEnv sets or replaces an environment variable in the env slice.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}
