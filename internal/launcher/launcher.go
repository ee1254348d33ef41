package launcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/pypack-labs/pypack/internal/installer"
	"github.com/pypack-labs/pypack/internal/manifest"
	"github.com/pypack-labs/pypack/internal/resolver"
	"github.com/pypack-labs/pypack/internal/runtime"
)

// FailureCode is the exit code used when the launch cannot happen: no
// interpreter could be obtained or a dependency failed to install.
const FailureCode = 1

// Operator-facing messages.
const (
	msgNoRuntime      = "Python could not be found. Please install Python, see www.python.org for details."
	msgDownloadFailed = "Python download failed! Try manually installing python, see www.python.org for more details"
	msgInstallFailed  = "Failed to install a dependency!"
)

// Resolver yields the interpreter location; *resolver.Resolver implements it.
type Resolver interface {
	Resolve(ctx context.Context) (resolver.Result, error)
}

// Options are the explicit inputs of one launch.
type Options struct {
	// Argv0 is the name this program was invoked under.
	Argv0 string
	// Args are forwarded to the script after its path.
	Args []string
	// WorkDir holds the script, the manifest and the local runtime.
	WorkDir string
	// ManifestPath defaults to WorkDir/pypack.json.
	ManifestPath string
	// Stdio is inherited by the script.
	Stdio runtime.Stdio
}

// Launcher runs the resolve → install → exec sequence.
type Launcher struct {
	Resolver Resolver
	Runner   runtime.Runner
	Logger   *log.Logger
}

func (l *Launcher) logger() *log.Logger {
	if l.Logger == nil {
		return log.Default()
	}
	return l.Logger
}

// Run performs one launch and returns the exit code this process should
// exit with. When the script ran, the code is the script's own and the error
// is nil. Otherwise the code is FailureCode and the error says why.
func (l *Launcher) Run(ctx context.Context, opts Options) (int, error) {
	logger := l.logger()
	name := InvocationName(opts.Argv0)
	if name == "" {
		err := fmt.Errorf("cannot derive a script name from %q", opts.Argv0)
		logger.Error("invalid invocation", "err", err)
		return FailureCode, err
	}

	res, err := l.Resolver.Resolve(ctx)
	if err != nil {
		switch {
		case errors.Is(err, resolver.ErrNoRuntime):
			logger.Error(msgNoRuntime)
		case errors.Is(err, resolver.ErrDownloadFailed):
			logger.Error(msgDownloadFailed)
		}
		return FailureCode, fmt.Errorf("resolving python runtime: %w", err)
	}
	logger.Debug("runtime resolved", "state", res.State, "prefix", res.Prefix)

	py := res.Python(opts.WorkDir, l.Runner)

	manifestPath := opts.ManifestPath
	if manifestPath == "" {
		manifestPath = filepath.Join(opts.WorkDir, manifest.DefaultFileName)
	}
	inst := &installer.Installer{Pip: py, Logger: logger}
	if _, err := inst.Install(ctx, manifestPath); err != nil {
		logger.Error(msgInstallFailed, "err", err)
		return FailureCode, err
	}

	logger.Debug("launching", "cmd", py.ScriptCommand(name, opts.Args).Quoted())
	code, err := py.RunScript(ctx, name, opts.Args, opts.Stdio)
	if err != nil {
		err = fmt.Errorf("launching %s%s: %w", name, runtime.ScriptSuffix, err)
		logger.Error("cannot start script", "err", err)
		return FailureCode, err
	}
	return code, nil
}
