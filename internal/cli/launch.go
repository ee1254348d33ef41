package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pypack-labs/pypack/internal/config"
	"github.com/pypack-labs/pypack/internal/launcher"
	"github.com/pypack-labs/pypack/internal/portable"
	"github.com/pypack-labs/pypack/internal/resolver"
	"github.com/pypack-labs/pypack/internal/runtime"
)

// newLaunchCmd returns the command run when the binary is invoked under a
// script's name. Flags are not parsed; every argument goes to the script.
func newLaunchCmd(argv0 string) *cobra.Command {
	return &cobra.Command{
		Use:                launcher.InvocationName(argv0),
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		Args:               cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd.Context(), argv0, args)
		},
	}
}

// launchDeps are the process-level collaborators of a launch.
type launchDeps struct {
	runner runtime.Runner
	logger *log.Logger
	stderr io.Writer
}

func defaultLaunchDeps(settings *config.Settings) launchDeps {
	return launchDeps{
		runner: runtime.ExecRunner{},
		logger: newLogger(os.Stderr, settings.LogLevel),
		stderr: os.Stderr,
	}
}

// newLaunchDeps is replaced in tests.
var newLaunchDeps = defaultLaunchDeps

// newResolver builds the runtime resolver from settings.
func newResolver(settings *config.Settings, workDir string, deps launchDeps) (*resolver.Resolver, error) {
	var minVersion *semver.Constraints
	if settings.PythonMinVersion != "" {
		c, err := semver.NewConstraint(settings.PythonMinVersion)
		if err != nil {
			return nil, fmt.Errorf("parsing %s %q: %w", config.KeyPythonMinVersion, settings.PythonMinVersion, err)
		}
		minVersion = c
	}

	fetcher := portable.New(
		portable.WithHTTPClient(&http.Client{Timeout: settings.DownloadTimeout}),
		portable.WithMirror(settings.DownloadMirror),
		portable.WithProgress(deps.stderr),
	)

	return &resolver.Resolver{
		WorkDir:    workDir,
		Runner:     deps.runner,
		Installer:  fetcher,
		Logger:     deps.logger,
		LocalDir:   settings.PythonDir,
		Version:    settings.PythonVersion,
		URL:        settings.PythonURL,
		MinVersion: minVersion,
	}, nil
}

func runLaunch(ctx context.Context, argv0 string, args []string) error {
	stop := ignoreInterrupt()
	defer stop()

	settings, err := config.LoadFrom(configPath())
	if err != nil {
		newLogger(os.Stderr, "info").Error("cannot load configuration", "err", err)
		return &ExitError{Code: launcher.FailureCode, Err: err}
	}

	deps := newLaunchDeps(settings)
	workDir, err := os.Getwd()
	if err != nil {
		deps.logger.Error("cannot determine working directory", "err", err)
		return &ExitError{Code: launcher.FailureCode, Err: err}
	}

	res, err := newResolver(settings, workDir, deps)
	if err != nil {
		deps.logger.Error("invalid configuration", "err", err)
		return &ExitError{Code: launcher.FailureCode, Err: err}
	}

	l := &launcher.Launcher{Resolver: res, Runner: deps.runner, Logger: deps.logger}
	code, err := l.Run(ctx, launcher.Options{
		Argv0:        argv0,
		Args:         args,
		WorkDir:      workDir,
		ManifestPath: filepath.Join(workDir, settings.Manifest),
		Stdio:        runtime.Inherit(),
	})
	if err != nil {
		deps.logger.Debug("launch failed", "err", err)
		return &ExitError{Code: code, Err: err}
	}
	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}
