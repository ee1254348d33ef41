package resolver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	goruntime "runtime"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"

	"github.com/pypack-labs/pypack/internal/platform"
	"github.com/pypack-labs/pypack/internal/portable"
	"github.com/pypack-labs/pypack/internal/runtime"
)

// DefaultLocalDir is the directory, relative to the working directory, that
// holds the downloaded distribution.
const DefaultLocalDir = "python"

var (
	// ErrNoRuntime is returned when the path probe fails on a host that has
	// no portable distribution.
	ErrNoRuntime = errors.New("no compatible python runtime on the system path")
	// ErrDownloadFailed is returned when the portable distribution could not
	// be materialized.
	ErrDownloadFailed = errors.New("python download failed")
)

// State is the terminal state of a resolution.
type State int

// Resolution states, in probe order.
const (
	Unavailable State = iota
	FoundInPath
	FoundLocally
	Downloaded
)

func (s State) String() string {
	switch s {
	case FoundInPath:
		return "found-in-path"
	case FoundLocally:
		return "found-locally"
	case Downloaded:
		return "downloaded"
	default:
		return "unavailable"
	}
}

// Result is the outcome of Resolve.
type Result struct {
	State State
	// Prefix is empty for FoundInPath, otherwise the local directory with a
	// trailing separator.
	Prefix string
	// Exe is the interpreter executable name under Prefix.
	Exe string
}

// Python returns an interpreter handle bound to the resolved location.
func (r Result) Python(dir string, runner runtime.Runner) *runtime.Python {
	return &runtime.Python{Prefix: r.Prefix, Exe: r.Exe, Dir: dir, Runner: runner}
}

// Installer materializes a portable distribution; *portable.Fetcher
// implements it.
type Installer interface {
	Install(ctx context.Context, d portable.Distribution, workDir, targetDir string) error
}

// Resolver runs the probe sequence. The zero value of each optional field
// selects the host default.
type Resolver struct {
	// WorkDir is the directory probes run in and the local copy lives under.
	WorkDir string
	// Runner executes interpreter probes.
	Runner runtime.Runner
	// Installer downloads the portable distribution.
	Installer Installer
	// Logger receives progress and diagnostics.
	Logger *log.Logger

	// GOOS and GOARCH select the host platform; default to the running host.
	GOOS   string
	GOARCH string
	// LocalDir overrides DefaultLocalDir.
	LocalDir string
	// Version overrides the portable distribution release.
	Version string
	// URL overrides the portable distribution download URL.
	URL string
	// MinVersion, when set, rejects interpreters on the path that do not
	// satisfy it.
	MinVersion *semver.Constraints
}

func (r *Resolver) goos() string {
	if r.GOOS == "" {
		return goruntime.GOOS
	}
	return r.GOOS
}

func (r *Resolver) goarch() string {
	if r.GOARCH == "" {
		return goruntime.GOARCH
	}
	return r.GOARCH
}

func (r *Resolver) localDir() string {
	if r.LocalDir == "" {
		return DefaultLocalDir
	}
	return r.LocalDir
}

func (r *Resolver) logger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}

// Distribution returns the portable distribution for the configured host,
// with version and URL overrides applied.
func (r *Resolver) Distribution() (portable.Distribution, bool) {
	d, ok := portable.Lookup(r.goos(), r.goarch())
	if !ok {
		return d, false
	}
	d = d.WithVersion(r.Version)
	if r.URL != "" {
		d.URL = r.URL
	}
	return d, true
}

// Resolve probes for an interpreter. The first successful probe wins; a
// download is attempted at most once per call.
func (r *Resolver) Resolve(ctx context.Context) (Result, error) {
	logger := r.logger()

	pathExe := platform.PythonExe(r.goos())
	err := r.probePath(ctx, pathExe)
	if err == nil {
		logger.Debug("python found on path", "exe", pathExe)
		return Result{State: FoundInPath, Exe: pathExe}, nil
	}
	logger.Debug("path probe failed", "exe", pathExe, "err", err)

	d, ok := r.Distribution()
	if !ok {
		return Result{State: Unavailable}, fmt.Errorf("%w (%s/%s has no portable distribution)", ErrNoRuntime, r.goos(), r.goarch())
	}

	local := Result{Prefix: r.localDir() + "/", Exe: d.Exe}
	if r.localExists(d) {
		logger.Debug("using local python", "dir", r.localDir())
		local.State = FoundLocally
		return local, nil
	}

	if r.Installer == nil {
		return Result{State: Unavailable}, fmt.Errorf("%w: no installer configured", ErrDownloadFailed)
	}

	logger.Info("Downloading Python...", "version", d.Version)
	target := filepath.Join(r.WorkDir, r.localDir())
	installErr := r.Installer.Install(ctx, d, r.WorkDir, target)
	if installErr != nil {
		logger.Warn("download sequence failed", "err", installErr)
	}

	if !r.localExists(d) {
		if installErr != nil {
			return Result{State: Unavailable}, fmt.Errorf("%w: %w", ErrDownloadFailed, installErr)
		}
		return Result{State: Unavailable}, fmt.Errorf("%w: %s not found after unpacking", ErrDownloadFailed, d.Exe)
	}

	local.State = Downloaded
	return local, nil
}

func (r *Resolver) probePath(ctx context.Context, exe string) error {
	py := &runtime.Python{Exe: exe, Dir: r.WorkDir, Runner: r.Runner}
	if r.MinVersion == nil {
		return py.Probe(ctx)
	}

	v, err := py.Version(ctx)
	if err != nil {
		return err
	}
	if !r.MinVersion.Check(v) {
		return fmt.Errorf("python %s does not satisfy %s", v, r.MinVersion)
	}
	return nil
}

func (r *Resolver) localExists(d portable.Distribution) bool {
	_, ok := r.localInterpreter(d)
	return ok
}

func (r *Resolver) localInterpreter(d portable.Distribution) (string, bool) {
	path := filepath.Join(r.WorkDir, r.localDir(), d.Exe)
	info, err := os.Stat(path)
	return path, err == nil && !info.IsDir()
}

// LocalInterpreter reports where the portable interpreter lives, or would
// live, under the working directory and whether it is present. ok is false
// when the host has no portable distribution.
func (r *Resolver) LocalInterpreter() (path string, present, ok bool) {
	d, ok := r.Distribution()
	if !ok {
		return "", false, false
	}
	path, present = r.localInterpreter(d)
	return path, present, true
}
