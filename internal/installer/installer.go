package installer

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/pypack-labs/pypack/internal/manifest"
)

// Pip is the subset of the interpreter the installer drives;
// *runtime.Python implements it.
type Pip interface {
	PipShow(ctx context.Context, pkg string) error
	PipInstall(ctx context.Context, pkg string) error
}

// InstallError reports a dependency that pip failed to install.
type InstallError struct {
	Package string
	Err     error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("installing dependency %q: %v", e.Package, e.Err)
}

func (e *InstallError) Unwrap() error { return e.Err }

// Report summarizes an Install call.
type Report struct {
	Manifest *manifest.Manifest
	// Present lists dependencies pip already knew about.
	Present []string
	// Installed lists dependencies installed by this call.
	Installed []string
}

// Installer installs manifest dependencies through pip.
type Installer struct {
	Pip    Pip
	Logger *log.Logger
}

func (i *Installer) logger() *log.Logger {
	if i.Logger == nil {
		return log.Default()
	}
	return i.Logger
}

// Install loads the manifest at manifestPath and installs its missing
// dependencies in declaration order. A missing manifest logs a warning and
// a malformed one is skipped; neither is an error. The returned error is an
// *InstallError for the first package that could not be installed.
func (i *Installer) Install(ctx context.Context, manifestPath string) (*Report, error) {
	m := manifest.Load(manifestPath)
	report := &Report{Manifest: m}

	switch m.Status {
	case manifest.StatusMissing:
		i.logger().Warn(fmt.Sprintf("%s not found. The program may not work correctly.", manifest.DefaultFileName), "path", manifestPath)
		return report, nil
	case manifest.StatusMalformed:
		i.logger().Debug("manifest not recognized, nothing to install", "path", manifestPath, "reason", m.Reason)
		return report, nil
	}

	for _, name := range m.Names() {
		if err := i.Pip.PipShow(ctx, name); err == nil {
			i.logger().Debug("dependency present", "package", name)
			report.Present = append(report.Present, name)
			continue
		}

		i.logger().Info("installing dependency", "package", name)
		if err := i.Pip.PipInstall(ctx, name); err != nil {
			return report, &InstallError{Package: name, Err: err}
		}
		report.Installed = append(report.Installed, name)
	}

	return report, nil
}
