package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	goruntime "runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pypack-labs/pypack/internal/config"
	"github.com/pypack-labs/pypack/internal/manifest"
	"github.com/pypack-labs/pypack/internal/platform"
	"github.com/pypack-labs/pypack/internal/portable"
	"github.com/pypack-labs/pypack/internal/runtime"
)

var (
	checkRuntime  bool
	checkManifest string
)

func init() {
	doctorCmd.Flags().BoolVar(&checkRuntime, "check-runtime", false, "Report which Python runtime a launch would use")
	doctorCmd.Flags().StringVar(&checkManifest, "check-manifest", "", "Validate a manifest file at the given path")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the runtime and manifest a launch would use",
	Long: `Run diagnostic checks against the current directory: whether Python is on the
system path, whether a portable copy is present or can be downloaded, and
whether the manifest is well formed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.LoadFrom(configPath())
		if err != nil {
			return err
		}
		workDir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		w := cmd.OutOrStdout()

		// If no specific flag, run all checks.
		if !checkRuntime && checkManifest == "" {
			if err := runRuntimeCheck(cmd.Context(), w, settings, workDir); err != nil {
				return err
			}
			path := filepath.Join(workDir, settings.Manifest)
			if _, statErr := os.Stat(path); statErr != nil {
				header(w, "Manifest validation: %s", path)
				report(w, missStyle, "MISS", "%s not found", settings.Manifest)
				return nil
			}
			return runManifestCheck(w, path)
		}

		if checkRuntime {
			if err := runRuntimeCheck(cmd.Context(), w, settings, workDir); err != nil {
				return err
			}
		}
		if checkManifest != "" {
			if err := runManifestCheck(w, checkManifest); err != nil {
				return err
			}
		}
		return nil
	},
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	missStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func header(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf(format, args...)))
}

// report writes one indented check line led by a styled status tag.
func report(w io.Writer, style lipgloss.Style, tag, format string, args ...any) {
	fmt.Fprintf(w, "  %s %s\n", style.Render("["+tag+"]"), fmt.Sprintf(format, args...))
}

func runRuntimeCheck(ctx context.Context, w io.Writer, settings *config.Settings, workDir string) error {
	header(w, "Runtime check:")

	deps := newLaunchDeps(settings)
	res, err := newResolver(settings, workDir, deps)
	if err != nil {
		report(w, failStyle, "FAIL", "%v", err)
		return err
	}

	py := &runtime.Python{Exe: platform.HostPythonExe(), Dir: workDir, Runner: deps.runner}
	probe := py.Command("-V").Quoted()
	v, err := py.Version(ctx)
	switch {
	case err != nil:
		report(w, missStyle, "MISS", "%s failed: %v", probe, err)
	case res.MinVersion != nil && !res.MinVersion.Check(v):
		report(w, warnStyle, "WARN", "%s reports %s, which does not satisfy %s", probe, v, res.MinVersion)
	default:
		report(w, okStyle, " OK ", "%s reports %s", probe, v)
	}

	d, ok := res.Distribution()
	if !ok {
		report(w, infoStyle, "INFO", "No portable distribution for %s/%s", goruntime.GOOS, goruntime.GOARCH)
		return nil
	}
	report(w, infoStyle, "INFO", "Portable distribution %s from %s", d.Version, portable.New(portable.WithMirror(settings.DownloadMirror)).SourceURL(d))

	path, present, _ := res.LocalInterpreter()
	if present {
		report(w, okStyle, " OK ", "Local runtime at %s", path)
	} else {
		report(w, missStyle, "MISS", "No local runtime at %s (downloaded on first launch)", path)
	}
	return nil
}

func runManifestCheck(w io.Writer, path string) error {
	header(w, "Manifest validation: %s", path)

	result, err := manifest.ValidateFile(path)
	if err != nil {
		report(w, failStyle, "FAIL", "%v", err)
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("manifest %s not found", path)
		}
		return fmt.Errorf("manifest validation failed: %w", err)
	}

	if result.Valid {
		m := manifest.Load(path)
		report(w, okStyle, " OK ", "Valid manifest: %d dependencies", len(m.Deps))
		return nil
	}

	report(w, failStyle, "FAIL", "%d validation issue(s):", len(result.Issues))
	for _, issue := range result.Issues {
		if issue.Path != "" {
			fmt.Fprintf(w, "    - %s: %s\n", issue.Path, issue.Message)
		} else {
			fmt.Fprintf(w, "    - %s\n", issue.Message)
		}
	}
	return fmt.Errorf("manifest %s has %d validation issue(s)", path, len(result.Issues))
}
