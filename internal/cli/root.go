package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/pypack-labs/pypack/internal/branding"
	"github.com/pypack-labs/pypack/internal/config"
	"github.com/pypack-labs/pypack/internal/launcher"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string

	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` makes Python scripts self-starting. Copy the ` + branding.CLIName() + ` binary next to
<name>.py and rename it to <name>: running it finds or downloads a Python
runtime, installs the packages listed in ` + "pypack.json" + ` and runs the script.

Invoked under its own name, it offers the admin commands below.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/"+branding.HomeDir()+"/config.yaml)")
}

// configPath returns the config file in effect: the --config flag, then
// PYPACK_CONFIG, then the default location.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := os.Getenv(branding.EnvVar("config")); p != "" {
		return p
	}
	return config.FilePath()
}

// isAdminInvocation reports whether argv0 names this program itself rather
// than a script to launch.
func isAdminInvocation(argv0 string) bool {
	return strings.EqualFold(launcher.InvocationName(argv0), branding.CLIName())
}

// Execute runs the program with build info injected via ldflags. A returned
// *ExitError carries the exit code to use.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if !isAdminInvocation(os.Args[0]) {
		cmd := newLaunchCmd(os.Args[0])
		cmd.SetArgs(os.Args[1:])
		return cmd.ExecuteContext(context.Background())
	}
	return fang.Execute(context.Background(), rootCmd, fang.WithVersion(versionString()))
}

func versionString() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", buildVersion, buildCommit, buildDate)
}

// ignoreInterrupt keeps this process alive on Ctrl-C. The terminal delivers
// the signal to the script as well, and the script decides the exit code.
func ignoreInterrupt() (stop func()) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	return func() { signal.Stop(sigs) }
}
