package cli

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <name> [args...]",
	Short: "Launch <name>.py as if invoked under that name",
	Long: `Resolve a Python runtime, install the packages listed in the manifest and run
<name>.py from the current directory, exactly as a copy of this binary named
<name> would. Arguments after <name> are passed to the script unchanged; flags
are not interpreted.

The exit code is the script's own.`,
	Args:               cobra.MinimumNArgs(1),
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == "-h" || args[0] == "--help" {
			return cmd.Help()
		}
		return runLaunch(cmd.Context(), args[0], args[1:])
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
