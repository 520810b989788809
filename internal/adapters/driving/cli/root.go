// Package cli implements the zenpurge command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/zenpurge-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "0.1.0"

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "zenpurge",
	Short: "Bulk-delete and scrub aged tickets from a Zendesk-style API",
	Long: `zenpurge enumerates tickets from a Zendesk-style API, filters them
by age and status, and purges the selection in two ordered phases:
a bulk soft-delete followed by an optional irreversible scrub.

The tool tolerates rate limiting and transient network failures, and
checkpoints an interrupted enumeration so it can be resumed with
--resume instead of restarting from the beginning.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"print diagnostic traces to stderr")
}

// Execute runs the root command. It returns an error on usage errors and
// fatal failures; the caller decides the process exit code.
func Execute() error {
	return rootCmd.Execute()
}
