package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version information (set during build)
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "boundedbuffer %s (commit %s, built %s, %s)\n",
				version, commit, buildTime, runtime.Version())
		},
	}
}
