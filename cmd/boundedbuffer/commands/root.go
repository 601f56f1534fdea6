// Package commands implements the boundedbuffer command line.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "boundedbuffer",
		Short: "Producer/consumer workloads over a bounded buffer",
		Long: `boundedbuffer - runs producers and consumers against a shared
fixed-capacity FIFO buffer and audits that every item was delivered
exactly once and in order.

Two synchronization strategies are available:
  monitor    mutex with not-full and not-empty wait queues
  semaphore  two counting semaphores around a short critical section

Examples:
  # Default workload: 4 producers, 4 consumers, 1000 items each
  boundedbuffer run

  # Semaphore strategy, timed operations, tiny buffer
  boundedbuffer run --strategy semaphore --mode timed --capacity 1

  # Load settings from a file, override with BBUF_* variables
  BBUF_WORKLOAD_PRODUCERS=8 boundedbuffer run --config config/application.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
