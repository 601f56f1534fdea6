// Command boundedbuffer runs producer/consumer workloads over a bounded buffer.
package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/jittakal/boundedbuffer/cmd/boundedbuffer/commands"
	"github.com/jittakal/boundedbuffer/internal/errors"
)

// Exit codes.
const (
	exitError       = 1
	exitAuditFailed = 2
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		var audit *errors.AuditError
		if stderrors.As(err, &audit) {
			os.Exit(exitAuditFailed)
		}
		os.Exit(exitError)
	}
}
