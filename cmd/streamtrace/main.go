// Command streamtrace generates stream-debugger tracing code and
// reconstructs element transitions from recorded traces.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/streamtrace/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
