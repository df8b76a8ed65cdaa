// Command pdbrecords runs the record store demo and scenario harness.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/pdbrecords/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
