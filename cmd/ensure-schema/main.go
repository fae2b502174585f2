// Command ensure-schema converges SQLite schema objects described in a
// manifest file.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/ensure-schema/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		// ExitErrors were already reported by the command's formatter.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	os.Exit(cli.GetExitCode(err))
}
