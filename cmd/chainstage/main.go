// Command chainstage runs simulated on-chain fixtures: a two-phase
// token launch, staked group owners, and a lazy member pool, driven by
// scenario files and recorded in a SQLite ledger.
package main

import (
	"fmt"
	"os"

	"github.com/quayside/chainstage/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
