// Command skuquery evaluates filter, sort and pagination queries over
// product catalog snapshots and manages saved queries.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/skuquery/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "skuquery:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
