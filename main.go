// bsema - Semantic reference index for 1C:Enterprise configurations.
//
// bsema indexes BSL configuration dumps into a cross-module reference
// index, enabling usage search, diagnostics, and editor tooling.
package main

import (
	"fmt"
	"os"

	"github.com/tolkachev/bsema/cmd"
)

func main() {
	cli := cmd.NewCLI()

	if err := cli.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
