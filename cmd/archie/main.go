// Command archie keeps an archival search index and its artifact storage
// consistent.
package main

import (
	"fmt"
	"os"

	"github.com/custodia-labs/archie/internal/adapters/driving/cli"
)

// version is set by -ldflags at release time.
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetWiring(wire)

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
