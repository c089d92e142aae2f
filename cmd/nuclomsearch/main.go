// Command nuclomsearch is the hybrid search CLI for videos and imported
// workspace content.
package main

import (
	"os"

	"github.com/nuclom/search/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
