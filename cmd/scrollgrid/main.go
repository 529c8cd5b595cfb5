package main

import (
	"os"

	"scrollgrid/internal/cli"
)

// version is injected at build time with -ldflags "-X main.version=..."
var version string

func main() {
	if version != "" {
		cli.Version = version
	}
	os.Exit(cli.Execute())
}
