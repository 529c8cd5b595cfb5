package main

import (
	"os"

	"scrollgrid/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
