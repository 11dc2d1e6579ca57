package main

import (
	"fmt"
	"os"

	"github.com/runnerr0/viewtally/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Run(version); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
