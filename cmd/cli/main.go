package main

import (
	"os"

	"recipe-cost/cmd/cli/cmd"
	"recipe-cost/internal/logging"
)

func main() {
	defer logging.Sync()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
