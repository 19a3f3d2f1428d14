package main

import (
	"os"

	"careerlift-backend/internal/cli"
)

func main() {
	if err := cli.NewRootCmd(cli.DefaultLoader).Execute(); err != nil {
		os.Exit(1)
	}
}
