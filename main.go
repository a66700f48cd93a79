package main

import (
	"os"

	"github.com/tdnguyen/hiring-mcp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
