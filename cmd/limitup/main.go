package main

import (
	"os"

	"github.com/wonny/limitup/cmd/limitup/commands"
)

// main is the entry point for the limitup CLI
// ⭐ unified CLI entry point: go run ./cmd/limitup [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
