package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "limitup",
	Short: "Limit-up classification and streak engine",
	Long: `limitup - multi-market limit-up board builder

Classifies every symbol against its market's price-limit rules,
tracks consecutive lock streaks, and serves the resulting boards,
sector rollups, and surge watchlists over HTTP and WebSocket.

Usage:
  go run ./cmd/limitup [command]

Examples:
  go run ./cmd/limitup api
  go run ./cmd/limitup classify TW
  go run ./cmd/limitup scheduler start
  go run ./cmd/limitup universe TW`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
