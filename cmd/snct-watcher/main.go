// Package main is the entry point for the snct-watcher CLI.
//
// Usage:
//
//	snct-watcher serve -c config.yaml    # Start the watcher
//	snct-watcher validate -c config.yaml # Validate configuration
//	snct-watcher version                 # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"snct-watcher/internal/version"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "snct-watcher",
	Short: "Watch SNCT appointment slot availability",
	Long: `snct-watcher polls the SNCT appointment-booking service for free
inspection slots across every category (user type, control type, vehicle
type, site), serves the current availability over REST, and pushes
incremental changes to WebSocket subscribers filtered by their own
criteria.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
