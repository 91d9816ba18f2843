// Fetchd is a feed-processing and download-automation tool. It pulls feed
// items through a fixed sequence of phases (input, filter, download,
// output), each populated by configured plugins that classify and act on
// entries.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var version = "dev"

var (
	flagConfig      string
	flagTask        string
	flagQuiet       bool
	flagDetails     bool
	flagLearn       bool
	flagMetricsAddr string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fetchd",
	Short: "Feed-processing and download-automation tool",
	Long: `Fetchd runs configured tasks: each task pulls entries from its inputs,
filters them, downloads what survives, and hands the result to its outputs.

Examples:
  # Run every configured task
  fetchd run

  # Run one task with per-decision detail lines
  fetchd run --task my-feed --details

  # Validate the configuration without executing anything
  fetchd check`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.config/fetchd/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagTask, "task", "", "run only the named task")
	rootCmd.PersistentFlags().BoolVar(&flagQuiet, "quiet", false, "suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&flagDetails, "details", false, "print every classification decision")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
}
