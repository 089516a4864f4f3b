package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "procsim",
		Short: "Simulated industrial process data source",
		Long: `procsim serves a small namespace of simulated process variables.

Temperature, pressure, fan and pump speeds, tank level and machine state are
pure functions of the wall clock; a counter advances once per tick. Values are
computed on every read and exposed over MCP and an HTTP monitor.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.procsim/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: error, warn, info, debug, trace")

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(),
		newBrowseCmd(),
		newReadCmd(),
	)

	return rootCmd
}
