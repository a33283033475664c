// Package app contains the Cobra command tree for tooltime.
package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/tooltime/internal/output"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "tooltime",
	Short: "Deep analytics for AI coding agent tool usage",
	Long: `tooltime mines the local append-only log of agent tool invocations and
answers questions a flat count cannot: what kind of work each session was,
which tool sequences recur or fail repeatedly, how usage shifts week over
week, when errors cluster in the day, and how client agents compare.

The event log is written by the collection hooks; tooltime only reads it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		output.AutoDetect()
		if flagNoColor {
			output.SetNoColor(true)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("tooltime", appVersion)
		fmt.Println()
		fmt.Println("Use a subcommand:")
		fmt.Println("  analyze   Run the full analytics engine over the event log")
		fmt.Println("  stats     Compute the rolling per-tool usage summary")
		fmt.Println("  suggest   Detect recent friction patterns and emit suggestions")
		fmt.Println("  backfill  Import historical session transcripts into the event log")
		fmt.Println("  track     Snapshot analysis metrics and compare runs over time")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/tooltime/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
}
