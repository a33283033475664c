package app

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/tooltime/internal/config"
	"github.com/blackwell-systems/tooltime/internal/event"
	"github.com/blackwell-systems/tooltime/internal/output"
	"github.com/blackwell-systems/tooltime/internal/stats"
)

var (
	statsDays    int
	statsProject string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Compute the rolling per-tool usage summary",
	Long: `Compute per-tool call, error, and rejection counts over the rolling
window and write them to stats.json. No opinions, no thresholds, just data
for downstream consumers to reason about.`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsDays, "days", 0, "Lookback window in days (default: configured rolling window)")
	statsCmd.Flags().StringVar(&statsProject, "project", "", "Filter to a specific project path")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	days := statsDays
	if days <= 0 {
		days = cfg.StatsLookbackDays
	}

	events, err := event.Load(cfg.EventsPath(), event.Filter{
		Since:   time.Now().UTC().AddDate(0, 0, -days),
		Project: statsProject,
	})
	if err != nil {
		return fmt.Errorf("loading events: %w", err)
	}

	summary := stats.Compute(events, time.Now())

	doc, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding stats: %w", err)
	}
	doc = append(doc, '\n')

	if flagJSON {
		_, err := os.Stdout.Write(doc)
		return err
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	if err := os.WriteFile(cfg.StatsPath(), doc, 0o644); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}

	table := output.NewTable("Tool", "Calls", "Errors", "Rejections")
	for _, tool := range summary.TopTools(10) {
		tc := summary.Tools[tool]
		table.AddRow(tool,
			fmt.Sprintf("%d", tc.Calls),
			fmt.Sprintf("%d", tc.Errors),
			fmt.Sprintf("%d", tc.Rejections))
	}
	fmt.Print(table.Render())
	fmt.Println()
	fmt.Println(output.StyleMuted.Render(cfg.StatsPath()))
	return nil
}
