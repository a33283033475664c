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

var suggestDays int

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Surface workflow suggestions from recent tool usage",
	Long: `Scan recent events for friction patterns (edits without a prior read,
error-prone tools, shell-heavy sessions) and write any findings to
pending-suggestions.json. When nothing stands out, the pending file is removed
so stale advice never lingers.`,
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().IntVar(&suggestDays, "days", 0, "Lookback window in days (default: configured rolling window)")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	days := suggestDays
	if days <= 0 {
		days = cfg.StatsLookbackDays
	}

	events, err := event.Load(cfg.EventsPath(), event.Filter{
		Since: time.Now().UTC().AddDate(0, 0, -days),
	})
	if err != nil {
		return fmt.Errorf("loading events: %w", err)
	}

	suggestions := stats.Suggest(events)

	if flagJSON {
		return json.NewEncoder(os.Stdout).Encode(suggestions)
	}

	path := cfg.SuggestionsPath()
	if len(suggestions) == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing stale suggestions: %w", err)
		}
		fmt.Println(output.StyleMuted.Render("No suggestions. Recent usage looks clean."))
		return nil
	}

	doc, err := json.MarshalIndent(suggestions, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding suggestions: %w", err)
	}
	doc = append(doc, '\n')
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return fmt.Errorf("writing suggestions: %w", err)
	}

	fmt.Println(output.Section("Suggestions"))
	for _, s := range suggestions {
		badge := output.StyleMuted
		switch s.Priority {
		case stats.PriorityHigh:
			badge = output.StyleError
		case stats.PriorityMedium:
			badge = output.StyleWarning
		}
		fmt.Printf("  %s %s\n", badge.Render("["+s.Priority+"]"), s.Text)
	}
	fmt.Println()
	fmt.Println(output.StyleMuted.Render(path))
	return nil
}
