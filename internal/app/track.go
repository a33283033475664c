package app

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/tooltime/internal/analyzer"
	"github.com/blackwell-systems/tooltime/internal/config"
	"github.com/blackwell-systems/tooltime/internal/event"
	"github.com/blackwell-systems/tooltime/internal/output"
	"github.com/blackwell-systems/tooltime/internal/store"
)

var trackCompare int

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Snapshot usage metrics and compare against the previous run",
	Long: `Run the analysis, store headline metrics as a snapshot in the local
SQLite database, and show deltas against the most recent previous snapshot
with trend arrows.`,
	RunE: runTrack,
}

func init() {
	trackCmd.Flags().IntVar(&trackCompare, "compare", 1, "Compare against Nth previous snapshot (1 = most recent)")
	rootCmd.AddCommand(trackCmd)
}

// lowerIsBetter flips the trend arrow direction for metrics where a
// decrease is the good outcome.
var lowerIsBetter = map[string]bool{
	"error_rate": true,
}

func runTrack(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := store.Open(config.DBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	events, err := event.Load(cfg.EventsPath(), event.Filter{
		Since: time.Now().UTC().AddDate(0, 0, -cfg.LookbackDays),
	})
	if err != nil {
		return fmt.Errorf("loading events: %w", err)
	}

	loc, _ := analyzer.ResolveLocation(cfg.Timezone)
	report := analyzer.Run(events, analyzer.Options{
		Location:       loc,
		Thresholds:     &cfg.Classifier,
		BigramMinCount: cfg.BigramMinCount,
	})

	snapshotID, err := db.CreateSnapshot(appVersion)
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}

	metrics := map[string]float64{
		"event_count":   float64(report.EventCount),
		"session_count": float64(report.Sessions.Total),
	}
	var calls, errorCount int
	for _, e := range events {
		if e.IsCall() {
			calls++
		}
		if e.IsError() {
			errorCount++
		}
	}
	if calls > 0 {
		metrics["error_rate"] = float64(errorCount) / float64(calls)
	} else {
		metrics["error_rate"] = 0
	}
	for class, n := range report.Sessions.Classifications {
		metrics["classification:"+class] = float64(n)
	}

	for name, value := range metrics {
		if err := db.InsertMetric(snapshotID, name, value, ""); err != nil {
			return fmt.Errorf("storing metric %s: %w", name, err)
		}
	}

	if flagJSON {
		stored, err := db.GetMetrics(snapshotID)
		if err != nil {
			return fmt.Errorf("reading snapshot: %w", err)
		}
		return json.NewEncoder(os.Stdout).Encode(stored)
	}

	fmt.Println(output.Section("Snapshot"))
	fmt.Printf("  %s%d\n", output.StyleLabel.Render("Events"), report.EventCount)
	fmt.Printf("  %s%d\n", output.StyleLabel.Render("Sessions"), report.Sessions.Total)
	fmt.Printf("  %s%.1f%%\n", output.StyleLabel.Render("Error rate"), metrics["error_rate"]*100)

	n := trackCompare
	if n < 1 {
		n = 1
	}
	// Offset past the snapshot taken above.
	previous, err := db.GetSnapshotN(n + 1)
	if err != nil {
		return fmt.Errorf("reading previous snapshot: %w", err)
	}
	if previous == nil {
		fmt.Println()
		fmt.Println(output.StyleMuted.Render("First snapshot recorded. Run again later to see trends."))
		return nil
	}

	deltas, err := db.Compare(previous.ID, snapshotID)
	if err != nil {
		return fmt.Errorf("comparing snapshots: %w", err)
	}

	fmt.Println()
	fmt.Println(output.Section(fmt.Sprintf("Since %s", previous.TakenAt.Format("2006-01-02 15:04"))))
	for _, d := range deltas {
		arrow := output.TrendArrow(d.Change, !lowerIsBetter[d.Name])
		fmt.Printf("  %s%s\n", output.StyleLabel.Render(d.Name), arrow)
	}
	return nil
}
