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
)

var (
	analyzeSince    string
	analyzeUntil    string
	analyzeProject  string
	analyzeSource   string
	analyzeTimezone string
	analyzeStdout   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full analytics engine over the event log",
	Long: `Read all events from the log, reconstruct and classify sessions, compute
tool chains, weekly trends, time-of-day patterns, and source/project
comparisons, and write the result to analysis.json.

The default window is the configured trailing period (90 days). Every run
re-reads the full filtered history; nothing is cached between runs.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeSince, "since", "", "Start date (YYYY-MM-DD), default: configured lookback")
	analyzeCmd.Flags().StringVar(&analyzeUntil, "until", "", "End date (YYYY-MM-DD), default: now")
	analyzeCmd.Flags().StringVar(&analyzeProject, "project", "", "Filter to a specific project path")
	analyzeCmd.Flags().StringVar(&analyzeSource, "source", "", "Filter to a specific source (claude-code, codex, openclaw)")
	analyzeCmd.Flags().StringVar(&analyzeTimezone, "timezone", "", "Time zone for time patterns (e.g. America/Los_Angeles)")
	analyzeCmd.Flags().BoolVar(&analyzeStdout, "stdout", false, "Write the report to stdout instead of analysis.json")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	filter := event.Filter{
		Project: analyzeProject,
		Source:  analyzeSource,
	}
	if analyzeSince != "" {
		since, err := time.Parse("2006-01-02", analyzeSince)
		if err != nil {
			return fmt.Errorf("invalid --since date %q: %w", analyzeSince, err)
		}
		filter.Since = since
	} else {
		filter.Since = time.Now().UTC().AddDate(0, 0, -cfg.LookbackDays)
	}
	if analyzeUntil != "" {
		until, err := time.Parse("2006-01-02", analyzeUntil)
		if err != nil {
			return fmt.Errorf("invalid --until date %q: %w", analyzeUntil, err)
		}
		filter.Until = until
	}

	tzName := analyzeTimezone
	if tzName == "" {
		tzName = cfg.Timezone
	}
	loc, ok := analyzer.ResolveLocation(tzName)
	if !ok {
		fmt.Fprintf(os.Stderr, "Warning: unknown timezone %q, using system default\n", tzName)
	}

	events, err := event.Load(cfg.EventsPath(), filter)
	if err != nil {
		return fmt.Errorf("loading events: %w", err)
	}
	if flagVerbose {
		fmt.Fprintf(os.Stderr, "loaded %d events from %s\n", len(events), cfg.EventsPath())
	}

	report := analyzer.Run(events, analyzer.Options{
		Location:       loc,
		Thresholds:     &cfg.Classifier,
		BigramMinCount: cfg.BigramMinCount,
		ProjectFilter:  analyzeProject,
		SourceFilter:   analyzeSource,
	})

	doc, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	doc = append(doc, '\n')

	if analyzeStdout || flagJSON {
		_, err := os.Stdout.Write(doc)
		return err
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	// Write-then-rename so a concurrent reader never sees a torn file.
	tmp := cfg.AnalysisPath() + ".tmp"
	if err := os.WriteFile(tmp, doc, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if err := os.Rename(tmp, cfg.AnalysisPath()); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	printAnalysisSummary(report)
	fmt.Println()
	fmt.Println(output.StyleMuted.Render(cfg.AnalysisPath()))
	return nil
}

// printAnalysisSummary renders the headline numbers of a report.
func printAnalysisSummary(report analyzer.Report) {
	fmt.Println(output.Section("Sessions"))
	fmt.Printf(" %s%d\n", output.StyleLabel.Render("Total"), report.Sessions.Total)
	fmt.Printf(" %s%.1f\n", output.StyleLabel.Render("Avg duration (min)"), report.Sessions.AvgDurationMinutes)
	fmt.Printf(" %s%.1f\n", output.StyleLabel.Render("Avg tools/session"), report.Sessions.AvgToolsPerSession)

	if len(report.Sessions.Classifications) > 0 {
		table := output.NewTable("Classification", "Sessions")
		for _, class := range []string{
			analyzer.ClassPlanning, analyzer.ClassDebugging, analyzer.ClassBuilding,
			analyzer.ClassReviewing, analyzer.ClassExploring, analyzer.ClassOther,
		} {
			if n := report.Sessions.Classifications[class]; n > 0 {
				table.AddRow(class, fmt.Sprintf("%d", n))
			}
		}
		fmt.Println()
		fmt.Print(table.Render())
	}

	if len(report.ToolChains.Bigrams) > 0 {
		fmt.Println(output.Section("Top tool transitions"))
		table := output.NewTable("From", "To", "Count", "Pct")
		limit := len(report.ToolChains.Bigrams)
		if limit > 10 {
			limit = 10
		}
		for _, b := range report.ToolChains.Bigrams[:limit] {
			table.AddRow(b.From, b.To, fmt.Sprintf("%d", b.Count), fmt.Sprintf("%.1f%%", b.Pct))
		}
		fmt.Print(table.Render())
	}

	if report.EventCount > 0 {
		fmt.Println(output.Section("Activity by hour (" + report.TimePatterns.Timezone + ")"))
		maxEvents := 0
		for _, h := range report.TimePatterns.ByHour {
			if h.Events > maxEvents {
				maxEvents = h.Events
			}
		}
		for _, h := range report.TimePatterns.ByHour {
			if h.Events == 0 {
				continue
			}
			frac := 0.0
			if maxEvents > 0 {
				frac = float64(h.Events) / float64(maxEvents)
			}
			fmt.Printf(" %02d:00  %s %d\n", h.Hour, output.Bar(frac, 30), h.Events)
		}
	}
}
