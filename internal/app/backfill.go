package app

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/tooltime/internal/config"
	"github.com/blackwell-systems/tooltime/internal/event"
	"github.com/blackwell-systems/tooltime/internal/ingest"
	"github.com/blackwell-systems/tooltime/internal/output"
)

var (
	backfillSource  string
	backfillDryRun  bool
	backfillWorkers int
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Import historical events from client transcripts",
	Long: `Backfill walks the Claude Code, Codex, and OpenClaw transcript trees,
parses every session file into unified events, and appends the ones not
already present in the event log. Safe to re-run: events are deduplicated
by ID before anything is written.`,
	RunE: runBackfill,
}

func init() {
	backfillCmd.Flags().StringVar(&backfillSource, "source", "", "Only backfill one source (claude-code, codex, openclaw)")
	backfillCmd.Flags().BoolVar(&backfillDryRun, "dry-run", false, "Parse and count without writing to the event log")
	backfillCmd.Flags().IntVar(&backfillWorkers, "workers", 4, "Parallel transcript parsers")
	rootCmd.AddCommand(backfillCmd)
}

// transcriptFile pairs a session file with the parser that understands it.
type transcriptFile struct {
	path  string
	parse func(string) ([]event.Event, error)
}

func runBackfill(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var files []transcriptFile
	if backfillSource == "" || backfillSource == ingest.SourceClaudeCode {
		for _, p := range ingest.FindClaudeCodeSessions(cfg.Transcripts.ClaudeProjects) {
			files = append(files, transcriptFile{p, ingest.ParseClaudeCode})
		}
	}
	if backfillSource == "" || backfillSource == ingest.SourceCodex {
		for _, p := range ingest.FindCodexSessions(cfg.Transcripts.CodexSessions) {
			files = append(files, transcriptFile{p, ingest.ParseCodex})
		}
	}
	if backfillSource == "" || backfillSource == ingest.SourceOpenClaw {
		for _, p := range ingest.FindOpenClawSessions(cfg.Transcripts.OpenClawAgents) {
			files = append(files, transcriptFile{p, ingest.ParseOpenClaw})
		}
	}
	if len(files) == 0 {
		fmt.Println(output.StyleMuted.Render("No transcript files found."))
		return nil
	}

	seen, err := event.LoadIDs(cfg.EventsPath())
	if err != nil {
		return fmt.Errorf("loading existing event IDs: %w", err)
	}

	workers := backfillWorkers
	if workers < 1 {
		workers = 1
	}

	var (
		mu       sync.Mutex
		parsed   = make([][]event.Event, len(files))
		failures []string
	)
	var g errgroup.Group
	g.SetLimit(workers)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			events, err := f.parse(f.path)
			if err != nil {
				mu.Lock()
				failures = append(failures, fmt.Sprintf("%s: %v", f.path, err))
				mu.Unlock()
				return nil
			}
			parsed[i] = events
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Merge in discovery order so appended IDs stay stable across runs.
	var fresh []event.Event
	bySource := make(map[string]int)
	for _, events := range parsed {
		for _, e := range events {
			if seen[e.ID] {
				continue
			}
			seen[e.ID] = true
			fresh = append(fresh, e)
			bySource[e.Source]++
		}
	}

	if !backfillDryRun && len(fresh) > 0 {
		if err := event.Append(cfg.EventsPath(), fresh); err != nil {
			return fmt.Errorf("appending events: %w", err)
		}
	}

	fmt.Println(output.Section("Backfill"))
	fmt.Printf("  %s%d\n", output.StyleLabel.Render("Transcript files"), len(files))
	fmt.Printf("  %s%d\n", output.StyleLabel.Render("New events"), len(fresh))
	sources := make([]string, 0, len(bySource))
	for s := range bySource {
		sources = append(sources, s)
	}
	sort.Strings(sources)
	for _, s := range sources {
		fmt.Printf("  %s%d\n", output.StyleLabel.Render("  "+s), bySource[s])
	}
	if backfillDryRun {
		fmt.Println(output.StyleMuted.Render("Dry run: nothing written."))
	}
	for _, f := range failures {
		fmt.Fprintln(os.Stderr, output.StyleWarning.Render("skipped "+f))
	}
	return nil
}
