package analyzer

import (
	"time"

	"github.com/blackwell-systems/tooltime/internal/event"
)

// Options controls a single analysis run. The report is a pure function of
// (events, Options): re-running with identical inputs yields byte-identical
// JSON output.
type Options struct {
	// Location is the zone for time-of-day bucketing. Nil means time.Local.
	Location *time.Location

	// Thresholds feeds the session classifier. Zero value means defaults.
	Thresholds *Thresholds

	// BigramMinCount is the transition occurrence floor; 0 selects the
	// adaptive rule.
	BigramMinCount int

	// ProjectFilter and SourceFilter are echoed into the report's filters
	// section. The events are expected to already be filtered.
	ProjectFilter string
	SourceFilter  string

	// Now stamps the report's generated field. Zero means the wall clock;
	// tests pin it for determinism.
	Now time.Time
}

// Run executes every analysis over the loaded event set and composes the
// full report. It never partially fails: empty input produces a report with
// every section present and zero-valued.
func Run(events []event.Event, opts Options) Report {
	th := DefaultThresholds()
	if opts.Thresholds != nil {
		th = *opts.Thresholds
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	report := Report{
		Generated:    now.UTC().Format("2006-01-02T15:04:05Z"),
		Filters:      filters(opts),
		EventCount:   len(events),
		Sessions:     SessionSummary{Classifications: map[string]int{}},
		ToolChains:   ToolChains{Bigrams: []Bigram{}, Trigrams: []Trigram{}, RetryPatterns: []RetryPattern{}},
		Trends:       []WeekBucket{},
		TimePatterns: TimePatterns{ByHour: []HourBucket{}, ByDayOfWeek: []DayBucket{}, PeakDay: dayNames[0], Timezone: loc.String()},
		BySource:     map[string]SourceStats{},
		Projects:     map[string]ProjectStats{},
	}
	if len(events) == 0 {
		return report
	}

	sessions := GroupSessions(events)

	first, last := events[0].Time, events[0].Time
	for _, e := range events {
		if e.Time.Before(first) {
			first = e.Time
		}
		if e.Time.After(last) {
			last = e.Time
		}
	}
	start := first.UTC().Format("2006-01-02")
	end := last.UTC().Format("2006-01-02")
	report.Period = Period{Start: &start, End: &end}

	report.Sessions = SessionMetrics(sessions, th)
	report.ToolChains = ToolChains{
		Bigrams:       Bigrams(sessions, opts.BigramMinCount),
		Trigrams:      Trigrams(sessions),
		RetryPatterns: RetryPatterns(sessions),
	}
	report.Trends = WeeklyTrends(events, sessions, th)
	report.TimePatterns = TimeOfDayPatterns(events, loc)
	report.BySource = Sources(events, sessions, th)
	report.Projects = Projects(events, sessions, th)

	return report
}

func filters(opts Options) Filters {
	var f Filters
	if opts.ProjectFilter != "" {
		p := opts.ProjectFilter
		f.Project = &p
	}
	if opts.SourceFilter != "" {
		s := opts.SourceFilter
		f.Source = &s
	}
	return f
}
