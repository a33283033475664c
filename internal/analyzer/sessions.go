package analyzer

import (
	"math"
	"sort"
	"strings"

	"github.com/blackwell-systems/tooltime/internal/event"
)

// ClassPlanning and friends are the closed classification set. Every session
// gets exactly one of these.
const (
	ClassPlanning  = "planning"
	ClassDebugging = "debugging"
	ClassBuilding  = "building"
	ClassReviewing = "reviewing"
	ClassExploring = "exploring"
	ClassOther     = "other"
)

// planModeTools are the plan-mode boundary markers. Their presence anywhere
// in a session classifies it as planning outright.
var planModeTools = map[string]bool{
	"EnterPlanMode": true,
	"ExitPlanMode":  true,
}

// planningSkills are skill names (suffix after the last ":") that count as
// planning signals.
var planningSkills = map[string]bool{
	"brainstorm":    true,
	"writing-plans": true,
	"strategy":      true,
	"write-plan":    true,
}

// Thresholds are the classifier's tunable constants. The defaults come from
// the collector's own rule set and have not been calibrated against labeled
// sessions, so they are configurable rather than hard-coded.
type Thresholds struct {
	PlanningSignalShare float64 `mapstructure:"planning_signal_share"`
	DebugErrorRate      float64 `mapstructure:"debug_error_rate"`
	DebugMinErrors      int     `mapstructure:"debug_min_errors"`
	DebugShellShare     float64 `mapstructure:"debug_shell_share"`
	BuildEditShare      float64 `mapstructure:"build_edit_share"`
	ReviewReadShare     float64 `mapstructure:"review_read_share"`
	ExploreReadShare    float64 `mapstructure:"explore_read_share"`
	ExploreMaxEditShare float64 `mapstructure:"explore_max_edit_share"`
}

// DefaultThresholds returns the uncalibrated source constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PlanningSignalShare: 0.10,
		DebugErrorRate:      0.15,
		DebugMinErrors:      3,
		DebugShellShare:     0.40,
		BuildEditShare:      0.25,
		ReviewReadShare:     0.50,
		ExploreReadShare:    0.55,
		ExploreMaxEditShare: 0.10,
	}
}

// GroupSessions groups events by session identity and sorts each group by
// normalized timestamp.
func GroupSessions(events []event.Event) map[string][]event.Event {
	sessions := make(map[string][]event.Event)
	for _, e := range events {
		sid := event.SessionID(e.ID)
		sessions[sid] = append(sessions[sid], e)
	}
	for sid := range sessions {
		evts := sessions[sid]
		sort.SliceStable(evts, func(i, j int) bool {
			return evts[i].Time.Before(evts[j].Time)
		})
	}
	return sessions
}

// Classify assigns exactly one classification to a session's event list.
// Rules are evaluated top to bottom; the first match wins. Total over any
// input, including an empty list.
func Classify(events []event.Event, th Thresholds) string {
	// A plan-mode boundary wins even for sessions with zero call events.
	for _, e := range events {
		if planModeTools[e.Tool] {
			return ClassPlanning
		}
	}

	var (
		calls      float64
		errors     int
		planSkills float64
		shell      float64
		edit       float64
		write      float64
		read       float64
		search     float64
	)

	for _, e := range events {
		if e.IsError() {
			errors++
		}
		if !e.IsCall() {
			continue
		}
		calls++

		if e.Skill != "" {
			skill := e.Skill
			if i := strings.LastIndex(skill, ":"); i >= 0 {
				skill = skill[i+1:]
			}
			if planningSkills[skill] {
				planSkills++
			}
		}

		switch event.Normalize(e.Tool) {
		case "Bash":
			shell++
		case "Edit":
			edit++
		case "Write":
			write++
		case "Read":
			read++
		case "Glob", "Grep", "LS":
			search++
		}
	}

	// Zero-call guard: no ratios to compute.
	if calls == 0 {
		return ClassOther
	}

	if planSkills > 0 && planSkills/calls > th.PlanningSignalShare {
		return ClassPlanning
	}
	if errors >= th.DebugMinErrors && float64(errors)/calls > th.DebugErrorRate {
		return ClassDebugging
	}
	if shell/calls > th.DebugShellShare && errors > th.DebugMinErrors {
		return ClassDebugging
	}
	if (edit+write)/calls > th.BuildEditShare {
		return ClassBuilding
	}
	if read/calls > th.ReviewReadShare && edit+write == 0 {
		return ClassReviewing
	}
	if (read+search)/calls > th.ExploreReadShare && edit/calls < th.ExploreMaxEditShare {
		return ClassExploring
	}
	return ClassOther
}

// SessionMetrics computes the aggregate session summary: total count, mean
// duration, mean/median calls per session, and the classification
// distribution.
func SessionMetrics(sessions map[string][]event.Event, th Thresholds) SessionSummary {
	summary := SessionSummary{
		Classifications: map[string]int{},
	}
	if len(sessions) == 0 {
		return summary
	}
	summary.Total = len(sessions)

	var durations []float64
	var callsPer []float64

	for _, events := range sessions {
		if len(events) >= 2 {
			dur := events[len(events)-1].Time.Sub(events[0].Time).Minutes()
			durations = append(durations, dur)
		}

		calls := 0
		for _, e := range events {
			if e.IsCall() {
				calls++
			}
		}
		// Sessions with fewer than two calls are noise for the averages
		// but still count toward the classification distribution.
		if calls >= 2 {
			callsPer = append(callsPer, float64(calls))
		}

		summary.Classifications[Classify(events, th)]++
	}

	summary.AvgDurationMinutes = round1(mean(durations))
	summary.AvgToolsPerSession = round1(mean(callsPer))
	summary.MedianToolsPerSession = round1(median(callsPer))
	return summary
}

// mean returns the arithmetic mean, or 0 for an empty slice.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// median returns the middle value (mean of the two middles for even length),
// or 0 for an empty slice.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
