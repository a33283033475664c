package analyzer

import (
	"strings"

	"github.com/blackwell-systems/tooltime/internal/event"
)

// Projects summarizes activity per project path. Tool names are kept raw:
// a project's events come from whichever client worked in it, and users
// should see exactly what was invoked there. Results are keyed by the short
// project name (last path component).
func Projects(events []event.Event, sessions map[string][]event.Event, th Thresholds) map[string]ProjectStats {
	type projData struct {
		events   int
		calls    int
		errors   int
		tools    map[string]int
		sessions map[string]bool
	}
	byProject := make(map[string]*projData)

	for _, e := range events {
		proj := e.Project
		if proj == "" {
			proj = "unknown"
		}
		data := byProject[proj]
		if data == nil {
			data = &projData{tools: map[string]int{}, sessions: map[string]bool{}}
			byProject[proj] = data
		}
		data.events++
		data.sessions[event.SessionID(e.ID)] = true

		if e.IsCall() {
			data.calls++
			data.tools[e.Tool]++
		}
		if e.IsError() {
			data.errors++
		}
	}

	result := make(map[string]ProjectStats, len(byProject))
	for proj, data := range byProject {
		mix := map[string]int{}
		for sid := range data.sessions {
			if events, ok := sessions[sid]; ok {
				mix[Classify(events, th)]++
			}
		}
		primary := ClassOther
		if top := topNames(mix, 1); len(top) > 0 {
			primary = top[0]
		}

		errorRate := 0.0
		if data.calls > 0 {
			errorRate = round3(float64(data.errors) / float64(data.calls))
		}

		result[shortName(proj)] = ProjectStats{
			Path:                  proj,
			Events:                data.events,
			Sessions:              len(data.sessions),
			TopTools:              topNames(data.tools, 5),
			PrimaryClassification: primary,
			ErrorRate:             errorRate,
		}
	}
	return result
}

// shortName reduces a project path to its last component.
func shortName(path string) string {
	trimmed := strings.TrimRight(path, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
