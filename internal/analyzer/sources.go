package analyzer

import (
	"github.com/blackwell-systems/tooltime/internal/event"
)

// Sources compares event activity per originating client. Tool names are
// canonicalized so that e.g. a Codex "shell" and a Claude Code "Bash" land
// in the same bucket. A session is attributed to the source of its first
// event in stream order. The comparison is produced even when only one
// source exists; presentation decides how to render that case.
func Sources(events []event.Event, sessions map[string][]event.Event, th Thresholds) map[string]SourceStats {
	sessionSource := make(map[string]string)
	type srcData struct {
		events int
		calls  int
		errors int
		tools  map[string]int
	}
	bySource := make(map[string]*srcData)

	for _, e := range events {
		src := e.Source
		if src == "" {
			src = "unknown"
		}
		data := bySource[src]
		if data == nil {
			data = &srcData{tools: map[string]int{}}
			bySource[src] = data
		}
		data.events++

		sid := event.SessionID(e.ID)
		if _, ok := sessionSource[sid]; !ok {
			sessionSource[sid] = src
		}

		if e.IsCall() {
			data.calls++
			data.tools[event.Normalize(e.Tool)]++
		}
		if e.IsError() {
			data.errors++
		}
	}

	result := make(map[string]SourceStats, len(bySource))
	for src, data := range bySource {
		var callsPer []float64
		mix := map[string]int{}
		sessionCount := 0

		for sid, sessSrc := range sessionSource {
			if sessSrc != src {
				continue
			}
			events, ok := sessions[sid]
			if !ok {
				continue
			}
			sessionCount++

			calls := 0
			for _, e := range events {
				if e.IsCall() {
					calls++
				}
			}
			if calls >= 2 {
				callsPer = append(callsPer, float64(calls))
			}
			mix[Classify(events, th)]++
		}

		errorRate := 0.0
		if data.calls > 0 {
			errorRate = round3(float64(data.errors) / float64(data.calls))
		}

		result[src] = SourceStats{
			Events:             data.events,
			Sessions:           sessionCount,
			AvgToolsPerSession: round1(mean(callsPer)),
			ErrorRate:          errorRate,
			TopTools:           topNames(data.tools, 5),
			ClassificationMix:  mix,
		}
	}
	return result
}
