package analyzer

import (
	"fmt"
	"sort"

	"github.com/blackwell-systems/tooltime/internal/event"
)

// weekKey is the compound (ISO year, ISO week) bucket key. time.ISOWeek
// already assigns late-December days to week 1 of the following year when
// the ISO calendar says so; keeping the year in the key preserves that.
type weekKey struct {
	year int
	week int
}

// WeeklyTrends buckets events by ISO week and reports per-week volume,
// distinct sessions, error rate, top canonical tools, and the
// classification distribution of the sessions active that week, in
// chronological order.
func WeeklyTrends(events []event.Event, sessions map[string][]event.Event, th Thresholds) []WeekBucket {
	classBySession := make(map[string]string, len(sessions))
	for sid, evts := range sessions {
		classBySession[sid] = Classify(evts, th)
	}

	type weekData struct {
		events   int
		calls    int
		errors   int
		sessions map[string]bool
		tools    map[string]int
	}
	weeks := make(map[weekKey]*weekData)

	for _, e := range events {
		year, week := e.Time.ISOWeek()
		key := weekKey{year, week}
		data := weeks[key]
		if data == nil {
			data = &weekData{
				sessions: map[string]bool{},
				tools:    map[string]int{},
			}
			weeks[key] = data
		}

		data.events++
		data.sessions[event.SessionID(e.ID)] = true

		if e.IsCall() {
			data.calls++
			data.tools[event.Normalize(e.Tool)]++
		}
		if e.IsError() {
			data.errors++
		}
	}

	keys := make([]weekKey, 0, len(weeks))
	for key := range weeks {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].week < keys[j].week
	})

	result := []WeekBucket{}
	for _, key := range keys {
		data := weeks[key]
		errorRate := 0.0
		if data.calls > 0 {
			errorRate = round3(float64(data.errors) / float64(data.calls))
		}

		classifications := map[string]int{}
		for sid := range data.sessions {
			if class, ok := classBySession[sid]; ok {
				classifications[class]++
			}
		}

		result = append(result, WeekBucket{
			Week:            fmt.Sprintf("%d-W%02d", key.year, key.week),
			ISOYear:         key.year,
			ISOWeek:         key.week,
			Events:          data.events,
			Sessions:        len(data.sessions),
			ErrorRate:       errorRate,
			Tools:           topCounts(data.tools, 10),
			Classifications: classifications,
		})
	}
	return result
}

// topCounts keeps the n highest counts from the map, breaking count ties by
// name for deterministic output.
func topCounts(counts map[string]int, n int) map[string]int {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > n {
		names = names[:n]
	}

	top := make(map[string]int, len(names))
	for _, name := range names {
		top[name] = counts[name]
	}
	return top
}

// topNames returns the names of the n highest counts, ordered by count
// descending with name tie-break.
func topNames(counts map[string]int, n int) []string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > n {
		names = names[:n]
	}
	return names
}
