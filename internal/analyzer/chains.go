package analyzer

import (
	"sort"

	"github.com/blackwell-systems/tooltime/internal/event"
)

const (
	bigramLimit  = 50
	trigramLimit = 30

	// DefaultBigramMinCount is the occurrence floor below which a
	// transition is considered noise.
	DefaultBigramMinCount = 5

	defaultTrigramMinCount = 3
)

// fileTools are the tools whose events carry a file path. Retry detection is
// restricted to these: without a file identity, consecutive same-tool calls
// cannot be told apart from unrelated invocations.
var fileTools = map[string]bool{
	"Read":  true,
	"Edit":  true,
	"Write": true,
}

// callSequence extracts the ordered tool names of a session's call events.
// Result events are excluded: including them would manufacture a self
// transition every time an announce/result pair sits adjacent in time.
func callSequence(events []event.Event) []string {
	var tools []string
	for _, e := range events {
		if e.IsCall() && e.Tool != "" {
			tools = append(tools, e.Tool)
		}
	}
	return tools
}

// sessionIDs returns session identities in a deterministic order so that
// tie-breaking by first observation is stable across runs.
func sessionIDs(sessions map[string][]event.Event) []string {
	ids := make([]string, 0, len(sessions))
	for sid := range sessions {
		ids = append(ids, sid)
	}
	sort.Strings(ids)
	return ids
}

// Bigrams computes tool transition pairs across all sessions, keeping the
// top transitions by count. minCount 0 selects an adaptive floor scaled to
// the total transition volume.
func Bigrams(sessions map[string][]event.Event, minCount int) []Bigram {
	counts := make(map[[2]string]int)
	firstSeen := make(map[[2]string]int)
	order := 0

	for _, sid := range sessionIDs(sessions) {
		tools := callSequence(sessions[sid])
		for i := 0; i+1 < len(tools); i++ {
			key := [2]string{tools[i], tools[i+1]}
			if _, seen := counts[key]; !seen {
				firstSeen[key] = order
				order++
			}
			counts[key]++
		}
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	if minCount <= 0 {
		minCount = 1
		if total > 0 {
			minCount = max(3, total/200)
		}
	}

	keys := make([][2]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return firstSeen[keys[i]] < firstSeen[keys[j]]
	})

	result := []Bigram{}
	for _, key := range keys {
		if len(result) >= bigramLimit || counts[key] < minCount {
			break
		}
		pct := 0.0
		if total > 0 {
			pct = round1(float64(counts[key]) / float64(total) * 100)
		}
		result = append(result, Bigram{
			From:  key[0],
			To:    key[1],
			Count: counts[key],
			Pct:   pct,
		})
	}
	return result
}

// Trigrams computes sliding-window-of-three tool sequences over the same
// call-only sequences as Bigrams.
func Trigrams(sessions map[string][]event.Event) []Trigram {
	counts := make(map[[3]string]int)
	firstSeen := make(map[[3]string]int)
	order := 0

	for _, sid := range sessionIDs(sessions) {
		tools := callSequence(sessions[sid])
		for i := 0; i+2 < len(tools); i++ {
			key := [3]string{tools[i], tools[i+1], tools[i+2]}
			if _, seen := counts[key]; !seen {
				firstSeen[key] = order
				order++
			}
			counts[key]++
		}
	}

	keys := make([][3]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return firstSeen[keys[i]] < firstSeen[keys[j]]
	})

	result := []Trigram{}
	for _, key := range keys {
		if len(result) >= trigramLimit || counts[key] < defaultTrigramMinCount {
			break
		}
		result = append(result, Trigram{
			Sequence: []string{key[0], key[1], key[2]},
			Count:    counts[key],
		})
	}
	return result
}

// RetryPatterns detects error-then-retry sequences: a failed result for a
// file tool immediately followed by another call to the same tool on the
// same file. Both file paths must be present and equal.
func RetryPatterns(sessions map[string][]event.Event) []RetryPattern {
	type retryStats struct {
		total    int
		maxInOne int
		sessions int
	}
	stats := make(map[string]*retryStats)

	for _, sid := range sessionIDs(sessions) {
		events := sessions[sid]
		perTool := make(map[string]int)

		for i := 0; i+1 < len(events); i++ {
			curr := events[i]
			next := events[i+1]

			if !fileTools[curr.Tool] {
				continue
			}
			if !curr.IsError() || !next.IsCall() {
				continue
			}
			if next.Tool != curr.Tool {
				continue
			}
			if curr.File == nil || next.File == nil || *curr.File != *next.File {
				continue
			}
			perTool[curr.Tool]++
		}

		for tool, count := range perTool {
			s := stats[tool]
			if s == nil {
				s = &retryStats{}
				stats[tool] = s
			}
			s.total += count
			if count > s.maxInOne {
				s.maxInOne = count
			}
			s.sessions++
		}
	}

	tools := make([]string, 0, len(stats))
	for tool := range stats {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool {
		if stats[tools[i]].total != stats[tools[j]].total {
			return stats[tools[i]].total > stats[tools[j]].total
		}
		return tools[i] < tools[j]
	})

	result := []RetryPattern{}
	for _, tool := range tools {
		s := stats[tool]
		if s.sessions == 0 {
			continue
		}
		result = append(result, RetryPattern{
			Tool:                tool,
			TotalRetries:        s.total,
			AvgRetries:          round1(float64(s.total) / float64(s.sessions)),
			MaxRetries:          s.maxInOne,
			SessionsWithRetries: s.sessions,
		})
	}
	return result
}
