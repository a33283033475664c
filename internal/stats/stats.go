// Package stats computes the small rolling tool-usage summary and the
// session-end suggestions. Unlike the full analyzer, the summary carries no
// opinions or thresholds, just per-tool counts for downstream consumers
// (the opt-in upload pipeline reads this file, never the full analysis).
package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/blackwell-systems/tooltime/internal/event"
)

// userRejectionPrefixes mark errors that are user refusals, not tool
// failures. They are counted separately so rejection-heavy sessions do not
// read as broken tooling.
var userRejectionPrefixes = []string{
	"The user doesn't want to proceed",
	"Permission to use",
	"User denied",
	"User rejected",
	"User cancelled",
}

// IsUserRejection reports whether an error text is a user rejection.
func IsUserRejection(err *string) bool {
	if err == nil {
		return false
	}
	for _, prefix := range userRejectionPrefixes {
		if strings.HasPrefix(*err, prefix) {
			return true
		}
	}
	return false
}

// ToolCounts holds per-tool call/error/rejection counts.
type ToolCounts struct {
	Calls      int `json:"calls"`
	Errors     int `json:"errors"`
	Rejections int `json:"rejections"`
}

// Summary is the rolling stats document written to stats.json.
type Summary struct {
	Generated            string                `json:"generated"`
	TotalEvents          int                   `json:"total_events"`
	Tools                map[string]ToolCounts `json:"tools"`
	EditWithoutReadCount int                   `json:"edit_without_read_count"`
}

// Compute builds the rolling summary over the given events. Raw tool names
// are kept; the summary is per-user, not cross-source comparative.
func Compute(events []event.Event, now time.Time) Summary {
	tools := make(map[string]ToolCounts)

	// File operations per session, in order, for edit-without-read.
	type fileOp struct {
		tool string
		file string
	}
	sessionOps := make(map[string][]fileOp)
	var sessionOrder []string

	for _, e := range events {
		if e.Tool == "" {
			continue
		}

		if e.IsCall() {
			tc := tools[e.Tool]
			tc.Calls++
			tools[e.Tool] = tc

			sid := event.SessionID(e.ID)
			if _, ok := sessionOps[sid]; !ok {
				sessionOrder = append(sessionOrder, sid)
			}
			file := ""
			if e.File != nil {
				file = *e.File
			}
			sessionOps[sid] = append(sessionOps[sid], fileOp{tool: e.Tool, file: file})
		}

		if (e.Kind == event.KindPostToolUse || e.Kind == event.KindToolUse) && e.Error != nil {
			tc := tools[e.Tool]
			if IsUserRejection(e.Error) {
				tc.Rejections++
			} else {
				tc.Errors++
			}
			tools[e.Tool] = tc
		}
	}

	// Session-scoped edit-without-read: an Edit on a path no prior Read or
	// Write in the same session touched.
	editWithoutRead := 0
	for _, sid := range sessionOrder {
		seen := make(map[string]bool)
		for _, op := range sessionOps[sid] {
			if op.file == "" {
				continue
			}
			switch op.tool {
			case "Read", "Write":
				seen[op.file] = true
			case "Edit":
				if !seen[op.file] {
					editWithoutRead++
				}
			}
		}
	}

	return Summary{
		Generated:            now.UTC().Format("2006-01-02T15:04:05Z"),
		TotalEvents:          len(events),
		Tools:                tools,
		EditWithoutReadCount: editWithoutRead,
	}
}

// TopTools returns the n most-called tool names from a summary, count
// descending with name tie-break.
func (s Summary) TopTools(n int) []string {
	names := make([]string, 0, len(s.Tools))
	for name := range s.Tools {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if s.Tools[names[i]].Calls != s.Tools[names[j]].Calls {
			return s.Tools[names[i]].Calls > s.Tools[names[j]].Calls
		}
		return names[i] < names[j]
	})
	if len(names) > n {
		names = names[:n]
	}
	return names
}
