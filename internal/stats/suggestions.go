package stats

import (
	"fmt"
	"time"

	"github.com/blackwell-systems/tooltime/internal/event"
)

// Suggestion priorities, highest first.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Suggestion is one actionable observation written to
// pending-suggestions.json for the presentation layer to surface.
type Suggestion struct {
	Type     string `json:"type"`
	Priority string `json:"priority"`
	Text     string `json:"text"`
}

// Suggest runs the pattern rules over recent events and returns prioritized
// suggestions. Rules fire independently; an empty result means nothing
// noteworthy, not a failure.
func Suggest(events []event.Event) []Suggestion {
	summary := Compute(events, time.Now())
	var suggestions []Suggestion

	if summary.EditWithoutReadCount > 2 {
		suggestions = append(suggestions, Suggestion{
			Type:     "claude_md",
			Priority: PriorityHigh,
			Text: fmt.Sprintf(
				"Always Read files before Edit: detected %d Edit calls without a preceding Read.",
				summary.EditWithoutReadCount),
		})
	}

	// Tools with a high error rate and enough volume to mean it.
	for _, tool := range summary.TopTools(len(summary.Tools)) {
		tc := summary.Tools[tool]
		if tc.Calls == 0 || tc.Errors < 3 {
			continue
		}
		rate := float64(tc.Errors) / float64(tc.Calls)
		if rate > 0.3 {
			suggestions = append(suggestions, Suggestion{
				Type:     "claude_md",
				Priority: PriorityMedium,
				Text: fmt.Sprintf(
					"Tool '%s' has a %.0f%% error rate (%d/%d calls). Consider adding guidance.",
					tool, rate*100, tc.Errors, tc.Calls),
			})
		}
	}

	// Shell dominance may mean specialized tools are being bypassed.
	totalCalls := 0
	shellCalls := 0
	for tool, tc := range summary.Tools {
		totalCalls += tc.Calls
		if event.Normalize(tool) == "Bash" {
			shellCalls += tc.Calls
		}
	}
	if totalCalls > 10 && float64(shellCalls)/float64(totalCalls) > 0.5 {
		suggestions = append(suggestions, Suggestion{
			Type:     "claude_md",
			Priority: PriorityLow,
			Text:     "Bash accounts for >50% of tool calls. Consider using specialized tools (Read, Edit, Grep) instead.",
		})
	}

	return suggestions
}
