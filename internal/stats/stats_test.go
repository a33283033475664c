package stats

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/tooltime/internal/event"
)

func call(session string, seq int, tool string, file *string, errText *string) event.Event {
	return event.Event{
		Version: event.SchemaVersion,
		ID:      fmt.Sprintf("%s-%d", session, seq),
		Time:    time.Date(2026, 3, 10, 10, 0, seq, 0, time.UTC),
		Kind:    event.KindToolUse,
		Tool:    tool,
		File:    file,
		Error:   errText,
	}
}

func strp(s string) *string { return &s }

func TestCompute_CountsCallsErrorsRejections(t *testing.T) {
	events := []event.Event{
		call("s1", 0, "Bash", nil, nil),
		call("s1", 1, "Bash", nil, strp("command not found")),
		call("s1", 2, "Bash", nil, strp("User rejected the command")),
		call("s1", 3, "Read", nil, nil),
	}
	summary := Compute(events, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	assert.Equal(t, 4, summary.TotalEvents)
	assert.Equal(t, "2026-03-10T12:00:00Z", summary.Generated)

	bash := summary.Tools["Bash"]
	assert.Equal(t, 3, bash.Calls)
	assert.Equal(t, 1, bash.Errors)
	assert.Equal(t, 1, bash.Rejections)
	assert.Equal(t, 1, summary.Tools["Read"].Calls)
}

func TestCompute_PairedConventionCountsOneCall(t *testing.T) {
	pre := call("s1", 0, "Edit", nil, nil)
	pre.Kind = event.KindPreToolUse
	post := call("s1", 1, "Edit", nil, strp("no match"))
	post.Kind = event.KindPostToolUse

	summary := Compute([]event.Event{pre, post}, time.Now())
	edit := summary.Tools["Edit"]
	assert.Equal(t, 1, edit.Calls)
	assert.Equal(t, 1, edit.Errors)
}

func TestCompute_EditWithoutReadIsSessionScoped(t *testing.T) {
	main := strp("/p/main.go")
	util := strp("/p/util.go")
	events := []event.Event{
		// s1 reads main.go before editing it, but edits util.go cold.
		call("s1", 0, "Read", main, nil),
		call("s1", 1, "Edit", main, nil),
		call("s1", 2, "Edit", util, nil),
		// s2 edits main.go without its own read; s1's read does not carry over.
		call("s2", 0, "Edit", main, nil),
	}
	summary := Compute(events, time.Now())
	assert.Equal(t, 2, summary.EditWithoutReadCount)
}

func TestCompute_WritePrimesTheFileLikeRead(t *testing.T) {
	f := strp("/p/new.go")
	events := []event.Event{
		call("s1", 0, "Write", f, nil),
		call("s1", 1, "Edit", f, nil),
	}
	summary := Compute(events, time.Now())
	assert.Equal(t, 0, summary.EditWithoutReadCount)
}

func TestIsUserRejection(t *testing.T) {
	assert.True(t, IsUserRejection(strp("The user doesn't want to proceed with this")))
	assert.True(t, IsUserRejection(strp("User denied permission")))
	assert.False(t, IsUserRejection(strp("file not found")))
	assert.False(t, IsUserRejection(nil))
}

func TestTopTools_OrderAndTieBreak(t *testing.T) {
	summary := Summary{Tools: map[string]ToolCounts{
		"Read": {Calls: 5},
		"Bash": {Calls: 5},
		"Edit": {Calls: 9},
	}}
	assert.Equal(t, []string{"Edit", "Bash", "Read"}, summary.TopTools(3))
	assert.Equal(t, []string{"Edit"}, summary.TopTools(1))
}

func TestSuggest_EditWithoutRead(t *testing.T) {
	f := strp("/p/a.go")
	var events []event.Event
	for i := 0; i < 3; i++ {
		events = append(events, call(fmt.Sprintf("s%d", i), 0, "Edit", f, nil))
	}
	suggestions := Suggest(events)

	require.NotEmpty(t, suggestions)
	assert.Equal(t, PriorityHigh, suggestions[0].Priority)
	assert.Contains(t, suggestions[0].Text, "3 Edit calls")
}

func TestSuggest_ErrorProneTool(t *testing.T) {
	var events []event.Event
	for i := 0; i < 6; i++ {
		events = append(events, call("s1", i, "Patch", nil, nil))
	}
	for i := 6; i < 9; i++ {
		events = append(events, call("s1", i, "Patch", nil, strp("hunk failed")))
	}

	// 3 errors over 9 calls is 33%, above the 30% floor with enough volume.
	suggestions := Suggest(events)
	require.Len(t, suggestions, 1)
	assert.Equal(t, PriorityMedium, suggestions[0].Priority)
	assert.Contains(t, suggestions[0].Text, "'Patch'")
}

func TestSuggest_ShellDominance(t *testing.T) {
	var events []event.Event
	for i := 0; i < 8; i++ {
		events = append(events, call("s1", i, "shell", nil, nil))
	}
	for i := 8; i < 12; i++ {
		events = append(events, call("s1", i, "Read", nil, nil))
	}

	// 8 of 12 calls are shell; the raw Codex name must still count as Bash.
	suggestions := Suggest(events)
	require.Len(t, suggestions, 1)
	assert.Equal(t, PriorityLow, suggestions[0].Priority)
}

func TestSuggest_QuietWhenNothingStandsOut(t *testing.T) {
	events := []event.Event{
		call("s1", 0, "Read", nil, nil),
		call("s1", 1, "Edit", strp("/p/a.go"), nil),
	}
	assert.Empty(t, Suggest(events))
}
